package spec

import (
	"strings"

	"github.com/mark3labs/xml2postman/internal/xmltree"
)

// fieldPriority lists the source names consulted for one model field, highest
// priority first. The first name with a present value wins.
type fieldPriority []string

var (
	pathFields          = fieldPriority{"path", "url", "endpoint", "uri"}
	methodFields        = fieldPriority{"method", "verb", "httpMethod"}
	descriptionFields   = fieldPriority{"description", "summary", "doc"}
	parameterFields     = fieldPriority{"parameters", "params"}
	paramNameFields     = fieldPriority{"name", "key"}
	paramTypeFields     = fieldPriority{"type", "dataType"}
	paramDescFields     = fieldPriority{"description", "doc"}
	requiredFields      = fieldPriority{"required"}
	bodyFields          = fieldPriority{"requestBody", "body", "payload"}
	contentTypeFields   = fieldPriority{"contentType"}
	schemaFields        = fieldPriority{"schema"}
	exampleFields       = fieldPriority{"example"}
	responseFields      = fieldPriority{"responses", "response"}
	statusFields        = fieldPriority{"status", "statusCode"}
	responseDescFields  = fieldPriority{"description"}
	tagFields           = fieldPriority{"tags", "tag"}
	baseURLFields       = fieldPriority{"baseUrl", "host"}
	titleFields         = fieldPriority{"name", "title"}
	versionFields       = fieldPriority{"version"}
	infoDescFields      = fieldPriority{"description"}
	endpointShapeFields = fieldPriority{"request", "response", "parameters"}
)

// Element names that hold the items of a parameters container.
var parameterItemNames = []string{"parameter", "param"}

// accessor resolves one source name on a record and returns the values found
// there, or nil when the name is absent or empty.
type accessor func(*xmltree.Node) []*xmltree.Node

// field looks a name up as child elements first, then as an attribute.
func field(name string) accessor {
	return func(n *xmltree.Node) []*xmltree.Node {
		var out []*xmltree.Node
		for _, c := range n.ChildrenNamed(name) {
			if !c.IsEmpty() {
				out = append(out, c)
			}
		}
		if len(out) > 0 {
			return out
		}
		if v, ok := n.Attr(name); ok {
			if v = strings.TrimSpace(v); v != "" {
				return []*xmltree.Node{{Name: name, Text: v}}
			}
		}
		return nil
	}
}

func (f fieldPriority) accessors() []accessor {
	out := make([]accessor, len(f))
	for i, name := range f {
		out[i] = field(name)
	}
	return out
}

// firstOf returns the values of the first accessor that yields any.
func firstOf(n *xmltree.Node, accessors ...accessor) []*xmltree.Node {
	if n == nil {
		return nil
	}
	for _, get := range accessors {
		if found := get(n); len(found) > 0 {
			return found
		}
	}
	return nil
}

// nodes returns the values of the first present source name.
func (f fieldPriority) nodes(n *xmltree.Node) []*xmltree.Node {
	return firstOf(n, f.accessors()...)
}

// has reports whether any source name is present.
func (f fieldPriority) has(n *xmltree.Node) bool {
	return len(f.nodes(n)) > 0
}

// text returns the first non-empty text among the source names, coercing
// values to strings. Object values without text are skipped.
func (f fieldPriority) text(n *xmltree.Node) string {
	if n == nil {
		return ""
	}
	for _, get := range f.accessors() {
		for _, v := range get(n) {
			if v.Text != "" {
				return v.Text
			}
		}
	}
	return ""
}

// textOr is text with a default for absent values.
func (f fieldPriority) textOr(n *xmltree.Node, def string) string {
	if s := f.text(n); s != "" {
		return s
	}
	return def
}

// value returns the detached value of the first present source name. Repeated
// elements become a sequence.
func (f fieldPriority) value(n *xmltree.Node) any {
	found := f.nodes(n)
	switch len(found) {
	case 0:
		return nil
	case 1:
		return found[0].Value()
	}
	items := make([]any, 0, len(found))
	for _, v := range found {
		items = append(items, v.Value())
	}
	return items
}

// isObject reports whether a node would be an object, not a scalar, in the
// key/value view of the document.
func isObject(n *xmltree.Node) bool {
	return n != nil && !n.IsScalar()
}
