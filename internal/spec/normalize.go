package spec

import (
	"strings"

	"github.com/mark3labs/xml2postman/internal/xmltree"
)

const (
	defaultContentType  = "application/json"
	defaultStatus       = "200"
	defaultParamName    = "param"
	defaultParamType    = "string"
	defaultResponseDesc = "Response"
)

// normalizeRecord maps a loosely shaped endpoint record onto an Endpoint.
// fallbackPath is used only when the record declares no path of its own.
func normalizeRecord(rec *xmltree.Node, fallbackPath string) Endpoint {
	path := pathFields.text(rec)
	if path == "" {
		path = fallbackPath
	}
	if path == "" {
		path = "/"
	}

	ep := newEndpoint(path, NormalizeMethod(methodFields.text(rec)))
	ep.Description = descriptionFields.text(rec)

	for _, item := range parameterItems(rec) {
		ep.Parameters = append(ep.Parameters, normalizeParameter(item))
	}
	if body := bodyFields.nodes(rec); len(body) > 0 {
		ep.RequestBody = normalizeBody(body[0])
	}
	normalizeResponses(&ep, rec)
	ep.Tags = tagsOf(rec)

	return ep
}

// parameterItems flattens the parameter containers of a record. A container
// holding <parameter>/<param> elements contributes those; any other value is
// a parameter itself.
func parameterItems(rec *xmltree.Node) []*xmltree.Node {
	var items []*xmltree.Node
	for _, container := range parameterFields.nodes(rec) {
		var inner []*xmltree.Node
		for _, name := range parameterItemNames {
			inner = append(inner, field(name)(container)...)
		}
		// attribute lookups synthesize scalars; only real child elements count
		inner = realChildren(container, inner)
		if len(inner) > 0 {
			items = append(items, inner...)
			continue
		}
		items = append(items, container)
	}
	return items
}

func realChildren(parent *xmltree.Node, found []*xmltree.Node) []*xmltree.Node {
	out := found[:0]
	for _, f := range found {
		for _, c := range parent.Children {
			if c == f {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

func normalizeParameter(item *xmltree.Node) Parameter {
	return Parameter{
		Name:        paramNameFields.textOr(item, defaultParamName),
		Type:        ParseParamType(paramTypeFields.textOr(item, defaultParamType)),
		Required:    requiredFields.text(item) == "true",
		Description: paramDescFields.text(item),
	}
}

func normalizeBody(n *xmltree.Node) *Body {
	body := &Body{ContentType: contentTypeFields.textOr(n, defaultContentType)}
	if n.IsScalar() {
		// text-only bodies carry neither schema nor example
		return body
	}
	body.Schema = schemaFields.value(n)
	body.Example = exampleFields.value(n)
	return body
}

// normalizeResponses reads the first present of responses/response. Response
// items (a <response> list, or <response> children of <responses>) are keyed
// by status; any other <responses> children are keyed by element name.
func normalizeResponses(ep *Endpoint, rec *xmltree.Node) {
	for _, name := range responseFields {
		found := field(name)(rec)
		if len(found) == 0 {
			continue
		}
		for _, n := range found {
			if name == "response" {
				addResponseItem(ep, n)
				continue
			}
			if items := realChildren(n, field("response")(n)); len(items) > 0 {
				for _, item := range items {
					addResponseItem(ep, item)
				}
				continue
			}
			for _, c := range n.Children {
				ep.setResponse(c.Name, Response{
					Description: responseDescFields.textOr(c, defaultResponseDesc),
					Example:     exampleFields.value(c),
				})
			}
		}
		return
	}
}

func addResponseItem(ep *Endpoint, item *xmltree.Node) {
	ep.setResponse(statusFields.textOr(item, defaultStatus), Response{
		Description: responseDescFields.textOr(item, defaultResponseDesc),
		Example:     exampleFields.value(item),
	})
}

// tagsOf reads <tags><tag>a</tag></tags>, repeated <tag> elements, or a
// comma-separated list.
func tagsOf(rec *xmltree.Node) []string {
	var tags []string
	for _, n := range tagFields.nodes(rec) {
		if len(n.Children) > 0 {
			for _, c := range n.Children {
				if c.Text != "" {
					tags = append(tags, c.Text)
				}
			}
			continue
		}
		for _, part := range strings.Split(n.Text, ",") {
			if part = strings.TrimSpace(part); part != "" {
				tags = append(tags, part)
			}
		}
	}
	return tags
}
