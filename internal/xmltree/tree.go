// Package xmltree decodes XML text into an ordered element tree.
//
// Decoding into Go maps loses document order, which the dialect interpreters
// depend on (endpoint order, fallback path trails), so the tree keeps
// attributes and children exactly as they appear in the source.
package xmltree

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/speakeasy-api/openapi/sequencedmap"
	"golang.org/x/text/encoding/ianaindex"
)

// TextKey is the object key holding the text of an element that also has
// attributes or children.
const TextKey = "_"

var (
	// ErrNoRoot is returned for input without any element.
	ErrNoRoot = errors.New("xmltree: document has no root element")
	// ErrTooDeep is returned when WithMaxDepth is set and exceeded.
	ErrTooDeep = errors.New("xmltree: maximum element depth exceeded")
)

// Attr is a single attribute, namespace prefix dropped.
type Attr struct {
	Name  string
	Value string
}

// Node is one XML element. The document itself is a Node with an empty Name
// whose only child is the root element.
type Node struct {
	Name     string
	Attrs    []Attr
	Text     string // whitespace-trimmed direct character data
	Children []*Node
}

// Group is a run of same-named children, in the order the name first appears.
type Group struct {
	Name  string
	Nodes []*Node
}

type settings struct {
	maxDepth int
}

// Option configures Parse.
type Option func(*settings)

// WithMaxDepth bounds element nesting; zero or negative means unbounded.
func WithMaxDepth(depth int) Option { return func(s *settings) { s.maxDepth = depth } }

// Parse reads a whole XML document. It never recurses, so arbitrarily deep
// documents are bounded only by memory unless WithMaxDepth is used.
func Parse(r io.Reader, opts ...Option) (*Node, error) {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}

	dec := xml.NewDecoder(r)
	dec.CharsetReader = charsetReader

	doc := &Node{}
	stack := []*Node{doc}
	texts := []*strings.Builder{{}}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("xmltree: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) == 1 && len(doc.Children) > 0 {
				return nil, errors.New("xmltree: multiple root elements")
			}
			if s.maxDepth > 0 && len(stack) > s.maxDepth {
				return nil, ErrTooDeep
			}
			n := &Node{Name: t.Name.Local}
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
					continue
				}
				n.Attrs = append(n.Attrs, Attr{Name: a.Name.Local, Value: a.Value})
			}
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, n)
			stack = append(stack, n)
			texts = append(texts, &strings.Builder{})
		case xml.EndElement:
			top := len(stack) - 1
			stack[top].Text = strings.TrimSpace(texts[top].String())
			stack = stack[:top]
			texts = texts[:top]
		case xml.CharData:
			if len(stack) == 1 {
				if strings.TrimSpace(string(t)) != "" {
					return nil, errors.New("xmltree: text outside the root element")
				}
				continue
			}
			texts[len(texts)-1].Write(t)
		}
	}

	if len(doc.Children) == 0 {
		return nil, ErrNoRoot
	}
	return doc, nil
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", label, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported charset %q", label)
	}
	return enc.NewDecoder().Reader(input), nil
}

// Root returns the root element of a document node, or nil.
func (n *Node) Root() *Node {
	if n == nil || len(n.Children) == 0 {
		return nil
	}
	return n.Children[0]
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// ChildrenNamed returns the direct children with the given local name.
func (n *Node) ChildrenNamed(name string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// IsScalar reports whether the element carries nothing but text. Scalars are
// leaf values; everything else is an object.
func (n *Node) IsScalar() bool {
	return len(n.Attrs) == 0 && len(n.Children) == 0
}

// IsEmpty reports whether the element carries no information at all.
func (n *Node) IsEmpty() bool {
	return n.IsScalar() && n.Text == ""
}

// Groups returns the children grouped by name.
func (n *Node) Groups() []Group {
	var groups []Group
	index := map[string]int{}
	for _, c := range n.Children {
		i, ok := index[c.Name]
		if !ok {
			index[c.Name] = len(groups)
			groups = append(groups, Group{Name: c.Name, Nodes: []*Node{c}})
			continue
		}
		groups[i].Nodes = append(groups[i].Nodes, c)
	}
	return groups
}

// Value detaches the subtree into plain values: a string for scalars, an
// ordered map for objects, and a slice for repeated children. Attributes come
// first, children win over same-named attributes, and mixed text is stored
// under TextKey.
func (n *Node) Value() any {
	if n.IsScalar() {
		return n.Text
	}
	groups := n.Groups()
	obj := sequencedmap.New[string, any]()
	for _, a := range n.Attrs {
		if obj.Has(a.Name) || hasGroup(groups, a.Name) {
			continue
		}
		obj.Set(a.Name, a.Value)
	}
	for _, g := range groups {
		if len(g.Nodes) == 1 {
			obj.Set(g.Name, g.Nodes[0].Value())
			continue
		}
		items := make([]any, 0, len(g.Nodes))
		for _, c := range g.Nodes {
			items = append(items, c.Value())
		}
		obj.Set(g.Name, items)
	}
	if n.Text != "" && !obj.Has(TextKey) {
		obj.Set(TextKey, n.Text)
	}
	return obj
}

func hasGroup(groups []Group, name string) bool {
	for _, g := range groups {
		if g.Name == name {
			return true
		}
	}
	return false
}
