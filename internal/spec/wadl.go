package spec

import "github.com/mark3labs/xml2postman/internal/xmltree"

const (
	defaultTitle     = "API Documentation"
	wadlDescription  = "Generated from WADL XML"
	wadlResponseDesc = "Success"
)

// interpretWADL reads a <wadl> root: its <resources> children hold the
// resource trees, base and title come from root attributes.
func interpretWADL(_, root *xmltree.Node) *ParseResult {
	base, _ := root.Attr("base")
	title, _ := root.Attr("title")
	if title == "" {
		title = defaultTitle
	}
	return &ParseResult{
		BaseURL:   base,
		Endpoints: walkResourceGroups(root.ChildrenNamed("resources")),
		Info:      Info{Title: title, Description: wadlDescription},
		Dialect:   DialectWADL,
	}
}

// interpretApplication treats an <application> root as a resources group of
// its own, then walks the standard application > resources > resource layout.
func interpretApplication(_, root *xmltree.Node) *ParseResult {
	endpoints := walkResourceGroups([]*xmltree.Node{root})

	var base string
	groups := root.ChildrenNamed("resources")
	for _, g := range groups {
		if b, ok := g.Attr("base"); ok && b != "" {
			base = b
			break
		}
	}
	endpoints = append(endpoints, walkResourceGroups(groups)...)

	return &ParseResult{
		BaseURL:   base,
		Endpoints: endpoints,
		Info:      Info{Title: defaultTitle, Description: wadlDescription},
		Dialect:   DialectWADL,
	}
}

func walkResourceGroups(groups []*xmltree.Node) []Endpoint {
	endpoints := []Endpoint{}
	for _, g := range groups {
		for _, r := range g.ChildrenNamed("resource") {
			endpoints = append(endpoints, walkResource(r)...)
		}
	}
	return endpoints
}

// walkResource emits a resource tree in pre-order: a resource's methods come
// before its nested resources, and paths are concatenated verbatim.
func walkResource(top *xmltree.Node) []Endpoint {
	type frame struct {
		node *xmltree.Node
		base string
	}

	var endpoints []Endpoint
	stack := []frame{{node: top}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		own, _ := f.node.Attr("path")
		path := f.base + own

		for _, m := range f.node.ChildrenNamed("method") {
			endpoints = append(endpoints, wadlMethod(m, path))
		}

		nested := f.node.ChildrenNamed("resource")
		for i := len(nested) - 1; i >= 0; i-- {
			stack = append(stack, frame{node: nested[i], base: path})
		}
	}
	return endpoints
}

func wadlMethod(m *xmltree.Node, path string) Endpoint {
	if path == "" {
		path = "/"
	}
	name, _ := m.Attr("name")
	ep := newEndpoint(path, NormalizeMethod(name))

	// only the id names a method; its <doc> is not used
	ep.Description, _ = m.Attr("id")

	for _, req := range m.ChildrenNamed("request") {
		for _, p := range req.ChildrenNamed("param") {
			if len(p.Attrs) == 0 {
				continue
			}
			ep.Parameters = append(ep.Parameters, wadlParam(p))
		}
	}

	for _, r := range m.ChildrenNamed("response") {
		status, _ := r.Attr("status")
		if status == "" {
			status = defaultStatus
		}
		desc := wadlDoc(r)
		if desc == "" {
			desc = wadlResponseDesc
		}
		ep.setResponse(status, Response{Description: desc})
	}
	return ep
}

func wadlParam(p *xmltree.Node) Parameter {
	name, _ := p.Attr("name")
	if name == "" {
		name = defaultParamName
	}
	typ, _ := p.Attr("type")
	required, _ := p.Attr("required")
	return Parameter{
		Name:        name,
		Type:        ParseParamType(typ),
		Required:    required == "true",
		Description: wadlDoc(p),
	}
}

// wadlDoc returns the doc attribute, or the text of the first <doc> child.
func wadlDoc(n *xmltree.Node) string {
	if d, ok := n.Attr("doc"); ok && d != "" {
		return d
	}
	for _, d := range n.ChildrenNamed("doc") {
		if d.Text != "" {
			return d.Text
		}
	}
	return ""
}
