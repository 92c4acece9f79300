package spec

import (
	"fmt"

	"github.com/mark3labs/xml2postman/internal/xmltree"
)

// looksLikeEndpoint is the structural fallback's low-precision test: any
// path-like, method-like or request/response/parameter-shaped field counts.
func looksLikeEndpoint(n *xmltree.Node) bool {
	return pathFields.has(n) || methodFields.has(n) || endpointShapeFields.has(n)
}

// interpretStructure searches an unrecognized document for endpoint-like
// records. Every matching object is emitted, including containers whose
// children also match; nothing is deduplicated.
func interpretStructure(doc, _ *xmltree.Node) *ParseResult {
	return &ParseResult{
		Endpoints: findEndpoints(doc),
		Info: Info{
			Title:       defaultTitle,
			Version:     defaultVersion,
			Description: fallbackDescription,
		},
		Dialect: DialectStructural,
	}
}

// findEndpoints walks the tree in pre-order with an explicit stack. Each
// visited object carries the trail of element names leading to it, with an
// index suffix for repeated names (a/b[2]/c); the trail is the fallback path.
func findEndpoints(doc *xmltree.Node) []Endpoint {
	type frame struct {
		node  *xmltree.Node
		trail string
	}

	endpoints := []Endpoint{}
	stack := []frame{{node: doc}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if looksLikeEndpoint(f.node) {
			endpoints = append(endpoints, normalizeRecord(f.node, f.trail))
		}

		var next []frame
		for _, g := range f.node.Groups() {
			key := g.Name
			if f.trail != "" {
				key = f.trail + "/" + g.Name
			}
			for i, c := range g.Nodes {
				if !isObject(c) {
					continue
				}
				trail := key
				if len(g.Nodes) > 1 {
					trail = fmt.Sprintf("%s[%d]", key, i)
				}
				next = append(next, frame{node: c, trail: trail})
			}
		}
		for i := len(next) - 1; i >= 0; i-- {
			stack = append(stack, next[i])
		}
	}
	return endpoints
}
