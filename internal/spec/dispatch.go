package spec

import "github.com/mark3labs/xml2postman/internal/xmltree"

type interpreter func(doc, root *xmltree.Node) *ParseResult

// dialectRules is evaluated in order against the root element name; the first
// match wins. A document that matches no rule goes to the structural search.
var dialectRules = []struct {
	root      string
	interpret interpreter
}{
	{"wadl", interpretWADL},
	{"application", interpretApplication},
	{"api", interpretAPI},
	{"endpoints", interpretEndpoints},
	{"resources", interpretEndpoints},
}

// Interpret selects the interpreter for a parsed document and runs it. It
// always returns a result; documents without recognizable endpoints yield an
// empty endpoint list.
func Interpret(doc *xmltree.Node) *ParseResult {
	root := doc.Root()
	if root == nil {
		return interpretStructure(&xmltree.Node{}, nil)
	}
	for _, rule := range dialectRules {
		if root.Name == rule.root {
			return rule.interpret(doc, root)
		}
	}
	return interpretStructure(doc, root)
}
