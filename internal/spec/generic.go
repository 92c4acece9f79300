package spec

import "github.com/mark3labs/xml2postman/internal/xmltree"

const (
	defaultVersion      = "1.0.0"
	genericDescription  = "Generated from XML"
	fallbackDescription = "Generated from XML structure"
)

// endpointContainers lists where endpoint records may live under a scope
// node, highest priority first. An empty container means the records are
// direct children of the scope.
var endpointContainers = []struct {
	container string
	record    string
}{
	{"endpoints", "endpoint"},
	{"resources", "resource"},
	{"", "endpoint"},
	{"", "resource"},
}

// endpointRecords flattens every matching container in priority order,
// keeping each container's document order.
func endpointRecords(scope *xmltree.Node) []*xmltree.Node {
	var records []*xmltree.Node
	for _, c := range endpointContainers {
		holders := []*xmltree.Node{scope}
		if c.container != "" {
			holders = scope.ChildrenNamed(c.container)
		}
		for _, h := range holders {
			records = append(records, h.ChildrenNamed(c.record)...)
		}
	}
	return records
}

func normalizeRecords(records []*xmltree.Node) []Endpoint {
	endpoints := make([]Endpoint, 0, len(records))
	for _, rec := range records {
		endpoints = append(endpoints, normalizeRecord(rec, ""))
	}
	return endpoints
}

// interpretAPI reads an <api> root; records and info live on the root.
func interpretAPI(_, root *xmltree.Node) *ParseResult {
	return &ParseResult{
		BaseURL:   baseURLFields.text(root),
		Endpoints: normalizeRecords(endpointRecords(root)),
		Info:      genericInfo(root),
		Dialect:   DialectAPI,
	}
}

// interpretEndpoints reads an <endpoints> or <resources> root. The records
// are looked up from the document, so the root itself acts as the container.
func interpretEndpoints(doc, root *xmltree.Node) *ParseResult {
	return &ParseResult{
		BaseURL:   firstText(baseURLFields, doc, root),
		Endpoints: normalizeRecords(endpointRecords(doc)),
		Info:      genericInfo(doc, root),
		Dialect:   DialectEndpoints,
	}
}

// genericInfo resolves each info field on the first scope that has it.
func genericInfo(scopes ...*xmltree.Node) Info {
	info := Info{
		Title:       firstText(titleFields, scopes...),
		Version:     firstText(versionFields, scopes...),
		Description: firstText(infoDescFields, scopes...),
	}
	if info.Title == "" {
		info.Title = defaultTitle
	}
	if info.Version == "" {
		info.Version = defaultVersion
	}
	if info.Description == "" {
		info.Description = genericDescription
	}
	return info
}

func firstText(f fieldPriority, scopes ...*xmltree.Node) string {
	for _, s := range scopes {
		if v := f.text(s); v != "" {
			return v
		}
	}
	return ""
}
