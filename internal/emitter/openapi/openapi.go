// Package openapi exports a parse result as an OpenAPI 3.0 document.
package openapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/speakeasy-api/openapi/sequencedmap"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/xml2postman/internal/emitter/postman"
	"github.com/mark3labs/xml2postman/internal/spec"
)

const (
	Version = "3.0.3"

	defaultVersion      = "1.0.0"
	defaultTitle        = "API Documentation"
	defaultStatus       = "200"
	defaultResponseDesc = "Success"
	jsonContentType     = "application/json"
)

type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat accepts yaml, yml or json case-insensitively. Blank means yaml.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported openapi format %q (allowed: yaml, json)", raw)
	}
}

// Ext is the file extension for the format, without the dot.
func (f Format) Ext() string {
	if f == FormatJSON {
		return "json"
	}
	return "yaml"
}

var supportedMethods = map[spec.HttpMethod]bool{
	spec.GET: true, spec.POST: true, spec.PUT: true, spec.DELETE: true,
	spec.PATCH: true, spec.HEAD: true, spec.OPTIONS: true, spec.TRACE: true,
	"CONNECT": true,
}

// Build converts one parse result into a validated OpenAPI document.
// Endpoints whose method OpenAPI cannot express are skipped, and a repeated
// method+path pair keeps its first occurrence.
func Build(ctx context.Context, res *spec.ParseResult) (*openapi3.T, error) {
	if res == nil {
		res = &spec.ParseResult{}
	}
	info := &openapi3.Info{
		Title:       orDefault(res.Info.Title, defaultTitle),
		Version:     orDefault(res.Info.Version, defaultVersion),
		Description: res.Info.Description,
	}
	doc := &openapi3.T{
		OpenAPI: Version,
		Info:    info,
		Paths:   openapi3.Paths{},
	}
	if res.BaseURL != "" {
		doc.AddServer(&openapi3.Server{URL: res.BaseURL})
	}

	for _, e := range res.Endpoints {
		if !supportedMethods[e.Method] {
			continue
		}
		path := pathKey(e.Path)
		if item := doc.Paths[path]; item != nil && item.GetOperation(string(e.Method)) != nil {
			continue
		}
		doc.AddOperation(path, string(e.Method), operation(path, e))
	}

	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("validate openapi document: %w", err)
	}
	return doc, nil
}

// pathKey drops any query or fragment and ensures a leading slash.
func pathKey(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

func operation(path string, e spec.Endpoint) *openapi3.Operation {
	op := openapi3.NewOperation()
	op.Summary = e.Description
	if len(e.Tags) > 0 {
		op.Tags = append([]string(nil), e.Tags...)
	}

	vars := pathVars(path)
	isVar := make(map[string]bool, len(vars))
	for _, v := range vars {
		isVar[v] = true
	}
	seen := map[string]bool{}
	for _, p := range e.Parameters {
		if p.Name == "" || seen[p.Name] {
			continue
		}
		seen[p.Name] = true
		var param *openapi3.Parameter
		if isVar[p.Name] {
			param = openapi3.NewPathParameter(p.Name)
		} else {
			param = openapi3.NewQueryParameter(p.Name).WithRequired(p.Required)
		}
		if p.Description != "" {
			param.WithDescription(p.Description)
		}
		op.AddParameter(param.WithSchema(paramSchema(p.Type)))
	}
	for _, v := range vars {
		if !seen[v] {
			seen[v] = true
			op.AddParameter(openapi3.NewPathParameter(v).WithSchema(openapi3.NewStringSchema()))
		}
	}

	if e.RequestBody != nil {
		op.RequestBody = &openapi3.RequestBodyRef{Value: requestBody(e.RequestBody)}
	}
	op.Responses = responses(e.Responses)
	return op
}

// pathVars lists the distinct {name} segments of a path template in order.
func pathVars(path string) []string {
	var (
		out    []string
		seen   = map[string]bool{}
		name   strings.Builder
		inside bool
	)
	for _, c := range path {
		switch {
		case inside && c == '}':
			inside = false
			if v := name.String(); !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
			name.Reset()
		case inside:
			name.WriteRune(c)
		case c == '{':
			inside = true
		}
	}
	return out
}

func paramSchema(t spec.ParamType) *openapi3.Schema {
	switch t.Kind {
	case spec.TypeInteger:
		if t.IsNumber() {
			return openapi3.NewFloat64Schema()
		}
		return openapi3.NewIntegerSchema()
	case spec.TypeBoolean:
		return openapi3.NewBoolSchema()
	case spec.TypeDate:
		return openapi3.NewStringSchema().WithFormat("date")
	case spec.TypeDateTime:
		return openapi3.NewDateTimeSchema()
	case spec.TypeEmail:
		return openapi3.NewStringSchema().WithFormat("email")
	case spec.TypeUUID:
		return openapi3.NewUUIDSchema()
	default:
		return openapi3.NewStringSchema()
	}
}

func requestBody(b *spec.Body) *openapi3.RequestBody {
	schema := bodySchema(b.Schema)
	example := b.Example
	if example == nil && b.Schema != nil {
		example = postman.SampleFromSchema(b.Schema)
	}
	if schema == nil {
		if _, ok := example.(string); ok {
			schema = openapi3.NewStringSchema()
		} else {
			schema = openapi3.NewObjectSchema()
		}
	}
	mt := openapi3.NewMediaType().WithSchema(schema)
	mt.Example = plain(example)
	return openapi3.NewRequestBody().
		WithRequired(true).
		WithContent(openapi3.Content{orDefault(b.ContentType, jsonContentType): mt})
}

// bodySchema maps a detached XML schema element onto an OpenAPI schema.
// Anything other than an element with children yields nil.
func bodySchema(v any) *openapi3.Schema {
	obj, ok := v.(*sequencedmap.Map[string, any])
	if !ok || obj == nil {
		return nil
	}
	typ, _ := obj.GetOrZero("type").(string)
	props, _ := obj.GetOrZero("properties").(*sequencedmap.Map[string, any])

	var s *openapi3.Schema
	switch strings.ToLower(strings.TrimSpace(typ)) {
	case "string":
		s = openapi3.NewStringSchema()
	case "integer":
		s = openapi3.NewIntegerSchema()
	case "number":
		s = openapi3.NewFloat64Schema()
	case "boolean":
		s = openapi3.NewBoolSchema()
	case "array":
		items := bodySchema(obj.GetOrZero("items"))
		if items == nil {
			items = openapi3.NewStringSchema()
		}
		s = openapi3.NewArraySchema().WithItems(items)
	case "object":
		s = openapi3.NewObjectSchema()
	default:
		if props == nil {
			s = openapi3.NewSchema()
		} else {
			s = openapi3.NewObjectSchema()
		}
	}
	if format, _ := obj.GetOrZero("format").(string); format != "" {
		s.WithFormat(format)
	}
	if desc, _ := obj.GetOrZero("description").(string); desc != "" {
		s.Description = desc
	}
	for name, prop := range props.All() {
		ps := bodySchema(prop)
		if ps == nil {
			ps = openapi3.NewSchema()
		}
		s.WithProperty(name, ps)
	}
	return s
}

func responses(in *sequencedmap.Map[string, spec.Response]) openapi3.Responses {
	out := openapi3.Responses{}
	for status, r := range in.All() {
		if !isStatusKey(status) {
			continue
		}
		resp := openapi3.NewResponse().WithDescription(orDefault(r.Description, defaultResponseDesc))
		if r.Example != nil {
			mt := openapi3.NewMediaType()
			mt.Example = plain(r.Example)
			resp.Content = openapi3.Content{jsonContentType: mt}
		}
		out[status] = &openapi3.ResponseRef{Value: resp}
	}
	if len(out) == 0 {
		out[defaultStatus] = &openapi3.ResponseRef{
			Value: openapi3.NewResponse().WithDescription(defaultResponseDesc),
		}
	}
	return out
}

// isStatusKey accepts the keys OpenAPI allows in a responses object: a
// three-digit code, a range such as 4XX, or "default".
func isStatusKey(k string) bool {
	if k == "default" {
		return true
	}
	if len(k) != 3 || k[0] < '1' || k[0] > '5' {
		return false
	}
	if k[1:] == "XX" {
		return true
	}
	return isDigit(k[1]) && isDigit(k[2])
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// plain converts detached XML values into maps and slices that both JSON
// and YAML encoders understand.
func plain(v any) any {
	switch t := v.(type) {
	case *sequencedmap.Map[string, any]:
		if t == nil {
			return nil
		}
		m := make(map[string]any, t.Len())
		for k, val := range t.All() {
			m[k] = plain(val)
		}
		return m
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = plain(val)
		}
		return out
	default:
		return v
	}
}

// Render encodes doc as YAML or JSON.
func Render(doc *openapi3.T, format Format) ([]byte, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode openapi document: %w", err)
	}
	if format == FormatJSON {
		var out bytes.Buffer
		if err := json.Indent(&out, raw, "", "  "); err != nil {
			return nil, err
		}
		out.WriteByte('\n')
		return out.Bytes(), nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return nil, fmt.Errorf("convert openapi document: %w", err)
	}
	blockStyle(&node)
	var out bytes.Buffer
	enc := yaml.NewEncoder(&out)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return nil, fmt.Errorf("encode openapi document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// blockStyle clears the flow and quoting styles the JSON decode leaves on
// every node; the encoder re-quotes scalars that need it.
func blockStyle(n *yaml.Node) {
	stack := []*yaml.Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		cur.Style = 0
		stack = append(stack, cur.Content...)
	}
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
