package postman

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/speakeasy-api/openapi/sequencedmap"

	"github.com/mark3labs/xml2postman/internal/spec"
)

// SampleValue returns the query-string sample for a parameter type. newID is
// called once per uuid-typed parameter.
func SampleValue(t spec.ParamType, newID func() string) string {
	switch t.Kind {
	case spec.TypeInteger:
		return "123"
	case spec.TypeBoolean:
		return "true"
	case spec.TypeDate:
		return "2024-01-01"
	case spec.TypeDateTime:
		return "2024-01-01T00:00:00Z"
	case spec.TypeEmail:
		return "user@example.com"
	case spec.TypeUUID:
		return newID()
	default:
		return "sample_value"
	}
}

func exampleObject() *sequencedmap.Map[string, any] {
	m := sequencedmap.New[string, any]()
	m.Set("example", "value")
	return m
}

// SampleFromSchema builds a sample object from a schema's properties. Each
// property's explicit example wins over the sample for its declared type.
// Non-object schemas and schemas without properties yield {"example":"value"}.
func SampleFromSchema(schema any) *sequencedmap.Map[string, any] {
	obj, ok := schema.(*sequencedmap.Map[string, any])
	if !ok {
		return exampleObject()
	}
	props, ok := obj.GetOrZero("properties").(*sequencedmap.Map[string, any])
	if !ok {
		return exampleObject()
	}

	sample := sequencedmap.New[string, any]()
	for key, prop := range props.All() {
		propSchema, _ := prop.(*sequencedmap.Map[string, any])
		typ, _ := propSchema.GetOrZero("type").(string)
		example := explicitExample(propSchema)

		var v any
		switch strings.ToLower(typ) {
		case "string":
			v = "sample_value"
		case "integer", "number":
			v = 123
			if n, ok := asNumber(example); ok {
				example = n
			}
		case "boolean":
			v = true
			if b, err := strconv.ParseBool(asString(example)); err == nil {
				example = b
			}
		case "array":
			v = []any{"item1", "item2"}
		case "object":
			if example == nil {
				v = SampleFromSchema(propSchema)
			}
		default:
			v = "value"
		}
		if example != nil {
			v = example
		}
		sample.Set(key, v)
	}

	if sample.Len() == 0 {
		return exampleObject()
	}
	return sample
}

// explicitExample returns a property's example, or nil when absent or empty.
func explicitExample(prop *sequencedmap.Map[string, any]) any {
	ex, ok := prop.Get("example")
	if !ok || ex == nil {
		return nil
	}
	if s, ok := ex.(string); ok && s == "" {
		return nil
	}
	return ex
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asNumber(v any) (json.Number, bool) {
	s := strings.TrimSpace(asString(v))
	if s == "" {
		return "", false
	}
	if _, err := strconv.ParseFloat(s, 64); err != nil || !json.Valid([]byte(s)) {
		return "", false
	}
	return json.Number(s), true
}
