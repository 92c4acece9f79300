package postman

import (
	"bytes"
	"encoding/json"

	"github.com/speakeasy-api/openapi/sequencedmap"
)

// Marshal renders v as two-space indented JSON without HTML escaping and
// without a trailing newline.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// prettyJSON renders sample bodies. Ordered maps are walked here rather than
// through their MarshalJSON, which escapes HTML characters.
func prettyJSON(v any) string {
	var compact bytes.Buffer
	if err := appendValue(&compact, v); err != nil {
		return ""
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return compact.String()
	}
	return out.String()
}

func appendValue(buf *bytes.Buffer, v any) error {
	switch t := v.(type) {
	case *sequencedmap.Map[string, any]:
		if t == nil {
			buf.WriteString("null")
			return nil
		}
		buf.WriteByte('{')
		first := true
		for k, val := range t.All() {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			if err := appendValue(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := appendValue(buf, val); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case []any:
		buf.WriteByte('[')
		for i, val := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := appendValue(buf, val); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		var scalar bytes.Buffer
		enc := json.NewEncoder(&scalar)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(t); err != nil {
			return err
		}
		buf.Write(bytes.TrimSuffix(scalar.Bytes(), []byte("\n")))
	}
	return nil
}
