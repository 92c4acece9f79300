package spec

import "strings"

// TypeKind is the resolved category of a declared parameter type.
type TypeKind int

const (
	TypeString TypeKind = iota
	TypeInteger
	TypeBoolean
	TypeDate
	TypeDateTime
	TypeEmail
	TypeUUID
	TypeUnknown
)

var typeKindNames = map[TypeKind]string{
	TypeString:   "string",
	TypeInteger:  "integer",
	TypeBoolean:  "boolean",
	TypeDate:     "date",
	TypeDateTime: "datetime",
	TypeEmail:    "email",
	TypeUUID:     "uuid",
	TypeUnknown:  "unknown",
}

func (k TypeKind) String() string { return typeKindNames[k] }

// typeAliases maps lowercase declared types to their kind.
var typeAliases = map[string]TypeKind{
	"string":   TypeString,
	"integer":  TypeInteger,
	"int":      TypeInteger,
	"number":   TypeInteger,
	"boolean":  TypeBoolean,
	"bool":     TypeBoolean,
	"date":     TypeDate,
	"datetime": TypeDateTime,
	"email":    TypeEmail,
	"uuid":     TypeUUID,
}

// ParamType is a declared parameter type. Raw keeps the source spelling.
type ParamType struct {
	Kind TypeKind
	Raw  string
}

// ParseParamType resolves a free-form type name case-insensitively. A
// namespace prefix such as "xs:" is ignored; blank input means string.
func ParseParamType(raw string) ParamType {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ParamType{Kind: TypeString, Raw: "string"}
	}
	local := raw
	if i := strings.LastIndex(local, ":"); i >= 0 {
		local = local[i+1:]
	}
	if kind, ok := typeAliases[strings.ToLower(local)]; ok {
		return ParamType{Kind: kind, Raw: raw}
	}
	return ParamType{Kind: TypeUnknown, Raw: raw}
}

func (p ParamType) String() string { return p.Raw }

// IsNumber reports whether the raw type was "number" rather than an integer.
func (p ParamType) IsNumber() bool {
	return p.Kind == TypeInteger && strings.EqualFold(p.local(), "number")
}

func (p ParamType) local() string {
	if i := strings.LastIndex(p.Raw, ":"); i >= 0 {
		return p.Raw[i+1:]
	}
	return p.Raw
}
