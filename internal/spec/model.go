package spec

import (
	"strings"

	"github.com/speakeasy-api/openapi/sequencedmap"
)

// Endpoint Model: the dialect-independent description of one XML document.
// Values are produced once by an interpreter and never mutated afterwards.

type HttpMethod string

const (
	GET     HttpMethod = "GET"
	POST    HttpMethod = "POST"
	PUT     HttpMethod = "PUT"
	DELETE  HttpMethod = "DELETE"
	PATCH   HttpMethod = "PATCH"
	HEAD    HttpMethod = "HEAD"
	OPTIONS HttpMethod = "OPTIONS"
	TRACE   HttpMethod = "TRACE"
)

// NormalizeMethod uppercases a method name, defaulting to GET when blank.
func NormalizeMethod(raw string) HttpMethod {
	m := strings.ToUpper(strings.TrimSpace(raw))
	if m == "" {
		return GET
	}
	return HttpMethod(m)
}

// Dialect names the interpreter that produced a ParseResult.
type Dialect string

const (
	DialectWADL       Dialect = "wadl"
	DialectAPI        Dialect = "api"
	DialectEndpoints  Dialect = "endpoints"
	DialectStructural Dialect = "structural"
)

type ParseResult struct {
	BaseURL   string
	Endpoints []Endpoint
	Info      Info
	Dialect   Dialect
}

type Info struct {
	Title       string
	Version     string
	Description string
}

type Endpoint struct {
	Path        string
	Method      HttpMethod
	Description string
	Parameters  []Parameter
	RequestBody *Body
	Responses   *sequencedmap.Map[string, Response]
	Tags        []string
}

type Parameter struct {
	Name        string
	Type        ParamType
	Required    bool
	Description string
}

type Body struct {
	ContentType string
	// Schema and Example are detached XML values: string, []any or
	// *sequencedmap.Map[string, any]. Nil when absent.
	Schema  any
	Example any
}

type Response struct {
	Description string
	Example     any
}

func newEndpoint(path string, method HttpMethod) Endpoint {
	return Endpoint{
		Path:       path,
		Method:     method,
		Parameters: []Parameter{},
		Responses:  sequencedmap.New[string, Response](),
	}
}

// setResponse stores a response; a repeated status replaces the earlier one.
func (e *Endpoint) setResponse(status string, r Response) {
	if e.Responses.Has(status) {
		e.Responses.Delete(status)
	}
	e.Responses.Set(status, r)
}

// HasPlaceholder reports whether the path template contains {name}.
func (e Endpoint) HasPlaceholder(name string) bool {
	return strings.Contains(e.Path, "{"+name+"}")
}

// TotalEndpoints sums endpoints across results.
func TotalEndpoints(results []*ParseResult) int {
	n := 0
	for _, r := range results {
		if r != nil {
			n += len(r.Endpoints)
		}
	}
	return n
}
