package postman

import (
	"net/url"
	"strings"

	"github.com/mark3labs/xml2postman/internal/spec"
)

// fallbackHost is used when the joined URL does not parse with a host.
var fallbackHost = []string{"api", "example", "com"}

func newItem(ep spec.Endpoint, baseURL string, newID func() string) *Item {
	raw := buildURL(ep.Path, baseURL)
	u := parseURL(raw)

	item := &Item{
		Name: itemName(ep),
		Request: Request{
			Method: string(ep.Method),
			Header: headers(ep),
			URL:    u,
		},
		Response: []any{},
	}
	if ep.RequestBody != nil {
		item.Request.Body = requestBody(ep.RequestBody)
	}

	for _, p := range ep.Parameters {
		if p.Name == "" || ep.HasPlaceholder(p.Name) {
			continue
		}
		item.Request.URL.Query = append(item.Request.URL.Query, QueryParam{
			Key:         p.Name,
			Value:       SampleValue(p.Type, newID),
			Description: p.Description,
		})
	}
	return item
}

// buildURL joins a base URL and a path with exactly the base's trailing slash
// removed and a leading slash enforced on the path.
func buildURL(path, baseURL string) string {
	base := strings.TrimSuffix(baseURL, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

// parseURL splits a URL into Postman's host/path/query form. URLs without a
// scheme and host get the placeholder host and naive path segments.
func parseURL(raw string) URL {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Hostname() == "" {
		parts := strings.Split(raw, "/")
		var path []string
		if len(parts) > 3 {
			path = nonEmpty(parts[3:])
		}
		return URL{Raw: raw, Host: fallbackHost, Path: orEmpty(path)}
	}

	out := URL{
		Raw:  raw,
		Host: strings.Split(strings.ToLower(u.Hostname()), "."),
		Path: orEmpty(nonEmpty(strings.Split(u.Path, "/"))),
	}
	if port := u.Port(); port != "" && !isDefaultPort(u.Scheme, port) {
		out.Port = port
	}
	out.Query = queryPairs(u.RawQuery)
	return out
}

func isDefaultPort(scheme, port string) bool {
	switch strings.ToLower(scheme) {
	case "http", "ws":
		return port == "80"
	case "https", "wss":
		return port == "443"
	}
	return false
}

// queryPairs keeps the order and repetitions of the raw query.
func queryPairs(rawQuery string) []QueryParam {
	var out []QueryParam
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		out = append(out, QueryParam{Key: unescapeQuery(k), Value: unescapeQuery(v)})
	}
	return out
}

func unescapeQuery(s string) string {
	if u, err := url.QueryUnescape(s); err == nil {
		return u
	}
	return s
}

func nonEmpty(parts []string) []string {
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// itemName prefers the description, then "METHOD segment" with the last
// non-templated path segment.
func itemName(ep spec.Endpoint) string {
	if ep.Description != "" {
		return ep.Description
	}
	name := "endpoint"
	for _, part := range strings.Split(ep.Path, "/") {
		if part != "" && !strings.HasPrefix(part, "{") {
			name = part
		}
	}
	return string(ep.Method) + " " + name
}

func headers(ep spec.Endpoint) []Header {
	var hs []Header
	if ep.RequestBody != nil {
		ct := ep.RequestBody.ContentType
		if ct == "" {
			ct = "application/json"
		}
		hs = append(hs, Header{Key: "Content-Type", Value: ct, Type: "text"})
	}
	return append(hs,
		Header{Key: "Accept", Value: "application/json", Type: "text"},
		Header{Key: "Authorization", Value: "Bearer {{token}}", Type: "text"},
	)
}

func requestBody(b *spec.Body) *Body {
	body := &Body{Mode: "raw"}
	body.Options.Raw.Language = "json"

	switch {
	case hasValue(b.Example):
		if s, ok := b.Example.(string); ok {
			body.Raw = s
		} else {
			body.Raw = prettyJSON(b.Example)
		}
	case hasValue(b.Schema):
		body.Raw = prettyJSON(SampleFromSchema(b.Schema))
	default:
		body.Raw = prettyJSON(exampleObject())
	}
	return body
}

func hasValue(v any) bool {
	if v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return s != ""
	}
	return true
}
