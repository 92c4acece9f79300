package postman

import (
	"github.com/google/uuid"

	"github.com/mark3labs/xml2postman/internal/spec"
)

// BaseURLs returns the distinct non-empty base URLs in first-seen order.
func BaseURLs(results []*spec.ParseResult) []string {
	var out []string
	seen := map[string]bool{}
	for _, r := range results {
		if r == nil || r.BaseURL == "" || seen[r.BaseURL] {
			continue
		}
		seen[r.BaseURL] = true
		out = append(out, r.BaseURL)
	}
	return out
}

// GenerateEnvironment always emits exactly baseUrl, token and apiKey. Only
// the first collected base URL is kept; the others are dropped.
func GenerateEnvironment(results []*spec.ParseResult, name string, newID func() string) *Environment {
	if newID == nil {
		newID = uuid.NewString
	}
	base := DefaultBaseURL
	if urls := BaseURLs(results); len(urls) > 0 {
		base = urls[0]
	}
	return &Environment{
		ID:   newID(),
		Name: name,
		Values: []Variable{
			{Key: "baseUrl", Value: base, Enabled: true},
			{Key: "token", Value: TokenPlaceholder, Enabled: true},
			{Key: "apiKey", Value: APIKeyPlaceholder, Enabled: true},
		},
	}
}
