package postman

import (
	"github.com/google/uuid"

	"github.com/mark3labs/xml2postman/internal/spec"
)

// groupThreshold is the endpoint count above which a single document's items
// are wrapped in a folder.
const groupThreshold = 5

// Options controls collection synthesis.
type Options struct {
	// Name of the collection; DefaultCollectionName when empty.
	Name string
	// BaseURL applies to results without a base URL of their own;
	// DefaultBaseURL when empty.
	BaseURL string
	// NewID generates the collection id and uuid-typed samples. Defaults to
	// random v4 UUIDs.
	NewID func() string
}

func (o Options) withDefaults() Options {
	if o.Name == "" {
		o.Name = DefaultCollectionName
	}
	if o.BaseURL == "" {
		o.BaseURL = DefaultBaseURL
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	return o
}

// Generate synthesizes one collection from any number of results. Items are
// foldered per result when several results are combined, or when a single
// result has more than five endpoints or any tagged endpoint.
func Generate(results []*spec.ParseResult, opts Options) *Collection {
	opts = opts.withDefaults()

	c := &Collection{
		Info: Info{
			PostmanID:   opts.NewID(),
			Name:        opts.Name,
			Description: DefaultDescription,
			Schema:      SchemaURL,
		},
		Item: []Entry{},
	}

	for _, res := range results {
		if res == nil {
			continue
		}
		base := res.BaseURL
		if base == "" {
			base = opts.BaseURL
		}
		items := make([]*Item, 0, len(res.Endpoints))
		for _, ep := range res.Endpoints {
			items = append(items, newItem(ep, base, opts.NewID))
		}

		if len(results) > 1 || shouldGroup(res.Endpoints) {
			c.Item = append(c.Item, newFolder(res.Info.Title, items))
			continue
		}
		for _, it := range items {
			c.Item = append(c.Item, it)
		}
	}
	return c
}

func shouldGroup(endpoints []spec.Endpoint) bool {
	if len(endpoints) > groupThreshold {
		return true
	}
	for _, ep := range endpoints {
		if len(ep.Tags) > 0 {
			return true
		}
	}
	return false
}

func newFolder(name string, items []*Item) *Folder {
	if name == "" {
		name = DefaultFolderName
	}
	return &Folder{Name: name, Item: items, Description: "API endpoints for " + name}
}

// GenerateWithEnvironment synthesizes the collection and its environment.
// An empty environment name becomes "<collection name> Environment".
func GenerateWithEnvironment(results []*spec.ParseResult, opts Options, environmentName string) (*Collection, *Environment) {
	opts = opts.withDefaults()
	if environmentName == "" {
		environmentName = opts.Name + " Environment"
	}
	return Generate(results, opts), GenerateEnvironment(results, environmentName, opts.NewID)
}
