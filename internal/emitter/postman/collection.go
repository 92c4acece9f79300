// Package postman synthesizes Postman v2.1 collections and environments from
// interpreted API descriptions.
package postman

// SchemaURL identifies the collection format version.
const SchemaURL = "https://schema.getpostman.com/json/collection/v2.1.0/collection.json"

const (
	DefaultCollectionName = "Generated API Collection"
	DefaultDescription    = "Auto-generated Postman collection from XML files"
	DefaultBaseURL        = "https://api.example.com"
	DefaultFolderName     = "API Endpoints"

	TokenPlaceholder  = "your-api-token-here"
	APIKeyPlaceholder = "your-api-key-here"
)

type Collection struct {
	Info Info    `json:"info"`
	Item []Entry `json:"item"`
}

type Info struct {
	PostmanID   string `json:"_postman_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Schema      string `json:"schema"`
}

// Entry is a top-level collection entry: an *Item or a *Folder.
type Entry interface {
	EntryName() string
}

type Folder struct {
	Name        string  `json:"name"`
	Item        []*Item `json:"item"`
	Description string  `json:"description"`
}

func (f *Folder) EntryName() string { return f.Name }

type Item struct {
	Name    string  `json:"name"`
	Request Request `json:"request"`
	// Response is always empty; recorded executions are not synthesized.
	Response []any `json:"response"`
}

func (i *Item) EntryName() string { return i.Name }

type Request struct {
	Method string   `json:"method"`
	Header []Header `json:"header"`
	URL    URL      `json:"url"`
	Body   *Body    `json:"body,omitempty"`
}

type Header struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Type  string `json:"type"`
}

type URL struct {
	Raw   string       `json:"raw"`
	Host  []string     `json:"host"`
	Path  []string     `json:"path"`
	Port  string       `json:"port,omitempty"`
	Query []QueryParam `json:"query,omitempty"`
}

type QueryParam struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
}

type Body struct {
	Mode    string      `json:"mode"`
	Options BodyOptions `json:"options"`
	Raw     string      `json:"raw"`
}

type BodyOptions struct {
	Raw struct {
		Language string `json:"language"`
	} `json:"raw"`
}

type Environment struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Values []Variable `json:"values"`
}

type Variable struct {
	Key     string `json:"key"`
	Value   string `json:"value"`
	Enabled bool   `json:"enabled"`
}

// Items returns every request item, descending into folders.
func (c *Collection) Items() []*Item {
	var out []*Item
	for _, e := range c.Item {
		switch v := e.(type) {
		case *Item:
			out = append(out, v)
		case *Folder:
			out = append(out, v.Item...)
		}
	}
	return out
}
