package spec

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mark3labs/xml2postman/internal/xmltree"
)

// ErrorCode categorizes loader errors for clearer handling and messaging.
type ErrorCode string

const (
	InputError          ErrorCode = "InputError"
	NetworkError        ErrorCode = "NetworkError"
	MalformedInputError ErrorCode = "MalformedInputError"
)

// ErrNoDocuments is returned by Batch.Err when nothing in a batch parsed.
var ErrNoDocuments = errors.New("no XML documents could be parsed")

// DocumentError is the failure of a single input document.
type DocumentError struct {
	Code    ErrorCode
	Source  string // file path, URL or upload name
	Message string
	Cause   error
}

func (e *DocumentError) Error() string {
	if e.Source == "" {
		return e.Message
	}
	return e.Source + ": " + e.Message
}

func (e *DocumentError) Unwrap() error { return e.Cause }

// MarshalJSON renders the {file, error} pair reported to API clients.
func (e *DocumentError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		File  string `json:"file"`
		Error string `json:"error"`
	}{File: e.Source, Error: e.Message})
}

// Settings configures loader behavior.
type Settings struct {
	// HTTPTimeout bounds each HTTP request.
	HTTPTimeout time.Duration
	// MaxRetries for transient HTTP failures (>=500, 429, or network errors).
	MaxRetries int
	// BackoffBase is the base delay for exponential backoff.
	BackoffBase time.Duration
	// MaxDepth bounds XML element nesting; zero means unbounded.
	MaxDepth int
	// Concurrency bounds how many documents of a batch are processed at once.
	Concurrency int
	Logger      *slog.Logger
}

// DefaultSettings returns recommended defaults.
func DefaultSettings() Settings {
	return Settings{
		HTTPTimeout: 10 * time.Second,
		MaxRetries:  3,
		BackoffBase: 200 * time.Millisecond,
		Concurrency: 4,
		Logger:      slog.New(slog.DiscardHandler),
	}
}

// Option mutates Settings.
type Option func(*Settings)

func WithHTTPTimeout(d time.Duration) Option { return func(s *Settings) { s.HTTPTimeout = d } }
func WithMaxRetries(n int) Option { return func(s *Settings) { s.MaxRetries = n } }
func WithBackoffBase(d time.Duration) Option { return func(s *Settings) { s.BackoffBase = d } }
func WithMaxDepth(n int) Option { return func(s *Settings) { s.MaxDepth = n } }
func WithConcurrency(n int) Option { return func(s *Settings) { s.Concurrency = n } }
func WithLogger(l *slog.Logger) Option { return func(s *Settings) { s.Logger = l } }

func newSettings(opts []Option) Settings {
	settings := DefaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}
	if settings.Logger == nil {
		settings.Logger = slog.New(slog.DiscardHandler)
	}
	if settings.Concurrency <= 0 {
		settings.Concurrency = 1
	}
	return settings
}

// Parse decodes one XML document and interprets it. Only input that is not
// XML at all fails; any well-formed document yields a result.
func Parse(raw []byte, opts ...Option) (*ParseResult, error) {
	settings := newSettings(opts)
	return parse("", raw, settings)
}

func parse(source string, raw []byte, settings Settings) (*ParseResult, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, &DocumentError{Code: InputError, Source: source, Message: "document is empty"}
	}
	doc, err := xmltree.Parse(bytes.NewReader(raw), xmltree.WithMaxDepth(settings.MaxDepth))
	if err != nil {
		return nil, &DocumentError{
			Code:    MalformedInputError,
			Source:  source,
			Message: fmt.Sprintf("failed to parse XML: %v", err),
			Cause:   err,
		}
	}
	return Interpret(doc), nil
}

// Load reads and interprets one XML document. input may be a filesystem path
// or an http/https URL.
func Load(ctx context.Context, input string, opts ...Option) (*ParseResult, error) {
	settings := newSettings(opts)
	raw, err := read(ctx, input, settings)
	if err != nil {
		return nil, err
	}
	return parse(input, raw, settings)
}

func read(ctx context.Context, input string, settings Settings) ([]byte, error) {
	if strings.TrimSpace(input) == "" {
		return nil, &DocumentError{Code: InputError, Message: "input is empty"}
	}
	if err := ctx.Err(); err != nil {
		return nil, &DocumentError{Code: InputError, Source: input, Message: err.Error(), Cause: err}
	}

	// Classify input as URL or file path.
	u, uerr := url.Parse(input)
	if uerr == nil && u.Scheme != "" && u.Host != "" {
		scheme := strings.ToLower(u.Scheme)
		if scheme != "http" && scheme != "https" {
			return nil, &DocumentError{Code: InputError, Source: input, Message: fmt.Sprintf("unsupported URL scheme %q (only http/https allowed)", scheme)}
		}
		raw, err := fetchWithRetry(ctx, input, settings)
		if err != nil {
			return nil, &DocumentError{Code: NetworkError, Source: input, Message: fmt.Sprintf("fetch %s: %v", input, err), Cause: err}
		}
		return raw, nil
	}

	raw, err := os.ReadFile(input)
	if err != nil {
		return nil, &DocumentError{Code: InputError, Source: input, Message: fmt.Sprintf("read file: %v", err), Cause: err}
	}
	return raw, nil
}

// Document is one in-memory input of a batch.
type Document struct {
	Source string
	Raw    []byte
}

// Batch is the outcome of processing several documents. Results and Sources
// are parallel and keep input order; a failed document never aborts the rest.
type Batch struct {
	Results  []*ParseResult
	Sources  []string
	Failures []*DocumentError
}

// Err reports a hard failure: a batch in which no document succeeded.
func (b *Batch) Err() error {
	if len(b.Results) > 0 {
		return nil
	}
	if len(b.Failures) == 0 {
		return ErrNoDocuments
	}
	errs := make([]error, len(b.Failures))
	for i, f := range b.Failures {
		errs[i] = f
	}
	return fmt.Errorf("%w: %w", ErrNoDocuments, errors.Join(errs...))
}

// TotalEndpoints counts endpoints across the successful results.
func (b *Batch) TotalEndpoints() int { return TotalEndpoints(b.Results) }

// LoadAll loads files, URLs and directories. Directories contribute their
// .xml and .wadl files in name order.
func LoadAll(ctx context.Context, inputs []string, opts ...Option) *Batch {
	settings := newSettings(opts)

	var sources []string
	var early []*DocumentError
	for _, in := range inputs {
		files, err := expandInput(in)
		if err != nil {
			early = append(early, err)
			continue
		}
		sources = append(sources, files...)
	}

	batch := runBatch(ctx, len(sources), settings, func(ctx context.Context, i int) (string, *ParseResult, error) {
		raw, err := read(ctx, sources[i], settings)
		if err != nil {
			return sources[i], nil, err
		}
		res, err := parse(sources[i], raw, settings)
		return sources[i], res, err
	})
	batch.Failures = append(early, batch.Failures...)
	return batch
}

// ParseAll interprets in-memory documents.
func ParseAll(ctx context.Context, docs []Document, opts ...Option) *Batch {
	settings := newSettings(opts)
	return runBatch(ctx, len(docs), settings, func(_ context.Context, i int) (string, *ParseResult, error) {
		res, err := parse(docs[i].Source, docs[i].Raw, settings)
		return docs[i].Source, res, err
	})
}

type outcome struct {
	source string
	result *ParseResult
	err    error
}

func runBatch(ctx context.Context, n int, settings Settings, work func(context.Context, int) (string, *ParseResult, error)) *Batch {
	outcomes := make([]outcome, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(settings.Concurrency)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			source, res, err := work(gctx, i)
			outcomes[i] = outcome{source: source, result: res, err: err}
			return nil
		})
	}
	_ = g.Wait()

	log := settings.Logger
	batch := &Batch{}
	for _, o := range outcomes {
		if o.err != nil {
			derr := asDocumentError(o.source, o.err)
			log.Warn("document failed", "source", derr.Source, "code", derr.Code, "error", derr.Message)
			batch.Failures = append(batch.Failures, derr)
			continue
		}
		log.Debug("document parsed", "source", o.source, "dialect", o.result.Dialect, "endpoints", len(o.result.Endpoints))
		batch.Results = append(batch.Results, o.result)
		batch.Sources = append(batch.Sources, o.source)
	}
	return batch
}

func asDocumentError(source string, err error) *DocumentError {
	var derr *DocumentError
	if errors.As(err, &derr) {
		if derr.Source == "" {
			derr.Source = source
		}
		return derr
	}
	return &DocumentError{Code: InputError, Source: source, Message: err.Error(), Cause: err}
}

// expandInput turns a directory into its XML files; anything else is kept.
func expandInput(input string) ([]string, *DocumentError) {
	info, err := os.Stat(input)
	if err != nil || !info.IsDir() {
		return []string{input}, nil
	}
	entries, err := os.ReadDir(input)
	if err != nil {
		return nil, &DocumentError{Code: InputError, Source: input, Message: fmt.Sprintf("read directory: %v", err), Cause: err}
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !IsXMLFile(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(input, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// IsXMLFile reports whether a file name has an .xml or .wadl extension.
func IsXMLFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xml", ".wadl":
		return true
	}
	return false
}

func fetchWithRetry(ctx context.Context, rawURL string, settings Settings) ([]byte, error) {
	client := &http.Client{Timeout: settings.HTTPTimeout}
	var lastErr error
	backoff := settings.BackoffBase
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	attempts := settings.MaxRetries
	if attempts <= 0 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		body, retry, err := fetchOnce(ctx, client, rawURL)
		if err == nil {
			return body, nil
		}
		if !retry {
			return nil, err
		}
		lastErr = err
		if i == attempts-1 {
			break
		}
		// Backoff before next attempt
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	if lastErr == nil {
		lastErr = errors.New("fetch failed")
	}
	return nil, lastErr
}

// fetchOnce performs a single GET. retry reports whether the failure is
// transient (network error, 5xx or 429).
func fetchOnce(ctx context.Context, client *http.Client, rawURL string) (body []byte, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 300 {
		body, err := io.ReadAll(resp.Body)
		return body, false, err
	}
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return nil, true, fmt.Errorf("transient http error %d", resp.StatusCode)
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return nil, false, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
}
