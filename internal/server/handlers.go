package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mark3labs/xml2postman/internal/emitter/postman"
	"github.com/mark3labs/xml2postman/internal/spec"
)

const (
	uploadField  = "xmlFiles"
	maxFieldSize = 64 << 10
)

type errorBody struct {
	Error   string                `json:"error"`
	Message string                `json:"message,omitempty"`
	Details []*spec.DocumentError `json:"details,omitempty"`
}

func apiError(status int, title, message string) *echo.HTTPError {
	return echo.NewHTTPError(status, errorBody{Error: title, Message: message})
}

type summary struct {
	TotalEndpoints int                   `json:"totalEndpoints"`
	FilesProcessed int                   `json:"filesProcessed,omitempty"`
	Errors         []*spec.DocumentError `json:"errors,omitempty"`
}

type generateResponse struct {
	Success     bool                 `json:"success"`
	Collection  *postman.Collection  `json:"collection"`
	Environment *postman.Environment `json:"environment,omitempty"`
	Summary     summary              `json:"summary"`
}

// generateOptions are the caller-supplied knobs shared by both generate routes.
type generateOptions struct {
	CollectionName     string
	BaseURL            string
	IncludeEnvironment bool
}

func (s *Server) writeJSON(c echo.Context, status int, v any) error {
	data, err := postman.Marshal(v)
	if err != nil {
		return err
	}
	return c.JSONBlob(status, data)
}

func (s *Server) health(c echo.Context) error {
	return s.writeJSON(c, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": s.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		"service":   serviceName,
	})
}

type infoResponse struct {
	Name        string            `json:"name"`
	Version     string            `json:"version"`
	Description string            `json:"description"`
	Endpoints   map[string]string `json:"endpoints"`
}

func (s *Server) info(c echo.Context) error {
	return s.writeJSON(c, http.StatusOK, infoResponse{
		Name:        "Postman Collection Generator API",
		Version:     "1.0.0",
		Description: "Generate Postman collections from XML/WADL files",
		Endpoints: map[string]string{
			"GET /health":                "Service health check",
			"POST /api/generate":         "Generate collection from uploaded XML files",
			"POST /api/generate/content": "Generate collection from XML content",
			"GET /api/samples":           "Get sample XML files",
			"POST /api/download":         "Download a collection as a JSON file",
		},
	})
}

// upload is a fully buffered multipart request.
type upload struct {
	docs   []spec.Document
	fields map[string]string
}

func (s *Server) generateUpload(c echo.Context) error {
	up, err := s.readUpload(c.Request())
	if err != nil {
		return err
	}
	if len(up.docs) == 0 {
		return apiError(http.StatusBadRequest, "No XML files provided", "Please upload at least one XML or WADL file")
	}

	batch := spec.ParseAll(c.Request().Context(), up.docs, s.parseOptions()...)
	if len(batch.Results) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, errorBody{
			Error:   "Failed to parse any XML files",
			Details: batch.Failures,
		})
	}

	resp := s.generate(batch.Results, generateOptions{
		CollectionName:     up.fields["collectionName"],
		BaseURL:            up.fields["baseUrl"],
		IncludeEnvironment: up.fields["includeEnvironment"] == "true",
	})
	resp.Summary.FilesProcessed = len(batch.Results)
	resp.Summary.Errors = batch.Failures
	return s.writeJSON(c, http.StatusOK, resp)
}

// readUpload streams the multipart body into memory, enforcing the file
// count, extension and per-file size limits as parts arrive.
func (s *Server) readUpload(r *http.Request) (*upload, error) {
	mr, err := r.MultipartReader()
	if errors.Is(err, http.ErrNotMultipart) {
		return &upload{}, nil
	}
	if err != nil {
		return nil, apiError(http.StatusBadRequest, "File upload error", err.Error())
	}
	up := &upload{fields: map[string]string{}}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return up, nil
		}
		if err != nil {
			return nil, uploadError(err)
		}

		if part.FileName() == "" {
			value, err := io.ReadAll(io.LimitReader(part, maxFieldSize))
			if err != nil {
				return nil, uploadError(err)
			}
			up.fields[part.FormName()] = strings.TrimSpace(string(value))
			continue
		}

		if part.FormName() != uploadField {
			return nil, apiError(http.StatusBadRequest, "File upload error", fmt.Sprintf("unexpected file field %q", part.FormName()))
		}
		if len(up.docs) >= s.cfg.MaxFiles {
			return nil, apiError(http.StatusBadRequest, "File upload error", fmt.Sprintf("Too many files: at most %d are accepted", s.cfg.MaxFiles))
		}
		name := filepath.Base(part.FileName())
		if !spec.IsXMLFile(name) {
			return nil, apiError(http.StatusBadRequest, "File upload error", "Only XML and WADL files are allowed")
		}
		raw, err := io.ReadAll(io.LimitReader(part, s.cfg.MaxFileSize+1))
		if err != nil {
			return nil, uploadError(err)
		}
		if int64(len(raw)) > s.cfg.MaxFileSize {
			return nil, apiError(http.StatusBadRequest, "File too large", fmt.Sprintf("Maximum file size is %s", byteSize(s.cfg.MaxFileSize)))
		}
		up.docs = append(up.docs, spec.Document{Source: name, Raw: raw})
	}
}

func uploadError(err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	return apiError(http.StatusBadRequest, "File upload error", err.Error())
}

func byteSize(n int64) string {
	if n >= 1<<20 && n%(1<<20) == 0 {
		return fmt.Sprintf("%dMB", n>>20)
	}
	if n >= 1<<10 && n%(1<<10) == 0 {
		return fmt.Sprintf("%dKB", n>>10)
	}
	return fmt.Sprintf("%d bytes", n)
}

// flexBool accepts true/false or their string spellings.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	switch strings.ToLower(strings.Trim(string(data), `"`)) {
	case "true", "1", "yes":
		*b = true
	default:
		*b = false
	}
	return nil
}

type contentRequest struct {
	XMLContent         string   `json:"xmlContent"`
	CollectionName     string   `json:"collectionName"`
	BaseURL            string   `json:"baseUrl"`
	IncludeEnvironment flexBool `json:"includeEnvironment"`
}

func (s *Server) generateContent(c echo.Context) error {
	var req contentRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if strings.TrimSpace(req.XMLContent) == "" {
		return apiError(http.StatusBadRequest, "No XML content provided", "Please provide XML content in the request body")
	}

	res, err := spec.Parse([]byte(req.XMLContent), s.parseOptions()...)
	if err != nil {
		var derr *spec.DocumentError
		if !errors.As(err, &derr) {
			return err
		}
		derr.Source = "xmlContent"
		return echo.NewHTTPError(http.StatusBadRequest, errorBody{
			Error:   "Failed to parse XML content",
			Details: []*spec.DocumentError{derr},
		})
	}

	resp := s.generate([]*spec.ParseResult{res}, generateOptions{
		CollectionName:     req.CollectionName,
		BaseURL:            req.BaseURL,
		IncludeEnvironment: bool(req.IncludeEnvironment),
	})
	return s.writeJSON(c, http.StatusOK, resp)
}

func (s *Server) generate(results []*spec.ParseResult, opts generateOptions) *generateResponse {
	popts := postman.Options{Name: opts.CollectionName, BaseURL: opts.BaseURL}
	resp := &generateResponse{
		Success: true,
		Summary: summary{TotalEndpoints: spec.TotalEndpoints(results)},
	}
	if opts.IncludeEnvironment {
		resp.Collection, resp.Environment = postman.GenerateWithEnvironment(results, popts, "")
	} else {
		resp.Collection = postman.Generate(results, popts)
	}
	s.log.Debug("collection generated",
		"name", resp.Collection.Info.Name,
		"documents", len(results),
		"endpoints", resp.Summary.TotalEndpoints)
	return resp
}

type sample struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Content     string `json:"content"`
}

type samplesResponse struct {
	Success bool     `json:"success"`
	Samples []sample `json:"samples"`
	Message string   `json:"message,omitempty"`
}

func (s *Server) listSamples(c echo.Context) error {
	out := samplesResponse{Success: true, Samples: []sample{}}
	entries, err := fs.ReadDir(s.samples, ".")
	if err != nil {
		s.log.Warn("samples unavailable", "error", err)
		out.Message = "No sample files available"
		return s.writeJSON(c, http.StatusOK, out)
	}
	for _, e := range entries {
		if e.IsDir() || !spec.IsXMLFile(e.Name()) {
			continue
		}
		content, err := fs.ReadFile(s.samples, e.Name())
		if err != nil {
			s.log.Warn("sample unreadable", "name", e.Name(), "error", err)
			continue
		}
		out.Samples = append(out.Samples, sample{
			Name:        e.Name(),
			Description: fmt.Sprintf("Sample %s file", strings.ToUpper(path.Ext(e.Name()))),
			Content:     string(content),
		})
	}
	if len(out.Samples) == 0 {
		out.Message = "No sample files available"
	}
	return s.writeJSON(c, http.StatusOK, out)
}

type downloadRequest struct {
	Collection json.RawMessage `json:"collection"`
	Filename   string          `json:"filename"`
}

func (s *Server) download(c echo.Context) error {
	var req downloadRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	raw := bytes.TrimSpace(req.Collection)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return apiError(http.StatusBadRequest, "No collection provided", "")
	}

	var body bytes.Buffer
	if err := json.Indent(&body, raw, "", "  "); err != nil {
		return apiError(http.StatusBadRequest, "Invalid collection", err.Error())
	}

	name := attachmentName(req.Filename)
	if name == "" {
		name = fmt.Sprintf("postman-collection-%d.json", s.now().UnixMilli())
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, body.Bytes())
}

// attachmentName keeps the base name and drops characters that would break
// the Content-Disposition header.
func attachmentName(raw string) string {
	name := strings.ReplaceAll(strings.TrimSpace(raw), "\\", "/")
	name = strings.Map(func(r rune) rune {
		if r == '"' || r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, name)
	name = path.Base(name)
	if name == "." || name == "/" {
		return ""
	}
	return name
}

func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	body := errorBody{Error: "Internal server error", Message: err.Error()}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		switch msg := he.Message.(type) {
		case errorBody:
			body = msg
		default:
			body = errorBody{Error: http.StatusText(status), Message: fmt.Sprint(msg)}
		}
		switch status {
		case http.StatusNotFound:
			if _, ok := he.Message.(errorBody); !ok {
				body = errorBody{
					Error:   "Not found",
					Message: fmt.Sprintf("Endpoint %s %s not found", c.Request().Method, c.Request().URL.Path),
				}
			}
		case http.StatusRequestEntityTooLarge:
			body = errorBody{Error: "File too large", Message: "Request body exceeds " + s.cfg.BodyLimit}
		}
	}

	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "path", c.Request().URL.Path, "error", err)
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(status)
	} else {
		writeErr = s.writeJSON(c, status, body)
	}
	if writeErr != nil {
		s.log.Error("write error response", "error", writeErr)
	}
}
