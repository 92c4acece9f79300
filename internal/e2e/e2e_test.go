package e2e

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/xml2postman/internal/cli"
	"github.com/mark3labs/xml2postman/internal/server"
	"github.com/mark3labs/xml2postman/samples"
)

// catalog has no uuid-typed parameters, so only the collection and
// environment ids vary between runs.
const catalog = `<?xml version="1.0" encoding="UTF-8"?>
<api>
  <name>Catalog</name>
  <version>3.0.0</version>
  <baseUrl>https://catalog.example.com</baseUrl>
  <endpoints>
    <endpoint>
      <path>/items/{itemId}</path>
      <method>GET</method>
      <tags>items</tags>
      <parameters>
        <parameter name="itemId" type="integer" required="true"/>
        <parameter name="expand" type="boolean"/>
      </parameters>
      <responses>
        <response status="200"><description>Item</description></response>
        <response status="404"><description>Missing</description></response>
      </responses>
    </endpoint>
    <endpoint>
      <path>/items</path>
      <method>POST</method>
      <tags>items</tags>
      <requestBody contentType="application/json">
        <schema>
          <type>object</type>
          <properties>
            <title><type>string</type></title>
            <price><type>number</type><example>9.5</example></price>
          </properties>
        </schema>
      </requestBody>
    </endpoint>
  </endpoints>
</api>
`

func writeTempSpec(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "catalog.xml")
	require.NoError(t, os.WriteFile(p, []byte(catalog), 0o600))
	return p
}

func runCLI(t *testing.T, args ...string) {
	t.Helper()
	root := cli.NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		t.Fatalf("cli execute %v: %v", args, err)
	}
}

// digestDir hashes every file under dir after stripping run-specific ids.
func digestDir(t *testing.T, dir string) (files []string, sum string) {
	t.Helper()
	h := sha256.New()
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		files = append(files, rel)
		b, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		_, _ = h.Write([]byte(rel))
		_, _ = h.Write(stripIDs(t, rel, b))
		return nil
	})
	require.NoError(t, err)
	sort.Strings(files)
	return files, hex.EncodeToString(h.Sum(nil))
}

func stripIDs(t *testing.T, rel string, b []byte) []byte {
	t.Helper()
	if filepath.Ext(rel) != ".json" || filepath.Dir(rel) == "openapi" {
		return b
	}
	var doc map[string]any
	require.NoError(t, json.Unmarshal(b, &doc), rel)
	delete(doc, "id")
	if info, ok := doc["info"].(map[string]any); ok {
		delete(info, "_postman_id")
	}
	out, err := json.Marshal(doc)
	require.NoError(t, err)
	return out
}

func TestE2E_Generate_Deterministic(t *testing.T) {
	t.Parallel()
	spec := writeTempSpec(t)
	dir1 := t.TempDir()
	dir2 := t.TempDir()

	runCLI(t, "generate", "--input", spec, "--out", dir1, "--openapi", "--force")
	runCLI(t, "generate", "--input", spec, "--out", dir2, "--openapi", "--force")

	files1, sum1 := digestDir(t, dir1)
	files2, sum2 := digestDir(t, dir2)
	assert.Equal(t, files1, files2)
	assert.Equal(t, sum1, sum2, "generated outputs differ between runs")
	assert.Equal(t, []string{
		"generated-api-collection.postman_collection.json",
		"generated-api-collection.postman_environment.json",
		"openapi/01-catalog.openapi.yaml",
	}, files1)
}

func TestE2E_Generate_CollectionShape(t *testing.T) {
	t.Parallel()
	spec := writeTempSpec(t)
	out := t.TempDir()

	runCLI(t, "generate", spec, "--out", out, "--name", "Catalog API")

	raw, err := os.ReadFile(filepath.Join(out, "catalog-api.postman_collection.json"))
	require.NoError(t, err)

	var c struct {
		Info struct {
			Name   string `json:"name"`
			Schema string `json:"schema"`
		} `json:"info"`
		Item []struct {
			Name string `json:"name"`
			Item []struct {
				Name    string `json:"name"`
				Request struct {
					Method string `json:"method"`
					URL    struct {
						Raw   string   `json:"raw"`
						Host  []string `json:"host"`
						Path  []string `json:"path"`
						Query []struct {
							Key   string `json:"key"`
							Value string `json:"value"`
						} `json:"query"`
					} `json:"url"`
					Body *struct {
						Mode string `json:"mode"`
						Raw  string `json:"raw"`
					} `json:"body"`
				} `json:"request"`
			} `json:"item"`
		} `json:"item"`
	}
	require.NoError(t, json.Unmarshal(raw, &c))

	assert.Equal(t, "Catalog API", c.Info.Name)
	assert.Equal(t, "https://schema.getpostman.com/json/collection/v2.1.0/collection.json", c.Info.Schema)
	require.Len(t, c.Item, 1, "tagged endpoints are grouped into a folder")
	assert.Equal(t, "Catalog", c.Item[0].Name)
	require.Len(t, c.Item[0].Item, 2)

	get := c.Item[0].Item[0].Request
	assert.Equal(t, "GET", get.Method)
	assert.Equal(t, []string{"catalog", "example", "com"}, get.URL.Host)
	assert.Equal(t, []string{"items", "{itemId}"}, get.URL.Path)
	require.Len(t, get.URL.Query, 1)
	assert.Equal(t, "expand", get.URL.Query[0].Key)
	assert.Equal(t, "true", get.URL.Query[0].Value)

	post := c.Item[0].Item[1].Request
	require.NotNil(t, post.Body)
	assert.Equal(t, "raw", post.Body.Mode)
	assert.JSONEq(t, `{"title":"sample_value","price":9.5}`, post.Body.Raw)
}

func TestE2E_Samples_Generate(t *testing.T) {
	t.Parallel()
	in := t.TempDir()
	entries, err := fs.ReadDir(samples.FS, ".")
	require.NoError(t, err)
	for _, e := range entries {
		b, err := fs.ReadFile(samples.FS, e.Name())
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(in, e.Name()), b, 0o600))
	}
	out := t.TempDir()

	runCLI(t, "generate", in, "--out", out, "--openapi", "--openapi-format", "json")

	files, _ := digestDir(t, out)
	assert.Len(t, files, 2+len(entries))
}

// The HTTP API converts the same document the CLI does.
func TestE2E_ServerMatchesCLI(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(server.New(server.DefaultConfig()))
	t.Cleanup(srv.Close)

	body, err := json.Marshal(map[string]any{"xmlContent": catalog, "collectionName": "Catalog API"})
	require.NoError(t, err)
	resp, err := http.Post(srv.URL+"/api/generate/content", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got struct {
		Success bool `json:"success"`
		Summary struct {
			TotalEndpoints int `json:"totalEndpoints"`
		} `json:"summary"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.True(t, got.Success)
	assert.Equal(t, 2, got.Summary.TotalEndpoints)
}
