package cli

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestInit_WritesSampleConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"init", "--out", path})

	out := captureStdout(func() {
		if err := root.Execute(); err != nil {
			t.Fatalf("init execute: %v", err)
		}
	})
	if !strings.Contains(out, "Wrote sample config to") {
		t.Fatalf("unexpected output: %s", out)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	s := string(data)
	if !strings.Contains(s, "xml2postman configuration") {
		t.Fatalf("unexpected config contents: %s", s)
	}
	if _, err := os.Stat(path + ".tmp"); err == nil {
		t.Fatalf("temp file left behind")
	}
}

// Every commented key in the scaffold must be accepted by generate.
func TestInit_SampleKeysAreKnown(t *testing.T) {
	t.Parallel()

	var lines []string
	for _, line := range strings.Split(sampleConfigYAML, "\n") {
		if strings.HasPrefix(line, "# ") && strings.Contains(line, ":") && !strings.HasSuffix(line, ".") {
			lines = append(lines, strings.TrimPrefix(line, "# "))
		}
	}
	var raw map[string]any
	if err := yaml.Unmarshal([]byte(strings.Join(lines, "\n")), &raw); err != nil {
		t.Fatalf("uncommented sample does not parse: %v", err)
	}
	if len(raw) < 10 {
		t.Fatalf("expected every option in the sample, got %v", raw)
	}
	cfg := defaultGenerateConfig()
	for key, value := range raw {
		if err := applyConfigField(&cfg, normalizeKey(key), value); err != nil {
			t.Errorf("sample key %q: %v", key, err)
		}
	}
}

func TestInit_ExistingWithoutForce(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatalf("prewrite: %v", err)
	}

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"init", "--out", path})

	err := root.Execute()
	if err == nil {
		t.Fatalf("expected error for existing file without --force")
	}
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %T: %v", err, err)
	}
}

func TestInit_DirectoryTarget(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"init", "--out", dir, "--force"})

	if err := root.Execute(); !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error for directory target, got %v", err)
	}
}
