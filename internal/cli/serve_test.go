package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/mark3labs/xml2postman/internal/server"
)

func captureServe(t *testing.T) *server.Config {
	t.Helper()
	captured := &server.Config{}
	serveRunner = func(ctx context.Context, cfg server.Config) error {
		*captured = cfg
		return nil
	}
	t.Cleanup(func() { serveRunner = runServe })
	return captured
}

func unsetServerEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"HOST", "PORT", "SAMPLES_DIR", "LOG_LEVEL", "MAX_FILES"} {
		t.Setenv(k, "")
		if err := os.Unsetenv(k); err != nil {
			t.Fatalf("unset %s: %v", k, err)
		}
	}
}

func TestServe_EnvThenFlags(t *testing.T) {
	unsetServerEnv(t)
	t.Setenv("XML2POSTMAN_PORT", "8080")
	t.Setenv("XML2POSTMAN_MAX_FILES", "3")
	t.Setenv("XML2POSTMAN_HOST", "0.0.0.0")
	captured := captureServe(t)

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"serve", "--port", "9000", "--samples-dir", "./samples", "-v"})

	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if captured.Port != 9000 {
		t.Errorf("port: want 9000 got %d", captured.Port)
	}
	if captured.Host != "0.0.0.0" {
		t.Errorf("host: want 0.0.0.0 got %q", captured.Host)
	}
	if captured.MaxFiles != 3 {
		t.Errorf("max files: want 3 got %d", captured.MaxFiles)
	}
	if captured.SamplesDir != "./samples" {
		t.Errorf("samples dir: got %q", captured.SamplesDir)
	}
	if captured.LogLevel != "debug" {
		t.Errorf("log level: want debug got %q", captured.LogLevel)
	}
}

func TestServe_InvalidPort(t *testing.T) {
	unsetServerEnv(t)
	captureServe(t)

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"serve", "--port", "70000"})

	if err := root.Execute(); !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestServe_RejectsArgs(t *testing.T) {
	t.Parallel()

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"serve", "extra"})

	if err := root.Execute(); err == nil {
		t.Fatalf("expected an error for positional arguments")
	}
}
