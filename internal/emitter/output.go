// Package emitter plans and writes generated artifacts.
package emitter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Files maps slash-separated paths, relative to the output directory, to
// their content.
type Files map[string][]byte

// Options controls where and how files are written.
type Options struct {
	OutDir string // required; target directory
	Force  bool   // overwrite existing files
	DryRun bool   // don't write, only plan
}

// PlannedFile describes a file the emitter intends to write.
type PlannedFile struct {
	RelPath string
	Size    int
	Mode    os.FileMode
}

// Result returns the resolved output directory and the planned files.
type Result struct {
	OutDir  string
	Planned []PlannedFile
}

// Emit plans files in deterministic order and, unless DryRun is set, writes
// them atomically.
func Emit(ctx context.Context, files Files, opts Options) (*Result, error) {
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("emitter: OutDir is required")
	}
	abs, err := filepath.Abs(opts.OutDir)
	if err != nil {
		return nil, fmt.Errorf("resolve out dir: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{OutDir: abs, Planned: Plan(files)}
	if opts.DryRun {
		return res, nil
	}
	if err := WriteFiles(abs, files, opts.Force); err != nil {
		return nil, err
	}
	return res, nil
}

// Plan lists files sorted by relative path.
func Plan(files Files) []PlannedFile {
	rels := make([]string, 0, len(files))
	for p := range files {
		rels = append(rels, p)
	}
	sort.Strings(rels)

	planned := make([]PlannedFile, 0, len(rels))
	for _, rel := range rels {
		planned = append(planned, PlannedFile{RelPath: filepath.ToSlash(rel), Size: len(files[rel]), Mode: 0o644})
	}
	return planned
}

// WriteFiles writes every file under outDir. Without force, nothing is
// written when any target already exists.
func WriteFiles(outDir string, files Files, force bool) error {
	if !force {
		for _, pf := range Plan(files) {
			p := filepath.Join(outDir, filepath.FromSlash(pf.RelPath))
			if _, err := os.Stat(p); err == nil {
				return fmt.Errorf("emitter: %s already exists (use --force to overwrite)", p)
			}
		}
	}
	for _, pf := range Plan(files) {
		p := filepath.Join(outDir, filepath.FromSlash(pf.RelPath))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return fmt.Errorf("mkdir: %w", err)
		}
		// atomic write via temp file + rename
		tmp := p + ".tmp-" + time.Now().Format("20060102150405")
		if err := os.WriteFile(tmp, files[pf.RelPath], pf.Mode); err != nil {
			return fmt.Errorf("write temp %s: %w", pf.RelPath, err)
		}
		if err := os.Rename(tmp, p); err != nil {
			_ = os.Remove(tmp)
			return fmt.Errorf("rename %s: %w", pf.RelPath, err)
		}
	}
	return nil
}

// Slug turns a display name into a lowercase file-name stem, or "" when
// nothing usable remains.
func Slug(name string) string {
	t := strings.ToLower(strings.TrimSpace(name))
	// split on spaces and punctuation, join with dash
	repl := strings.NewReplacer("/", " ", "_", " ", ".", " ", ",", " ", ":", " ", "-", " ")
	t = repl.Replace(t)

	b := strings.Builder{}
	for _, part := range strings.Fields(t) {
		clean := strings.Map(func(r rune) rune {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
				return r
			}
			return -1
		}, part)
		if clean == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('-')
		}
		b.WriteString(clean)
	}
	return b.String()
}
