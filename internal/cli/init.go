package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

const defaultConfigFile = "xml2postman.yaml"

// InitConfig captures the options for the init command.
type InitConfig struct {
	OutputPath string
	Force      bool
	Verbose    bool
}

var initRunner = runInit

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a sample xml2postman configuration file",
		Long:  "Scaffold a commented xml2postman configuration file that documents the generate options.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := cmd.Flags().GetString("out")
			if err != nil {
				return err
			}
			force, err := cmd.Flags().GetBool("force")
			if err != nil {
				return err
			}
			verbose, err := cmd.Flags().GetBool("verbose")
			if err != nil {
				return err
			}
			return initRunner(cmd.Context(), &InitConfig{
				OutputPath: out,
				Force:      force,
				Verbose:    verbose,
			})
		},
	}

	cmd.Flags().String("out", defaultConfigFile, "Where to write the sample config file")
	cmd.Flags().Bool("force", false, "Overwrite the target file if it already exists")

	return cmd
}

func runInit(ctx context.Context, cfg *InitConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	out := strings.TrimSpace(cfg.OutputPath)
	if out == "" {
		out = defaultConfigFile
	}
	absPath, err := filepath.Abs(out)
	if err != nil {
		return fmt.Errorf("init: resolve output path: %w", err)
	}

	if st, err := os.Stat(absPath); err == nil {
		if st.IsDir() {
			return newUsageError(fmt.Sprintf("init: %q is a directory", absPath))
		}
		if !cfg.Force {
			return newUsageError(fmt.Sprintf("init: %q already exists (use --force to overwrite)", absPath))
		}
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return newUsageError(fmt.Sprintf("init: cannot create parent directory: %v", err))
	}

	content := strings.TrimSpace(sampleConfigYAML) + "\n"

	tmp := absPath + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return newUsageError(fmt.Sprintf("init: cannot write temp file: %v\nHint: choose a different --out or check directory permissions.", err))
	}
	if err := os.Rename(tmp, absPath); err != nil {
		_ = os.Remove(tmp)
		return newUsageError(fmt.Sprintf("init: cannot place file at %s: %v", absPath, err))
	}
	if cfg.Verbose {
		fmt.Fprintf(os.Stdout, "Wrote %d bytes to %s\n", len(content), absPath)
		return nil
	}
	fmt.Fprintf(os.Stdout, "Wrote sample config to %s\n", absPath)
	return nil
}

// sampleConfigYAML documents every key accepted by generate.
const sampleConfigYAML = `# xml2postman configuration (YAML)
# All fields are optional. Command-line flags override config values, and
# positional arguments replace the inputs list.

# XML or WADL files, directories (their .xml/.wadl files) or http(s) URLs.
# inputs:
#   - ./api.wadl
#   - ./specs

# Output directory.
# out: .

# Collection name. Also names the output files.
# name: Generated API Collection

# Base URL for documents that do not declare one.
# baseUrl: https://api.example.com

# Write a Postman environment next to the collection.
# environment: true

# Environment name. Defaults to "<name> Environment".
# environmentName: Staging

# Write one OpenAPI 3 document per input under openapi/.
# openapi: false

# OpenAPI output format (yaml|json).
# openapiFormat: yaml

# Documents parsed in parallel.
# concurrency: 4

# Maximum XML element nesting depth (0 disables the limit).
# maxDepth: 512

# Preview planned outputs without writing files.
# dryRun: false

# Overwrite existing output files.
# force: false

# Enable verbose logging.
# verbose: false
`
