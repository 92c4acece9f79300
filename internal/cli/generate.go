package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/xml2postman/internal/emitter"
	"github.com/mark3labs/xml2postman/internal/emitter/openapi"
	"github.com/mark3labs/xml2postman/internal/emitter/postman"
	"github.com/mark3labs/xml2postman/internal/spec"
)

// GenerateConfig captures all inputs that influence the generate command after
// merging defaults, config file values, and CLI overrides.
type GenerateConfig struct {
	Inputs          []string
	Out             string
	Name            string
	BaseURL         string
	Environment     bool
	EnvironmentName string
	OpenAPI         bool
	OpenAPIFormat   string
	Concurrency     int
	MaxDepth        int
	ConfigPath      string
	DryRun          bool
	Force           bool
	Verbose         bool
}

func defaultGenerateConfig() GenerateConfig {
	return GenerateConfig{
		Out:           ".",
		Environment:   true,
		OpenAPIFormat: string(openapi.FormatYAML),
		Concurrency:   4,
		MaxDepth:      512,
	}
}

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [inputs...]",
		Short: "Generate a Postman collection from XML or WADL documents",
		Long: "Generate a Postman collection, and optionally an environment and OpenAPI documents, " +
			"from XML or WADL files, directories or http(s) URLs. " +
			"Options can be provided via flags, config files, or defaults.",
		Example: strings.TrimSpace(`  xml2postman generate api.wadl orders.xml --out ./postman
  xml2postman generate --input ./specs --name "Shop API" --openapi --openapi-format json
  xml2postman --config xml2postman.yaml generate --force --dry-run`),
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd, args)
			if err != nil {
				return err
			}
			return generateRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringArray("input", nil, "XML/WADL file, directory or URL (repeatable)")
	flags.String("out", "", "Output directory (defaults to the current directory)")
	flags.String("name", "", "Collection name (defaults to \""+postman.DefaultCollectionName+"\")")
	flags.String("base-url", "", "Base URL for documents that do not declare one")
	flags.Bool("environment", true, "Also write a Postman environment")
	flags.String("environment-name", "", "Environment name (defaults to \"<name> Environment\")")
	flags.Bool("openapi", false, "Also write one OpenAPI 3 document per input")
	flags.String("openapi-format", "", "OpenAPI output format (yaml|json); defaults to yaml")
	flags.Int("concurrency", 0, "Documents parsed in parallel")
	flags.Int("max-depth", 0, "Maximum XML element nesting depth (0 disables the limit)")
	flags.Bool("dry-run", false, "Preview planned outputs without writing files")
	flags.Bool("force", false, "Overwrite existing files when set")

	return cmd
}

func resolveGenerateConfig(cmd *cobra.Command, args []string) (*GenerateConfig, error) {
	cfg := defaultGenerateConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyGenerateConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyGenerateFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}
	// Positional inputs replace configured ones, like --input does.
	if len(args) > 0 {
		inputs := args
		if cmd.Flags().Changed("input") {
			inputs = append(cfg.Inputs, args...)
		}
		cfg.Inputs = inputs
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyGenerateFlagOverrides(flags *pflag.FlagSet, cfg *GenerateConfig) error {
	if flags.Changed("input") {
		value, err := flags.GetStringArray("input")
		if err != nil {
			return err
		}
		cfg.Inputs = value
	}
	for _, s := range []struct {
		name string
		dst  *string
	}{
		{"out", &cfg.Out},
		{"name", &cfg.Name},
		{"base-url", &cfg.BaseURL},
		{"environment-name", &cfg.EnvironmentName},
		{"openapi-format", &cfg.OpenAPIFormat},
	} {
		if !flags.Changed(s.name) {
			continue
		}
		value, err := flags.GetString(s.name)
		if err != nil {
			return err
		}
		*s.dst = strings.TrimSpace(value)
	}
	for _, i := range []struct {
		name string
		dst  *int
	}{
		{"concurrency", &cfg.Concurrency},
		{"max-depth", &cfg.MaxDepth},
	} {
		if !flags.Changed(i.name) {
			continue
		}
		value, err := flags.GetInt(i.name)
		if err != nil {
			return err
		}
		*i.dst = value
	}
	for _, b := range []struct {
		name string
		dst  *bool
	}{
		{"environment", &cfg.Environment},
		{"openapi", &cfg.OpenAPI},
		{"dry-run", &cfg.DryRun},
		{"force", &cfg.Force},
		{"verbose", &cfg.Verbose},
	} {
		if !flags.Changed(b.name) {
			continue
		}
		value, err := flags.GetBool(b.name)
		if err != nil {
			return err
		}
		*b.dst = value
	}

	return nil
}

func (c *GenerateConfig) normalize() {
	c.Inputs = sanitizeList(c.Inputs)
	c.Out = strings.TrimSpace(c.Out)
	if c.Out == "" {
		c.Out = "."
	}
	c.Name = strings.TrimSpace(c.Name)
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	c.EnvironmentName = strings.TrimSpace(c.EnvironmentName)
	c.OpenAPIFormat = strings.ToLower(strings.TrimSpace(c.OpenAPIFormat))
}

func (c *GenerateConfig) validate() error {
	if len(c.Inputs) == 0 {
		return newUsageError("generate: at least one input is required (pass files, --input, or set inputs in the config file)")
	}
	format, err := openapi.ParseFormat(c.OpenAPIFormat)
	if err != nil {
		return newUsageError(fmt.Sprintf("generate: %v", err))
	}
	c.OpenAPIFormat = string(format)
	if c.Concurrency < 0 {
		return newUsageError(fmt.Sprintf("generate: --concurrency must not be negative, got %d", c.Concurrency))
	}
	if c.MaxDepth < 0 {
		return newUsageError(fmt.Sprintf("generate: --max-depth must not be negative, got %d", c.MaxDepth))
	}
	if c.EnvironmentName != "" && !c.Environment {
		return newUsageError("generate: --environment-name requires --environment")
	}
	return nil
}

var (
	warnColor    = color.New(color.FgYellow)
	successColor = color.New(color.FgGreen, color.Bold)
)

func runGenerate(ctx context.Context, cfg *GenerateConfig) error {
	// Document failures are reported below, so loader warnings only show with --verbose.
	log := newLogger(os.Stderr, cfg.Verbose, slog.LevelError)

	// 1) Load every input; failures are collected per document
	batch := spec.LoadAll(ctx, cfg.Inputs,
		spec.WithConcurrency(cfg.Concurrency),
		spec.WithMaxDepth(cfg.MaxDepth),
		spec.WithLogger(log),
	)
	for _, f := range batch.Failures {
		warnColor.Fprintf(os.Stderr, "warning: skipped %s\n", f.Error())
	}
	if err := batch.Err(); err != nil {
		return fmt.Errorf("generate: %w", err)
	}
	if batch.TotalEndpoints() == 0 {
		warnColor.Fprintln(os.Stderr, "warning: no endpoints found; the collection will be empty")
	}

	// 2) Synthesize the artifacts
	files, err := buildFiles(ctx, cfg, batch, log)
	if err != nil {
		return err
	}

	// 3) Plan and write
	res, err := emitter.Emit(ctx, files, emitter.Options{OutDir: cfg.Out, Force: cfg.Force, DryRun: cfg.DryRun})
	if err != nil {
		return wrapOutputError(err, cfg.Out)
	}
	if cfg.DryRun {
		paths := make([]string, 0, len(res.Planned))
		for _, p := range res.Planned {
			paths = append(paths, p.RelPath)
		}
		printPlan(res.OutDir, len(res.Planned), paths)
		return nil
	}

	successColor.Fprintf(os.Stdout, "Generated %d endpoints from %d of %d documents\n",
		batch.TotalEndpoints(), len(batch.Results), len(batch.Results)+len(batch.Failures))
	for _, p := range res.Planned {
		fmt.Fprintf(os.Stdout, "- %s\n", filepath.Join(res.OutDir, filepath.FromSlash(p.RelPath)))
	}
	return nil
}

// buildFiles renders the collection, the environment and, when requested,
// one OpenAPI document per successful input.
func buildFiles(ctx context.Context, cfg *GenerateConfig, batch *spec.Batch, log *slog.Logger) (emitter.Files, error) {
	opts := postman.Options{Name: cfg.Name, BaseURL: cfg.BaseURL}
	name := cfg.Name
	if name == "" {
		name = postman.DefaultCollectionName
	}
	stem := emitter.Slug(name)
	if stem == "" {
		stem = "collection"
	}

	files := emitter.Files{}
	var collection *postman.Collection
	if cfg.Environment {
		var env *postman.Environment
		collection, env = postman.GenerateWithEnvironment(batch.Results, opts, cfg.EnvironmentName)
		data, err := postman.Marshal(env)
		if err != nil {
			return nil, fmt.Errorf("render environment: %w", err)
		}
		files[stem+".postman_environment.json"] = data
	} else {
		collection = postman.Generate(batch.Results, opts)
	}
	data, err := postman.Marshal(collection)
	if err != nil {
		return nil, fmt.Errorf("render collection: %w", err)
	}
	files[stem+".postman_collection.json"] = data

	if !cfg.OpenAPI {
		return files, nil
	}
	format := openapi.Format(cfg.OpenAPIFormat)
	for i, res := range batch.Results {
		source := batch.Sources[i]
		doc, err := openapi.Build(ctx, res)
		if err != nil {
			warnColor.Fprintf(os.Stderr, "warning: no OpenAPI document for %s: %v\n", source, err)
			continue
		}
		data, err := openapi.Render(doc, format)
		if err != nil {
			return nil, fmt.Errorf("render openapi for %s: %w", source, err)
		}
		rel := path.Join("openapi", fmt.Sprintf("%02d-%s.openapi.%s", i+1, documentStem(res, source), format.Ext()))
		log.Debug("openapi document built", "source", source, "file", rel, "paths", len(doc.Paths))
		files[rel] = data
	}
	return files, nil
}

// documentStem names a document after its title, then its source file.
func documentStem(res *spec.ParseResult, source string) string {
	if s := emitter.Slug(res.Info.Title); s != "" {
		return s
	}
	base := path.Base(filepath.ToSlash(source))
	if s := emitter.Slug(strings.TrimSuffix(base, path.Ext(base))); s != "" {
		return s
	}
	return "document"
}

func printPlan(outDir string, count int, relPaths []string) {
	fmt.Fprintf(os.Stdout, "Planned writes to %s (%d files):\n", outDir, count)
	for _, p := range relPaths {
		fmt.Fprintf(os.Stdout, "- %s\n", p)
	}
}

func wrapOutputError(err error, outDir string) error {
	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "already exists") || strings.Contains(lower, "permission") ||
		strings.Contains(lower, "read-only") || strings.Contains(lower, "mkdir") || strings.Contains(lower, "rename") {
		return newUsageError(fmt.Sprintf("output error for %s: %s\nHint: choose a different --out or use --force when appropriate.", outDir, msg))
	}
	return err
}

// sanitizeList trims entries and drops blanks and duplicates, keeping order.
func sanitizeList(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func applyGenerateConfigFromFile(cfg *GenerateConfig, configPath string) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return newUsageError(fmt.Sprintf("read config file %q: %v", configPath, err))
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return newUsageError(fmt.Sprintf("parse config file %q: %v", configPath, err))
	}

	for key, value := range raw {
		if err := applyConfigField(cfg, normalizeKey(key), value); err != nil {
			if errors.Is(err, errUnknownField) {
				return newUsageError(fmt.Sprintf("config file %q: unknown field %q", configPath, key))
			}
			return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
		}
	}

	return nil
}

var errUnknownField = errors.New("unknown field")

func applyConfigField(cfg *GenerateConfig, key string, value any) error {
	var err error
	switch key {
	case "input", "inputs":
		cfg.Inputs, err = valueAsStringSlice(value)
	case "out":
		cfg.Out, err = valueAsString(value)
	case "name", "collectionname":
		cfg.Name, err = valueAsString(value)
	case "baseurl":
		cfg.BaseURL, err = valueAsString(value)
	case "environment", "includeenvironment":
		cfg.Environment, err = valueAsBool(value)
	case "environmentname":
		cfg.EnvironmentName, err = valueAsString(value)
	case "openapi":
		cfg.OpenAPI, err = valueAsBool(value)
	case "openapiformat":
		cfg.OpenAPIFormat, err = valueAsString(value)
	case "concurrency":
		cfg.Concurrency, err = valueAsInt(value)
	case "maxdepth":
		cfg.MaxDepth, err = valueAsInt(value)
	case "dryrun":
		cfg.DryRun, err = valueAsBool(value)
	case "force":
		cfg.Force, err = valueAsBool(value)
	case "verbose":
		cfg.Verbose, err = valueAsBool(value)
	default:
		return errUnknownField
	}
	return err
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func valueAsStringSlice(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(val) == "" {
			return nil, nil
		}
		return splitAndTrim(val), nil
	case []any:
		items := make([]string, 0, len(val))
		for idx, elem := range val {
			str, err := valueAsString(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", idx, err)
			}
			if str != "" {
				items = append(items, str)
			}
		}
		return items, nil
	default:
		return nil, fmt.Errorf("expected string or list, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		trimmed := strings.ToLower(strings.TrimSpace(val))
		switch trimmed {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n":
			return false, nil
		case "":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}

func valueAsInt(v any) (int, error) {
	switch val := v.(type) {
	case int:
		return val, nil
	case float64:
		if val != float64(int(val)) {
			return 0, fmt.Errorf("expected integer, got %v", val)
		}
		return int(val), nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
}

func splitAndTrim(csv string) []string {
	parts := strings.Split(csv, ",")
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}
