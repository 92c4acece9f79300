package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mark3labs/xml2postman/internal/server"
)

var serveRunner = runServe

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the collection generator over HTTP",
		Long: "Serve the collection generator over HTTP. Settings come from XML2POSTMAN_* " +
			"environment variables (PORT and HOST also work unprefixed); flags override them.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := server.LoadConfig()
			if err != nil {
				return newUsageError(fmt.Sprintf("serve: %v", err))
			}
			if err := applyServeFlagOverrides(cmd.Flags(), &cfg); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return newUsageError(fmt.Sprintf("serve: %v", err))
			}
			verbose, err := cmd.Flags().GetBool("verbose")
			if err != nil {
				return err
			}
			if verbose {
				cfg.LogLevel = "debug"
			}
			return serveRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("host", "", "Interface to listen on")
	flags.Int("port", 0, "Port to listen on")
	flags.String("samples-dir", "", "Serve sample documents from this directory instead of the built-in ones")

	return cmd
}

func applyServeFlagOverrides(flags *pflag.FlagSet, cfg *server.Config) error {
	if flags.Changed("host") {
		value, err := flags.GetString("host")
		if err != nil {
			return err
		}
		cfg.Host = value
	}
	if flags.Changed("port") {
		value, err := flags.GetInt("port")
		if err != nil {
			return err
		}
		cfg.Port = value
	}
	if flags.Changed("samples-dir") {
		value, err := flags.GetString("samples-dir")
		if err != nil {
			return err
		}
		cfg.SamplesDir = value
	}
	return nil
}

func runServe(ctx context.Context, cfg server.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := newLogger(os.Stderr, false, cfg.ParsedLogLevel())
	return server.New(cfg, server.WithLogger(log)).Run(ctx)
}
