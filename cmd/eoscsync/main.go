// Package main provides the eoscsync binary entry point.
// eoscsync synchronizes service entries of the Blue-Cloud catalogue into
// the EOSC providers portal.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/bluecloud-project/eoscsync/bluecloud"
	"github.com/bluecloud-project/eoscsync/config"
	"github.com/bluecloud-project/eoscsync/enrich"
	"github.com/bluecloud-project/eoscsync/eosc"
	"github.com/bluecloud-project/eoscsync/idstore"
	"github.com/bluecloud-project/eoscsync/report"
	"github.com/bluecloud-project/eoscsync/syncer"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "eoscsync"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Blue-Cloud to EOSC catalogue synchronizer",
		Long: `eoscsync reads service entries from the Blue-Cloud catalogue on the
D4Science infrastructure, maps their flat key/value metadata onto the
strictly typed EOSC resource profile and pushes the result to the EOSC
providers portal.

Credentials come from the environment:
  BLUE_CLIENT_ID, BLUE_SECRET          D4Science service account
  EOSC_CLIENT_ID, EOSC_REFRESH_TOKEN   EOSC AAI offline token`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(syncCmd(&configPath, &logLevel))
	cmd.AddCommand(daemonCmd(&configPath, &logLevel))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

// setupLogger configures the process-wide text logger on stderr.
func setupLogger(logLevel string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// loadConfig loads an explicit config file when one was given, the layered
// defaults otherwise.
func loadConfig(configPath string, logger *slog.Logger) (*config.Config, error) {
	if configPath != "" {
		cfg, err := config.LoadFromFile(configPath)
		if err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		return cfg, nil
	}
	return config.NewLoader(logger).Load()
}

// buildRunner wires all clients into a Runner. The returned cleanup closes
// the report publisher connection when one was configured.
func buildRunner(cfg *config.Config, creds *config.Credentials, logger *slog.Logger, reg prometheus.Registerer) (*syncer.Runner, func(), error) {
	tokens := bluecloud.NewTokenProvider(creds.BlueClientID, creds.BlueSecret,
		bluecloud.WithTokenURL(cfg.Source.TokenURL),
		bluecloud.WithTokenHTTPClient(&http.Client{Timeout: cfg.Source.Timeout}),
		bluecloud.WithTokenLogger(logger))

	sourceFactory := func(ctx context.Context, vre string) (syncer.SourceClient, error) {
		token, err := tokens.Token(ctx, vre)
		if err != nil {
			return nil, err
		}
		return bluecloud.NewClient(token,
			bluecloud.WithBaseURL(cfg.Source.CatalogueURL),
			bluecloud.WithHTTPClient(&http.Client{Timeout: cfg.Source.Timeout}),
			bluecloud.WithLogger(logger)), nil
	}

	target := eosc.NewClient(creds.EOSCClientID, creds.EOSCRefreshToken,
		eosc.WithPortalURL(cfg.Target.PortalURL),
		eosc.WithTokenURL(cfg.Target.TokenURL),
		eosc.WithCatalogue(cfg.Target.Catalogue),
		eosc.WithHTTPClient(&http.Client{Timeout: cfg.Target.Timeout}),
		eosc.WithLogger(logger))

	ids, err := idstore.New(cfg.Sync.IDStorePath)
	if err != nil {
		return nil, nil, err
	}

	runner := &syncer.Runner{
		Source:           sourceFactory,
		Target:           target,
		IDs:              ids,
		MinTRL:           cfg.Sync.MinTRL,
		RemoteValidation: cfg.Sync.RemoteValidation,
		SnapshotDir:      cfg.Sync.SnapshotDir,
		Logger:           logger,
		Metrics:          syncer.NewMetrics(reg),
	}

	if cfg.Sync.Enrich {
		runner.Enricher = enrich.New(enrich.WithLogger(logger))
	}

	cleanup := func() {}
	if cfg.Report.NATSURL != "" {
		publisher, err := report.NewNATSPublisher(cfg.Report.NATSURL,
			report.WithSubject(cfg.Report.Subject),
			report.WithLogger(logger))
		if err != nil {
			return nil, nil, err
		}
		runner.Publisher = publisher
		cleanup = publisher.Close
	}

	return runner, cleanup, nil
}
