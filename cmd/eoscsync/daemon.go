package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/bluecloud-project/eoscsync/config"
	"github.com/bluecloud-project/eoscsync/mapping"
	"github.com/bluecloud-project/eoscsync/syncer"
	"github.com/bluecloud-project/eoscsync/vocabulary"
)

func daemonCmd(configPath, logLevel *string) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Synchronize periodically",
		Long: `Runs synchronization passes on a fixed interval until terminated.
The vocabulary override directory is watched and reloaded on change, and
Prometheus metrics are served on the configured listen address.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogger(*logLevel)

			cfg, err := loadConfig(*configPath, logger)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			creds, err := config.CredentialsFromEnv()
			if err != nil {
				return err
			}

			vocab, err := loadVocabularies(cfg)
			if err != nil {
				return fmt.Errorf("load vocabularies: %w", err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// The watcher swaps the vocabulary set between sweeps; sweeps
			// read it once at their start so a reload never changes the
			// semantics of a run in flight.
			var current atomic.Pointer[vocabulary.Set]
			current.Store(vocab)

			if cfg.Vocabulary.Dir != "" {
				watcher, err := vocabulary.NewWatcher(cfg.Vocabulary.Dir, logger, func(set *vocabulary.Set) {
					current.Store(set)
					logger.Info("vocabularies reloaded", "dir", cfg.Vocabulary.Dir)
				})
				if err != nil {
					return fmt.Errorf("watch vocabulary dir: %w", err)
				}
				if err := watcher.Start(ctx); err != nil {
					return fmt.Errorf("start vocabulary watcher: %w", err)
				}
				defer watcher.Stop()
			}

			registry := prometheus.NewRegistry()
			if cfg.Metrics.Listen != "" {
				startMetricsServer(ctx, cfg.Metrics.Listen, registry, logger)
			}

			runner, cleanup, err := buildRunner(cfg, creds, logger, registry)
			if err != nil {
				return err
			}
			defer cleanup()

			logger.Info("daemon started", "interval", interval, "vres", cfg.Source.VREs)

			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			for {
				sweep(ctx, runner, cfg, &current, logger)

				select {
				case <-ctx.Done():
					logger.Info("daemon stopping")
					return nil
				case <-ticker.C:
				}
			}
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 24*time.Hour, "Time between synchronization passes")

	return cmd
}

// sweep runs one pass over all configured VREs with the current vocabulary
// set.
func sweep(ctx context.Context, runner *syncer.Runner, cfg *config.Config, current *atomic.Pointer[vocabulary.Set], logger *slog.Logger) {
	runner.Mapper = mapping.NewMapper(current.Load())

	for _, vre := range cfg.Source.VREs {
		if ctx.Err() != nil {
			return
		}
		if _, err := runner.SyncVRE(ctx, vre); err != nil {
			logger.Error("synchronization run failed", "vre", vre, "error", err)
		}
	}
}

// startMetricsServer serves /metrics in the background and shuts down with
// the context.
func startMetricsServer(ctx context.Context, listen string, registry *prometheus.Registry, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	server := &http.Server{Addr: listen, Handler: mux}

	go func() {
		logger.Info("metrics listener started", "addr", listen)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics listener failed", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()
}
