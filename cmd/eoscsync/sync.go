package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/bluecloud-project/eoscsync/config"
	"github.com/bluecloud-project/eoscsync/mapping"
	"github.com/bluecloud-project/eoscsync/vocabulary"
)

func syncCmd(configPath, logLevel *string) *cobra.Command {
	var (
		vres   []string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one synchronization pass",
		Long: `Synchronizes the services of the configured VREs once and exits.
With --vre the run is restricted to the named VREs; the flag may be
repeated. --dry-run performs everything except the portal writes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogger(*logLevel)

			cfg, err := loadConfig(*configPath, logger)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if len(vres) > 0 {
				cfg.Source.VREs = vres
			}

			creds, err := config.CredentialsFromEnv()
			if err != nil {
				return err
			}

			vocab, err := loadVocabularies(cfg)
			if err != nil {
				return fmt.Errorf("load vocabularies: %w", err)
			}

			runner, cleanup, err := buildRunner(cfg, creds, logger, prometheus.NewRegistry())
			if err != nil {
				return err
			}
			defer cleanup()
			runner.Mapper = mapping.NewMapper(vocab)
			runner.DryRun = dryRun

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var failedRuns int
			for _, vre := range cfg.Source.VREs {
				rep, err := runner.SyncVRE(ctx, vre)
				if err != nil {
					logger.Error("synchronization run failed", "vre", vre, "error", err)
					failedRuns++
					continue
				}
				if rep.Failed > 0 {
					failedRuns++
				}
			}

			if failedRuns > 0 {
				return fmt.Errorf("%d of %d runs had failures", failedRuns, len(cfg.Source.VREs))
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&vres, "vre", nil, "VRE to synchronize (repeatable, default: all configured)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Map and validate but do not write to the portal")

	return cmd
}

// loadVocabularies loads the embedded vocabularies, layered with the
// override directory when one is configured.
func loadVocabularies(cfg *config.Config) (*vocabulary.Set, error) {
	if cfg.Vocabulary.Dir != "" {
		return vocabulary.LoadDir(cfg.Vocabulary.Dir)
	}
	return vocabulary.Load()
}
