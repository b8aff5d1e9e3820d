// Package config provides configuration loading and management for the
// catalogue synchronizer.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bluecloud-project/eoscsync/bluecloud"
	"github.com/bluecloud-project/eoscsync/eosc"
)

// Config represents the complete synchronizer configuration. Credentials are
// never part of it; they come from the environment only.
type Config struct {
	Source     SourceConfig     `yaml:"source"`
	Target     TargetConfig     `yaml:"target"`
	Sync       SyncConfig       `yaml:"sync"`
	Vocabulary VocabularyConfig `yaml:"vocabulary"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Report     ReportConfig     `yaml:"report"`
}

// SourceConfig configures the Blue-Cloud catalogue side.
type SourceConfig struct {
	// TokenURL is the D4Science identity provider token endpoint.
	TokenURL string `yaml:"token_url"`
	// CatalogueURL is the gCat catalogue API base.
	CatalogueURL string `yaml:"catalogue_url"`
	// VREs are the virtual research environments to synchronize. Each must
	// be in the access allow-list.
	VREs []string `yaml:"vres"`
	// Timeout is the maximum time to wait for catalogue responses.
	Timeout time.Duration `yaml:"timeout"`
}

// TargetConfig configures the EOSC portal side.
type TargetConfig struct {
	// PortalURL is the providers API base.
	PortalURL string `yaml:"portal_url"`
	// TokenURL is the AAI token endpoint.
	TokenURL string `yaml:"token_url"`
	// Catalogue is the catalogue id attached to created resources.
	Catalogue string `yaml:"catalogue"`
	// Timeout is the maximum time to wait for portal responses.
	Timeout time.Duration `yaml:"timeout"`
}

// SyncConfig configures the synchronization run itself.
type SyncConfig struct {
	// MinTRL is the lowest technology readiness level that gets pushed.
	MinTRL int `yaml:"min_trl"`
	// IDStorePath is the id mapping file.
	IDStorePath string `yaml:"id_store_path"`
	// SnapshotDir receives the per-service metadata snapshots.
	SnapshotDir string `yaml:"snapshot_dir"`
	// Enrich derives missing descriptions from the service webpage.
	Enrich bool `yaml:"enrich"`
	// RemoteValidation asks the portal to validate each record before push.
	RemoteValidation bool `yaml:"remote_validation"`
}

// VocabularyConfig configures controlled-vocabulary overrides.
type VocabularyConfig struct {
	// Dir holds override YAML files layered over the embedded vocabularies
	// (empty = embedded only).
	Dir string `yaml:"dir"`
}

// MetricsConfig configures the daemon's metrics listener.
type MetricsConfig struct {
	// Listen is the address of the /metrics endpoint (empty = disabled).
	Listen string `yaml:"listen"`
}

// ReportConfig configures run-report publishing.
type ReportConfig struct {
	// NATSURL is the NATS server to publish reports to (empty = disabled).
	NATSURL string `yaml:"nats_url"`
	// Subject is the publish subject.
	Subject string `yaml:"subject"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			TokenURL:     bluecloud.DefaultTokenURL,
			CatalogueURL: bluecloud.DefaultCatalogueURL,
			VREs:         bluecloud.AllowedVREs,
			Timeout:      60 * time.Second,
		},
		Target: TargetConfig{
			PortalURL: eosc.DefaultPortalURL,
			TokenURL:  eosc.DefaultTokenURL,
			Catalogue: "eosc",
			Timeout:   60 * time.Second,
		},
		Sync: SyncConfig{
			MinTRL:           7,
			IDStorePath:      "eosc_ids.csv",
			SnapshotDir:      "stored_metadata",
			Enrich:           false,
			RemoteValidation: true,
		},
		Metrics: MetricsConfig{
			Listen: ":9465",
		},
		Report: ReportConfig{
			Subject: "eoscsync.reports",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Source.CatalogueURL == "" {
		return fmt.Errorf("source.catalogue_url is required")
	}
	if c.Source.TokenURL == "" {
		return fmt.Errorf("source.token_url is required")
	}
	if len(c.Source.VREs) == 0 {
		return fmt.Errorf("source.vres must name at least one VRE")
	}
	if c.Target.PortalURL == "" {
		return fmt.Errorf("target.portal_url is required")
	}
	if c.Sync.MinTRL < 1 || c.Sync.MinTRL > 9 {
		return fmt.Errorf("sync.min_trl must be between 1 and 9")
	}
	if c.Sync.IDStorePath == "" {
		return fmt.Errorf("sync.id_store_path is required")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Source
	if other.Source.TokenURL != "" {
		c.Source.TokenURL = other.Source.TokenURL
	}
	if other.Source.CatalogueURL != "" {
		c.Source.CatalogueURL = other.Source.CatalogueURL
	}
	if len(other.Source.VREs) > 0 {
		c.Source.VREs = other.Source.VREs
	}
	if other.Source.Timeout != 0 {
		c.Source.Timeout = other.Source.Timeout
	}

	// Target
	if other.Target.PortalURL != "" {
		c.Target.PortalURL = other.Target.PortalURL
	}
	if other.Target.TokenURL != "" {
		c.Target.TokenURL = other.Target.TokenURL
	}
	if other.Target.Catalogue != "" {
		c.Target.Catalogue = other.Target.Catalogue
	}
	if other.Target.Timeout != 0 {
		c.Target.Timeout = other.Target.Timeout
	}

	// Sync
	if other.Sync.MinTRL != 0 {
		c.Sync.MinTRL = other.Sync.MinTRL
	}
	if other.Sync.IDStorePath != "" {
		c.Sync.IDStorePath = other.Sync.IDStorePath
	}
	if other.Sync.SnapshotDir != "" {
		c.Sync.SnapshotDir = other.Sync.SnapshotDir
	}
	// Merged layers come from LoadFromFile and carry the defaults for keys
	// the file omits, so only a non-default value signals an explicit
	// setting. Enrich defaults off, RemoteValidation defaults on.
	if other.Sync.Enrich {
		c.Sync.Enrich = true
	}
	if !other.Sync.RemoteValidation {
		c.Sync.RemoteValidation = false
	}

	// Vocabulary
	if other.Vocabulary.Dir != "" {
		c.Vocabulary.Dir = other.Vocabulary.Dir
	}

	// Metrics
	if other.Metrics.Listen != "" {
		c.Metrics.Listen = other.Metrics.Listen
	}

	// Report
	if other.Report.NATSURL != "" {
		c.Report.NATSURL = other.Report.NATSURL
	}
	if other.Report.Subject != "" {
		c.Report.Subject = other.Report.Subject
	}
}
