package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Target.Catalogue != "eosc" {
		t.Errorf("expected default catalogue eosc, got %s", cfg.Target.Catalogue)
	}
	if cfg.Sync.MinTRL != 7 {
		t.Errorf("expected default min TRL 7, got %d", cfg.Sync.MinTRL)
	}
	if len(cfg.Source.VREs) == 0 {
		t.Error("expected default VRE list to be non-empty")
	}
	if !cfg.Sync.RemoteValidation {
		t.Error("expected remote validation on by default")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing catalogue URL",
			modify:  func(c *Config) { c.Source.CatalogueURL = "" },
			wantErr: true,
		},
		{
			name:    "missing token URL",
			modify:  func(c *Config) { c.Source.TokenURL = "" },
			wantErr: true,
		},
		{
			name:    "empty VRE list",
			modify:  func(c *Config) { c.Source.VREs = nil },
			wantErr: true,
		},
		{
			name:    "min TRL too low",
			modify:  func(c *Config) { c.Sync.MinTRL = 0 },
			wantErr: true,
		},
		{
			name:    "min TRL too high",
			modify:  func(c *Config) { c.Sync.MinTRL = 10 },
			wantErr: true,
		},
		{
			name:    "missing id store path",
			modify:  func(c *Config) { c.Sync.IDStorePath = "" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
source:
  catalogue_url: "http://test:8080/catalogue"
  vres:
    - Blue-CloudLab
  timeout: 2m
target:
  portal_url: "http://test:8081"
  catalogue: "staging"
sync:
  min_trl: 5
  enrich: true
report:
  nats_url: "nats://test:4222"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if cfg.Source.CatalogueURL != "http://test:8080/catalogue" {
		t.Errorf("expected overridden catalogue URL, got %s", cfg.Source.CatalogueURL)
	}
	if len(cfg.Source.VREs) != 1 || cfg.Source.VREs[0] != "Blue-CloudLab" {
		t.Errorf("expected VREs [Blue-CloudLab], got %v", cfg.Source.VREs)
	}
	if cfg.Source.Timeout != 2*time.Minute {
		t.Errorf("expected timeout 2m, got %v", cfg.Source.Timeout)
	}
	if cfg.Target.Catalogue != "staging" {
		t.Errorf("expected catalogue staging, got %s", cfg.Target.Catalogue)
	}
	if cfg.Sync.MinTRL != 5 {
		t.Errorf("expected min TRL 5, got %d", cfg.Sync.MinTRL)
	}
	if !cfg.Sync.Enrich {
		t.Error("expected enrich to be enabled")
	}
	if cfg.Report.NATSURL != "nats://test:4222" {
		t.Errorf("expected NATS URL nats://test:4222, got %s", cfg.Report.NATSURL)
	}
	// Unset fields keep their defaults.
	if cfg.Sync.IDStorePath != "eosc_ids.csv" {
		t.Errorf("expected default id store path, got %s", cfg.Sync.IDStorePath)
	}
}

func TestConfigMerge(t *testing.T) {
	base := DefaultConfig()
	override := &Config{
		Source: SourceConfig{
			VREs: []string{"PlanktonGenomics"},
		},
		Sync: SyncConfig{
			MinTRL: 4,
		},
	}

	base.Merge(override)

	if len(base.Source.VREs) != 1 || base.Source.VREs[0] != "PlanktonGenomics" {
		t.Errorf("expected VREs [PlanktonGenomics], got %v", base.Source.VREs)
	}
	if base.Sync.MinTRL != 4 {
		t.Errorf("expected min TRL 4, got %d", base.Sync.MinTRL)
	}
	// CatalogueURL should remain from base since override didn't set it
	if base.Source.CatalogueURL == "" {
		t.Error("expected catalogue URL to remain default")
	}
}

func TestConfigMergeRemoteValidation(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := []byte("sync:\n  remote_validation: false\n")
	if err := os.WriteFile(configPath, content, 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	layer, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	base := DefaultConfig()
	base.Merge(layer)
	if base.Sync.RemoteValidation {
		t.Error("expected remote validation disabled after merging the layer")
	}

	// A layer that leaves the key unset must not flip the default.
	base = DefaultConfig()
	base.Merge(DefaultConfig())
	if !base.Sync.RemoteValidation {
		t.Error("expected remote validation to remain enabled by default")
	}
}

func TestConfigSaveToFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "subdir", "config.yaml")

	cfg := DefaultConfig()
	cfg.Target.Catalogue = "saved-catalogue"

	if err := cfg.SaveToFile(configPath); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("config file was not created")
	}

	loaded, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("failed to load saved config: %v", err)
	}
	if loaded.Target.Catalogue != "saved-catalogue" {
		t.Errorf("expected catalogue saved-catalogue, got %s", loaded.Target.Catalogue)
	}
}

func TestCredentialsFromEnv(t *testing.T) {
	t.Setenv(EnvBlueClientID, "blue-client")
	t.Setenv(EnvBlueSecret, "blue-secret")
	t.Setenv(EnvEOSCClientID, "eosc-client")
	t.Setenv(EnvEOSCRefreshToken, "eosc-refresh")

	creds, err := CredentialsFromEnv()
	if err != nil {
		t.Fatalf("CredentialsFromEnv() error = %v", err)
	}
	if creds.BlueClientID != "blue-client" || creds.EOSCRefreshToken != "eosc-refresh" {
		t.Errorf("unexpected credentials: %+v", creds)
	}
}

func TestCredentialsFromEnvMissing(t *testing.T) {
	t.Setenv(EnvBlueClientID, "blue-client")
	t.Setenv(EnvBlueSecret, "")
	t.Setenv(EnvEOSCClientID, "")
	t.Setenv(EnvEOSCRefreshToken, "")

	if _, err := CredentialsFromEnv(); err == nil {
		t.Error("expected an error naming the missing variables")
	}
}
