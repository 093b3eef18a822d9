package workspacefinder

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	tmp := t.TempDir()
	root := filepath.Join(tmp, "ws")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	// Partial config (no paths/defaults)
	content := []byte("mvlaunch:\n  masking:\n    enabled: false\n")
	if err := os.WriteFile(filepath.Join(root, "mvlaunch.yaml"), content, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}

	if cfg.Masking.Enabled != false {
		t.Fatalf("expected masking=false, got=%v", cfg.Masking.Enabled)
	}
	if cfg.Defaults.Cluster != "local" {
		t.Fatalf("expected default cluster=local, got=%s", cfg.Defaults.Cluster)
	}
	if cfg.Paths.ExperimentsDir != "experiments" {
		t.Fatalf("expected experiments dir, got=%s", cfg.Paths.ExperimentsDir)
	}
	if cfg.Paths.ClustersDir != "clusters" {
		t.Fatalf("expected clusters dir, got=%s", cfg.Paths.ClustersDir)
	}
	if cfg.Paths.RunsDir != "runs" || cfg.Paths.LogsDir != "logs" {
		t.Fatalf("expected runs/logs dirs, got=%+v", cfg.Paths)
	}
}

func TestLoadConfig_OverridesDefaults(t *testing.T) {
	tmp := t.TempDir()
	content := []byte(`
mvlaunch:
  defaults:
    cluster: a100
  paths:
    experiments_dir: exps
    logs_dir: joblogs
`)
	if err := os.WriteFile(filepath.Join(tmp, "mvlaunch.yaml"), content, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadConfig(tmp)
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}

	if cfg.Defaults.Cluster != "a100" {
		t.Fatalf("cluster = %s", cfg.Defaults.Cluster)
	}
	if cfg.Paths.ExperimentsDir != "exps" {
		t.Fatalf("experiments dir = %s", cfg.Paths.ExperimentsDir)
	}
	if cfg.Paths.LogsDir != "joblogs" {
		t.Fatalf("logs dir = %s", cfg.Paths.LogsDir)
	}
	// Untouched keys keep defaults.
	if cfg.Paths.ClustersDir != "clusters" {
		t.Fatalf("clusters dir = %s", cfg.Paths.ClustersDir)
	}
}

func TestLoadConfig_MissingFileReturnsDefaultsAndError(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err == nil {
		t.Fatalf("expected error")
	}
	// Defaults still usable by callers that tolerate a missing config.
	if cfg.Paths.ExperimentsDir != "experiments" {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}
