package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Listen != ":8080" {
		t.Errorf("listen = %q, want :8080", cfg.Server.Listen)
	}
	if cfg.Data.IDColumn != "LONIUID" || cfg.Data.GroupColumn != "Group" {
		t.Errorf("join columns = %q/%q", cfg.Data.IDColumn, cfg.Data.GroupColumn)
	}
	if len(cfg.Study.Groups) != 2 || cfg.Study.Groups[0] != "CN" || cfg.Study.Groups[1] != "AD" {
		t.Errorf("groups = %v, want [CN AD]", cfg.Study.Groups)
	}
	if len(cfg.Visual.SequentialColors) == 0 || len(cfg.Visual.DivergingColors) == 0 {
		t.Error("default color ramps are empty")
	}
	// The diverging ramp needs an odd length so "no difference" has a
	// midpoint color.
	if len(cfg.Visual.DivergingColors)%2 == 0 {
		t.Errorf("diverging ramp has %d colors, want odd", len(cfg.Visual.DivergingColors))
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.Listen != ":8080" {
		t.Errorf("missing file should yield defaults, got listen %q", cfg.Server.Listen)
	}
}

func TestSaveLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "neuroconnect.yaml")

	cfg := DefaultConfig()
	cfg.Server.Listen = ":9999"
	cfg.Study.Metric = "MD"
	cfg.Study.Groups = []string{"CN", "MCI", "AD"}
	cfg.Demo.Seed = 42

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if loaded.Server.Listen != ":9999" {
		t.Errorf("listen = %q, want :9999", loaded.Server.Listen)
	}
	if loaded.Study.Metric != "MD" {
		t.Errorf("metric = %q, want MD", loaded.Study.Metric)
	}
	if len(loaded.Study.Groups) != 3 {
		t.Errorf("groups = %v", loaded.Study.Groups)
	}
	if loaded.Demo.Seed != 42 {
		t.Errorf("seed = %d, want 42", loaded.Demo.Seed)
	}
}

func TestLoadConfigPartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	partial := "study:\n  metric: RD\n"
	if err := os.WriteFile(path, []byte(partial), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Study.Metric != "RD" {
		t.Errorf("metric = %q, want RD", cfg.Study.Metric)
	}
	// Unspecified sections keep their defaults.
	if cfg.Server.Listen != ":8080" || cfg.Data.Dir != "data" {
		t.Errorf("defaults lost: listen %q dir %q", cfg.Server.Listen, cfg.Data.Dir)
	}
}
