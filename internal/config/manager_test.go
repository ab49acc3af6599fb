package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestManagerCreatesAndUpdates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	mgr, err := NewManager(WithConfigPath(path))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not created: %v", err)
	}

	cfg := mgr.Get()
	cfg.OutputDir = filepath.Join(dir, "reports")
	cfg.DefaultPeriod = "1y"

	if err := mgr.Update(cfg); err != nil {
		t.Fatalf("Update: %v", err)
	}

	reopened, err := NewManager(WithConfigPath(path))
	if err != nil {
		t.Fatalf("NewManager reopen: %v", err)
	}
	updated := reopened.Get()
	if updated.OutputDir != cfg.OutputDir {
		t.Fatalf("expected output dir %s, got %s", cfg.OutputDir, updated.OutputDir)
	}
	if updated.DefaultPeriod != "1y" {
		t.Fatalf("expected period 1y, got %s", updated.DefaultPeriod)
	}
}

func TestManagerRejectsInvalidUpdate(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(WithConfigPath(filepath.Join(dir, "config.json")))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	cfg := mgr.Get()
	cfg.DefaultPeriod = "fortnight"
	if err := mgr.Update(cfg); err == nil {
		t.Fatal("expected validation error for bad period")
	}

	if mgr.Get().DefaultPeriod == "fortnight" {
		t.Fatal("invalid config must not be applied")
	}
}

func TestManagerFallsBackOnCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed corrupt config: %v", err)
	}

	mgr, err := NewManager(WithConfigPath(path))
	if err != nil {
		t.Fatalf("NewManager should recover from corrupt file: %v", err)
	}
	if mgr.Get().DefaultPeriod != "2y" {
		t.Fatalf("expected default period, got %s", mgr.Get().DefaultPeriod)
	}
}

func TestManagerSeedsInitialConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	seed := DefaultConfig()
	seed.DefaultPeriod = "6mo"
	seed.OutputDir = filepath.Join(dir, "reports")

	mgr, err := NewManager(WithConfigPath(path), WithInitialConfig(seed))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if mgr.Get().DefaultPeriod != "6mo" {
		t.Fatalf("expected seeded period, got %s", mgr.Get().DefaultPeriod)
	}

	// An existing file wins over the seed.
	reopened, err := NewManager(WithConfigPath(path), WithInitialConfig(DefaultConfig()))
	if err != nil {
		t.Fatalf("NewManager reopen: %v", err)
	}
	if reopened.Get().DefaultPeriod != "6mo" {
		t.Fatalf("existing file must win over the seed, got %s", reopened.Get().DefaultPeriod)
	}
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.OutputDir = filepath.Join(dir, "out")
	cfg.CacheDir = filepath.Join(dir, "cache", "nested")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, d := range []string{cfg.OutputDir, cfg.CacheDir} {
		info, err := os.Stat(d)
		if err != nil {
			t.Fatalf("expected directory %s: %v", d, err)
		}
		if !info.IsDir() {
			t.Fatalf("%s is not a directory", d)
		}
	}
}

func TestDefaultConfigEnvOverrides(t *testing.T) {
	t.Setenv("STOCKLENS_OUTPUT_DIR", "/tmp/out")
	t.Setenv("STOCKLENS_PERIOD", "5y")
	t.Setenv("STOCKLENS_MAX_RETRIES", "7")
	t.Setenv("STOCKLENS_PLOTS", "false")

	cfg := DefaultConfig()
	if cfg.OutputDir != "/tmp/out" {
		t.Errorf("output dir override not applied: %s", cfg.OutputDir)
	}
	if cfg.DefaultPeriod != "5y" {
		t.Errorf("period override not applied: %s", cfg.DefaultPeriod)
	}
	if cfg.MaxRetries != 7 {
		t.Errorf("retries override not applied: %d", cfg.MaxRetries)
	}
	if cfg.GeneratePlots {
		t.Error("plots override not applied")
	}
}

func TestValidateCategories(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}

	cfg.Categories = append(cfg.Categories, "horoscope")
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown category")
	}
}

func TestValidateExportFormats(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ExportFormats = []string{"excel", "csv"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("excel+csv must validate: %v", err)
	}

	cfg.ExportFormats = []string{"pdf"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown export format")
	}

	cfg.ExportFormats = nil
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty export formats")
	}
}
