package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	data := `
pipeline:
  noise_filter: ["Send"]
adb:
  bin: /opt/platform-tools/adb
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Pipeline.Mode != "screenshot" {
		t.Fatalf("expected default mode screenshot, got %s", cfg.Pipeline.Mode)
	}
	if cfg.Pipeline.FPS != 2.0 {
		t.Fatalf("expected default fps 2.0, got %v", cfg.Pipeline.FPS)
	}
	if cfg.Pipeline.QueueCapacity != 100 {
		t.Fatalf("expected default queue capacity 100, got %d", cfg.Pipeline.QueueCapacity)
	}
	if !cfg.DedupEnabled() {
		t.Fatalf("dedup should default to enabled")
	}
	if cfg.ADB.Bin != "/opt/platform-tools/adb" {
		t.Fatalf("explicit adb bin overridden: %s", cfg.ADB.Bin)
	}
	if cfg.Frames.KeepLast != 200 {
		t.Fatalf("expected default keep_last 200, got %d", cfg.Frames.KeepLast)
	}
	if cfg.Metrics.Addr != ":9180" {
		t.Fatalf("expected default metrics addr :9180, got %s", cfg.Metrics.Addr)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("expected default log level info, got %s", cfg.Logging.Level)
	}
	if len(cfg.Pipeline.NoiseFilter) != 1 || cfg.Pipeline.NoiseFilter[0] != "Send" {
		t.Fatalf("noise filter lost: %v", cfg.Pipeline.NoiseFilter)
	}
}

func TestLoadExplicitDedupFalse(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	data := `
pipeline:
  dedup: false
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DedupEnabled() {
		t.Fatalf("explicit dedup:false must survive defaulting")
	}
}

func TestLoadRejectsBadMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	data := `
pipeline:
  mode: video
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatalf("expected invalid mode to fail validation")
	}
}

func TestLoadRejectsNegativeFPS(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(path, []byte("pipeline:\n  fps: -1\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected negative fps to fail validation")
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}
