package model

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	yml := `bus:
  interface: can0
  slcan_device: /dev/ttyUSB0
tick_interval_ms: 50
monitor_addr: ":9000"
debug: true
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Bus.Interface != "can0" || cfg.Bus.SlcanDevice != "/dev/ttyUSB0" {
		t.Fatalf("bus config = %+v", cfg.Bus)
	}
	if cfg.TickIntervalMs != 50 || !cfg.Debug || cfg.MonitorAddr != ":9000" {
		t.Fatalf("config = %+v", cfg)
	}
	// Unset intervals pick up defaults.
	if cfg.TransmitIntervalMs != 100 || cfg.MonitorIntervalMs != 500 || cfg.Bus.SlcanBaud != 115200 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadConfigBadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(path, []byte(":\n\t- broken"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected error for invalid yaml")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Bus.Interface != "vcan0" {
		t.Fatalf("default interface = %q", cfg.Bus.Interface)
	}
	if cfg.TickIntervalMs != 100 || cfg.TransmitIntervalMs != 100 {
		t.Fatalf("default intervals = %+v", cfg)
	}
}
