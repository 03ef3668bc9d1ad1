// Package model defines shared configuration and snapshot structures used by
// the CanDash bridge.
package model

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the root structure loaded from configs/config.yml.
type Config struct {
	Bus                BusConfig `yaml:"bus"`
	TickIntervalMs     int       `yaml:"tick_interval_ms"`     // driving tick period
	TransmitIntervalMs int       `yaml:"transmit_interval_ms"` // periodic frame broadcast period
	MonitorAddr        string    `yaml:"monitor_addr"`         // websocket state feed address ("" = disabled)
	MonitorIntervalMs  int       `yaml:"monitor_interval_ms"`  // snapshot push period
	Debug              bool      `yaml:"debug"`
}

// BusConfig selects the transport. The socketcan interface is tried first,
// then the SLCAN serial device; if neither opens the bridge degrades to a
// disabled bus.
type BusConfig struct {
	Interface   string `yaml:"interface"`    // socketcan interface name, e.g. vcan0
	SlcanDevice string `yaml:"slcan_device"` // serial device path, e.g. /dev/ttyUSB0
	SlcanBaud   int    `yaml:"slcan_baud"`
}

// DefaultConfig returns the configuration used when no config file is found.
func DefaultConfig() *Config {
	return &Config{
		Bus: BusConfig{
			Interface: "vcan0",
			SlcanBaud: 115200,
		},
		TickIntervalMs:     100,
		TransmitIntervalMs: 100,
		MonitorAddr:        ":8090",
		MonitorIntervalMs:  500,
	}
}

// LoadConfig reads and parses the YAML configuration at path. Zero-valued
// interval fields are replaced with defaults.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, err
	}
	if cfg.TickIntervalMs <= 0 {
		cfg.TickIntervalMs = 100
	}
	if cfg.TransmitIntervalMs <= 0 {
		cfg.TransmitIntervalMs = 100
	}
	if cfg.MonitorIntervalMs <= 0 {
		cfg.MonitorIntervalMs = 500
	}
	if cfg.Bus.SlcanBaud <= 0 {
		cfg.Bus.SlcanBaud = 115200
	}
	return cfg, nil
}
