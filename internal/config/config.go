// SPDX-License-Identifier: GPL-3.0

// Package config manages dcfsim daemon/runtime configuration using
// koanf/v2: environment variable overrides layered over a YAML file, on
// top of built-in defaults (spec's Ambient Stack, Configuration section).
// Scenario input (the per-run CSV topology) is a separate concern handled
// by internal/scenario.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds the complete dcfsim runtime configuration.
type Config struct {
	Metrics MetricsConfig `koanf:"metrics"`
	Log     LogConfig     `koanf:"log"`
	MAC     MACConfig     `koanf:"mac"`
	Output  OutputConfig  `koanf:"output"`
}

// MetricsConfig holds the Prometheus metrics endpoint configuration.
type MetricsConfig struct {
	Addr string `koanf:"addr"`
	Path string `koanf:"path"`
}

// LogConfig holds the logging configuration.
type LogConfig struct {
	Level string `koanf:"level"`
}

// MACConfig holds the default PHY/MAC parameters a scenario CSV may leave
// unspecified, overridable without touching the CSV itself (spec §3.2, §4.2.1).
type MACConfig struct {
	SlotTime      time.Duration `koanf:"slot_time"`
	SIFS          time.Duration `koanf:"sifs"`
	DIFS          time.Duration `koanf:"difs"`
	CWMin         int           `koanf:"cw_min"`
	StageMax      int           `koanf:"stage_max"`
	PDDefaultDBm  float64       `koanf:"pd_default_dbm"`
	TXPowerDBm    float64       `koanf:"tx_power_dbm"`
	MaxRetries    int           `koanf:"max_retries"`
}

// OutputConfig holds the run's log/output-file destination.
type OutputConfig struct {
	Directory string `koanf:"directory"`
}

// envPrefix is the environment variable prefix for dcfsim configuration.
// Variables are named DCFSIM_<section>_<key>, e.g., DCFSIM_METRICS_ADDR.
const envPrefix = "DCFSIM_"

// DefaultConfig returns a Config populated with the spec's default PHY/MAC
// timing constants (802.11ax DCF defaults) and conventional daemon
// defaults.
func DefaultConfig() *Config {
	return &Config{
		Metrics: MetricsConfig{
			Addr: ":9200",
			Path: "/metrics",
		},
		Log: LogConfig{
			Level: "info",
		},
		MAC: MACConfig{
			SlotTime:     9 * time.Microsecond,
			SIFS:         16 * time.Microsecond,
			DIFS:         34 * time.Microsecond,
			CWMin:        15,
			StageMax:     6,
			PDDefaultDBm: -82,
			TXPowerDBm:   20,
			MaxRetries:   7,
		},
		Output: OutputConfig{
			Directory: "./output",
		},
	}
}

// Load reads configuration from a YAML file at path, overlays environment
// variable overrides (DCFSIM_ prefix), and merges on top of
// DefaultConfig(). A path of "" skips the file layer, leaving
// defaults+env.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := DefaultConfig()
	if err := loadDefaults(k, defaults); err != nil {
		return nil, fmt.Errorf("load config defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config from %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKeyMapper), nil); err != nil {
		return nil, fmt.Errorf("load env overrides: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config from %s: %w", path, err)
	}
	return cfg, nil
}

// envKeyMapper transforms DCFSIM_MAC_SLOT_TIME -> mac.slot_time.
func envKeyMapper(s string) string {
	s = strings.TrimPrefix(s, envPrefix)
	s = strings.ToLower(s)
	// Only the first underscore separates section from key; keys such as
	// slot_time keep their own underscores.
	return strings.Replace(s, "_", ".", 1)
}

func loadDefaults(k *koanf.Koanf, d *Config) error {
	defaultMap := map[string]any{
		"metrics.addr":        d.Metrics.Addr,
		"metrics.path":        d.Metrics.Path,
		"log.level":           d.Log.Level,
		"mac.slot_time":       d.MAC.SlotTime.String(),
		"mac.sifs":            d.MAC.SIFS.String(),
		"mac.difs":            d.MAC.DIFS.String(),
		"mac.cw_min":          d.MAC.CWMin,
		"mac.stage_max":       d.MAC.StageMax,
		"mac.pd_default_dbm":  d.MAC.PDDefaultDBm,
		"mac.tx_power_dbm":    d.MAC.TXPowerDBm,
		"mac.max_retries":     d.MAC.MaxRetries,
		"output.directory":    d.Output.Directory,
	}
	for key, val := range defaultMap {
		if err := k.Set(key, val); err != nil {
			return fmt.Errorf("set default %s: %w", key, err)
		}
	}
	return nil
}

// Validation errors.
var (
	ErrEmptyMetricsAddr = errors.New("metrics.addr must not be empty")
	ErrInvalidCWMin     = errors.New("mac.cw_min must be >= 1")
	ErrInvalidStageMax  = errors.New("mac.stage_max must be >= 0")
	ErrInvalidSlotTime  = errors.New("mac.slot_time must be > 0")
	ErrEmptyOutputDir   = errors.New("output.directory must not be empty")
)

// Validate checks the configuration for logical errors, returning the
// first one encountered.
func Validate(cfg *Config) error {
	if cfg.Metrics.Addr == "" {
		return ErrEmptyMetricsAddr
	}
	if cfg.MAC.CWMin < 1 {
		return ErrInvalidCWMin
	}
	if cfg.MAC.StageMax < 0 {
		return ErrInvalidStageMax
	}
	if cfg.MAC.SlotTime <= 0 {
		return ErrInvalidSlotTime
	}
	if cfg.Output.Directory == "" {
		return ErrEmptyOutputDir
	}
	return nil
}
