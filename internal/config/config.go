// Package config loads and holds the masking tool configuration.
// Settings are layered: built-in defaults, then masker-config.yaml (if
// present), then environment variables.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = "masker-config.yaml"

// Config holds the full tool configuration.
type Config struct {
	LogLevel  string `yaml:"logLevel"`
	OutputDir string `yaml:"outputDir"`

	// StorePath, when set, points at the bbolt database that keeps
	// placeholders stable for recurring values across runs.
	StorePath string `yaml:"storePath"`

	PreserveCase    bool `yaml:"preserveCase"`
	MaskNames       bool `yaml:"maskNames"`
	MaskRanks       bool `yaml:"maskRanks"`
	MaskIdentifiers bool `yaml:"maskIdentifiers"`
	MaskDates       bool `yaml:"maskDates"`
}

// Load returns the defaults overridden by DefaultFile and env vars.
func Load() *Config {
	cfg := defaults()
	if err := loadFile(cfg, DefaultFile); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
	}
	loadEnv(cfg)
	return cfg
}

func defaults() *Config {
	return &Config{
		LogLevel:        "info",
		OutputDir:       ".",
		PreserveCase:    true,
		MaskNames:       true,
		MaskRanks:       true,
		MaskIdentifiers: true,
		MaskDates:       true,
	}
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err // file is optional; caller decides what to report
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func loadEnv(cfg *Config) {
	if v := os.Getenv("MASKER_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("MASKER_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv("MASKER_STORE_PATH"); v != "" {
		cfg.StorePath = v
	}
	if v := os.Getenv("MASKER_PRESERVE_CASE"); v == "false" {
		cfg.PreserveCase = false
	}
	if v := os.Getenv("MASKER_MASK_NAMES"); v == "false" {
		cfg.MaskNames = false
	}
	if v := os.Getenv("MASKER_MASK_RANKS"); v == "false" {
		cfg.MaskRanks = false
	}
	if v := os.Getenv("MASKER_MASK_IDENTIFIERS"); v == "false" {
		cfg.MaskIdentifiers = false
	}
	if v := os.Getenv("MASKER_MASK_DATES"); v == "false" {
		cfg.MaskDates = false
	}
}
