package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Source   Source   `yaml:"source"`
	Analysis Analysis `yaml:"analysis"`
	Server   Server   `yaml:"server"`
	Logging  Logging  `yaml:"logging"`
}

// Source locates the operational records database.
type Source struct {
	DatabasePath string `yaml:"database_path"`
}

type Analysis struct {
	// MinReports filters the job catalog to jobs with at least this
	// many daily reports.
	MinReports int `yaml:"min_reports"`
	// DuplicatePrecedence picks the surviving row when a source table
	// holds more than one equipment/report row for the same job and
	// date: "last" or "first".
	DuplicatePrecedence string `yaml:"duplicate_precedence"`
}

type Server struct {
	Port int `yaml:"port"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for mudwatch.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "mudwatch")
}

// DataDir returns the XDG data directory for mudwatch.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "mudwatch")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/mudwatch/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'mudwatch init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Analysis: Analysis{
			MinReports:          10,
			DuplicatePrecedence: "last",
		},
		Server:  Server{Port: 8000},
		Logging: Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if p := cfg.Analysis.DuplicatePrecedence; p != "last" && p != "first" {
		return nil, fmt.Errorf("invalid duplicate_precedence %q (want \"last\" or \"first\")", p)
	}

	return cfg, nil
}

// DatabasePath returns the effective records database path, defaulting to
// wellstar.db under the XDG data directory.
func (c *Config) DatabasePath() string {
	if c.Source.DatabasePath != "" {
		return c.Source.DatabasePath
	}
	return filepath.Join(DataDir(), "wellstar.db")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
