// Package config provides configuration loading and management for
// neuroconnect. It handles loading configuration from YAML files and
// provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Server parameters
	Server struct {
		// Listen is the address the web server binds to
		Listen string `yaml:"listen"`
	} `yaml:"server"`

	// Data parameters
	Data struct {
		// Dir is the directory holding diagnosis.csv, DTI.csv and the
		// tract coordinate table
		Dir string `yaml:"dir"`

		// CoordinatesFile is the tract coordinate CSV produced by the
		// extract-coords tool, relative to Dir
		CoordinatesFile string `yaml:"coordinatesFile"`

		// IDColumn is the participant id column shared by both inputs
		IDColumn string `yaml:"idColumn"`

		// GroupColumn is the diagnosis group column
		GroupColumn string `yaml:"groupColumn"`

		// DatabaseFile is the sqlite file for uploaded datasets,
		// relative to Dir
		DatabaseFile string `yaml:"databaseFile"`
	} `yaml:"data"`

	// Study parameters
	Study struct {
		// Metric is the DTI metric to aggregate and display
		Metric string `yaml:"metric"`

		// Groups are the diagnosis groups of interest, in order.
		// Difference mode computes Groups[1] - Groups[0].
		Groups []string `yaml:"groups"`
	} `yaml:"study"`

	// Visual parameters
	Visual struct {
		// NodeSizeMin and NodeSizeMax bound the scaled node size
		NodeSizeMin float64 `yaml:"nodeSizeMin"`
		NodeSizeMax float64 `yaml:"nodeSizeMax"`

		// DiffRange fixes the half-width of the difference color range.
		// Zero means use the observed maximum absolute difference.
		DiffRange float64 `yaml:"diffRange"`

		// SequentialColors is the color ramp for single-group figures
		SequentialColors []string `yaml:"sequentialColors"`

		// DivergingColors is the color ramp for difference figures;
		// its midpoint color marks "no difference"
		DivergingColors []string `yaml:"divergingColors"`
	} `yaml:"visual"`

	// Demo parameters
	Demo struct {
		// Nodes is the number of points the demo generator samples
		Nodes int `yaml:"nodes"`

		// Seed makes demo clouds reproducible
		Seed int64 `yaml:"seed"`
	} `yaml:"demo"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default server parameters
	cfg.Server.Listen = ":8080"

	// Set default data parameters
	cfg.Data.Dir = "data"
	cfg.Data.CoordinatesFile = "jhu_coordinates.csv"
	cfg.Data.IDColumn = "LONIUID"
	cfg.Data.GroupColumn = "Group"
	cfg.Data.DatabaseFile = "neuroconnect.db"

	// Set default study parameters
	cfg.Study.Metric = "FA"
	cfg.Study.Groups = []string{"CN", "AD"}

	// Set default visual parameters
	cfg.Visual.NodeSizeMin = 6
	cfg.Visual.NodeSizeMax = 18
	cfg.Visual.DiffRange = 0
	cfg.Visual.SequentialColors = []string{
		"#440154", "#482777", "#3e4989", "#31688e", "#26828e",
		"#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725",
	}
	cfg.Visual.DivergingColors = []string{
		"#67001f", "#b2182b", "#d6604d", "#f4a582", "#f7f7f7",
		"#92c5de", "#4393c3", "#2166ac", "#053061",
	}

	// Set default demo parameters
	cfg.Demo.Nodes = 120
	cfg.Demo.Seed = 2025

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CoordinatesPath returns the path of the coordinate table.
func (c *Config) CoordinatesPath() string {
	return filepath.Join(c.Data.Dir, c.Data.CoordinatesFile)
}

// DatabasePath returns the path of the sqlite database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Data.Dir, c.Data.DatabaseFile)
}
