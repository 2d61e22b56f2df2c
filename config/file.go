package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pevans/cruncher/scraper"
	"gopkg.in/yaml.v3"
)

// FetchFile holds the fetch section of the config file. Durations use
// time.ParseDuration syntax.
type FetchFile struct {
	Timeout          string `yaml:"timeout"`
	UserAgent        string `yaml:"user_agent"`
	BreakerThreshold *int   `yaml:"breaker_threshold"`
	BreakerTimeout   string `yaml:"breaker_timeout"`
}

// OutputFile holds the output section of the config file.
type OutputFile struct {
	Directory string `yaml:"directory"`
	File      string `yaml:"file"`
	Columns   string `yaml:"columns"`
}

// DatesFile holds the dates section of the config file.
type DatesFile struct {
	DefaultWindow string `yaml:"default_window"`
}

// FileConfig represents the structure of ~/.cruncher/config.yaml.
type FileConfig struct {
	Site   scraper.SiteConfig `yaml:"site"`
	Fetch  FetchFile          `yaml:"fetch"`
	Output OutputFile         `yaml:"output"`
	Dates  DatesFile          `yaml:"dates"`
}

// DefaultConfigPath returns ~/.cruncher/config.yaml.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".cruncher", "config.yaml"), nil
}

// LoadConfigFile loads configuration from path, or from DefaultConfigPath
// when path is empty. Returns nil if the file doesn't exist (not an error).
// Returns error if the file exists but cannot be parsed.
func LoadConfigFile(path string) (*FileConfig, error) {
	if path == "" {
		var err error
		path, err = DefaultConfigPath()
		if err != nil {
			return nil, err
		}
	}

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil // File doesn't exist -- not an error
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}
