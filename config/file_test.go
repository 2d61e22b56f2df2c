package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFile_NoFile(t *testing.T) {
	// Create a temporary directory that definitely doesn't have a config file
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	cfg, err := LoadConfigFile("")
	require.NoError(t, err)
	assert.Nil(t, cfg, "Should return nil when config file doesn't exist")
}

func TestLoadConfigFile_ValidConfig(t *testing.T) {
	tmpDir := t.TempDir()

	cruncherDir := filepath.Join(tmpDir, ".cruncher")
	require.NoError(t, os.MkdirAll(cruncherDir, 0o700))

	configPath := filepath.Join(cruncherDir, "config.yaml")
	configContent := `site:
  root: "http://localhost:8080/"
  list:
    headline_marker: "river_headline"
  article:
    title_selector: "h1.title"
fetch:
  timeout: "30s"
  user_agent: "test-agent"
  breaker_threshold: 0
output:
  directory: "/tmp/out"
  file: "companies.csv"
  columns: "article-first"
dates:
  default_window: "trailing-month"
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0o600))
	t.Setenv("HOME", tmpDir)

	cfg, err := LoadConfigFile("")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "http://localhost:8080/", cfg.Site.Root)
	assert.Equal(t, "river_headline", cfg.Site.ListConfig.HeadlineMarker)
	assert.Equal(t, "h1.title", cfg.Site.ArticleConfig.TitleSelector)
	assert.Equal(t, "30s", cfg.Fetch.Timeout)
	assert.Equal(t, "test-agent", cfg.Fetch.UserAgent)
	require.NotNil(t, cfg.Fetch.BreakerThreshold)
	assert.Equal(t, 0, *cfg.Fetch.BreakerThreshold)
	assert.Equal(t, "/tmp/out", cfg.Output.Directory)
	assert.Equal(t, "companies.csv", cfg.Output.File)
	assert.Equal(t, "article-first", cfg.Output.Columns)
	assert.Equal(t, "trailing-month", cfg.Dates.DefaultWindow)
}

func TestLoadConfigFile_ExplicitPath(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("output:\n  columns: company-first\n"), 0o600))

	cfg, err := LoadConfigFile(configPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "company-first", cfg.Output.Columns)
}

func TestLoadConfigFile_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	invalidContent := `site:
  root: "http://example.com"
  list:
    - this is invalid yaml because list should be an object not a list
`
	require.NoError(t, os.WriteFile(configPath, []byte(invalidContent), 0o600))

	cfg, err := LoadConfigFile(configPath)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoadConfigFile_PartialConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("fetch:\n  timeout: \"5s\"\n"), 0o600))

	cfg, err := LoadConfigFile(configPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "5s", cfg.Fetch.Timeout)
	assert.Nil(t, cfg.Fetch.BreakerThreshold, "Unspecified threshold should stay nil")
	assert.Equal(t, "", cfg.Site.Root, "Unspecified root should be empty string")
	assert.Equal(t, "", cfg.Output.Columns, "Unspecified columns should be empty string")
}
