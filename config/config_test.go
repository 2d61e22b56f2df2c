package config

import (
	"testing"
	"time"

	"github.com/pevans/cruncher/company"
	"github.com/pevans/cruncher/daterange"
	"github.com/pevans/cruncher/scraper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

// TestDefault verifies built-in defaults
func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, scraper.DefaultSiteRoot, cfg.Site.Root)
	assert.Equal(t, company.CompanyFirst, cfg.Columns)
	assert.Equal(t, daterange.PolicyYesterday, cfg.DefaultWindow)
	assert.Equal(t, 10*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, DefaultOutputFile, cfg.OutputFile)
	assert.Equal(t, ".", cfg.Directory)
}

// TestApplyFile_Nil verifies a missing file changes nothing
func TestApplyFile_Nil(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.ApplyFile(nil))
	assert.Equal(t, Default(), cfg)
}

// TestApplyFile_Overrides verifies file values replace defaults
func TestApplyFile_Overrides(t *testing.T) {
	zero := 0
	file := &FileConfig{
		Site: scraper.SiteConfig{
			Root:       "http://localhost/",
			ListConfig: scraper.ListConfig{HeadlineMarker: "story"},
		},
		Fetch:  FetchFile{Timeout: "3s", BreakerThreshold: &zero, BreakerTimeout: "2m"},
		Output: OutputFile{Columns: "article-first", File: "x.csv"},
		Dates:  DatesFile{DefaultWindow: "trailing-month"},
	}

	cfg := Default()
	require.NoError(t, cfg.ApplyFile(file))

	assert.Equal(t, "http://localhost/", cfg.Site.Root)
	assert.Equal(t, "story", cfg.Site.ListConfig.HeadlineMarker)
	assert.Equal(t, scraper.DefaultHeadlineAttr, cfg.Site.ListConfig.HeadlineAttr, "unset fields keep defaults")
	assert.Equal(t, scraper.DefaultTitleSelector, cfg.Site.ArticleConfig.TitleSelector)
	assert.Equal(t, 3*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, uint32(0), cfg.Fetch.BreakerThreshold)
	assert.Equal(t, 2*time.Minute, cfg.Fetch.BreakerTimeout)
	assert.Equal(t, company.ArticleFirst, cfg.Columns)
	assert.Equal(t, "x.csv", cfg.OutputFile)
	assert.Equal(t, daterange.PolicyTrailingMonth, cfg.DefaultWindow)
}

// TestApplyFile_Invalid verifies bad values are rejected
func TestApplyFile_Invalid(t *testing.T) {
	negative := -1
	cases := map[string]*FileConfig{
		"timeout":   {Fetch: FetchFile{Timeout: "soon"}},
		"threshold": {Fetch: FetchFile{BreakerThreshold: &negative}},
		"columns":   {Output: OutputFile{Columns: "sideways"}},
		"window":    {Dates: DatesFile{DefaultWindow: "decade"}},
	}

	for name, file := range cases {
		cfg := Default()
		assert.Error(t, cfg.ApplyFile(file), name)
	}
}

// TestApplyEnv_OverridesFile verifies env takes precedence over the file
func TestApplyEnv_OverridesFile(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.ApplyFile(&FileConfig{Output: OutputFile{Columns: "article-first"}}))

	err := cfg.ApplyEnv(envMap(map[string]string{
		EnvColumns:       "company-first",
		EnvSiteRoot:      "http://env.example/",
		EnvFetchTimeout:  "750ms",
		EnvUserAgent:     "env-agent",
		EnvDefaultWindow: "trailing-month",
		EnvDirectory:     "/data",
	}))
	require.NoError(t, err)

	assert.Equal(t, company.CompanyFirst, cfg.Columns)
	assert.Equal(t, "http://env.example/", cfg.Site.Root)
	assert.Equal(t, 750*time.Millisecond, cfg.Fetch.Timeout)
	assert.Equal(t, "env-agent", cfg.Fetch.UserAgent)
	assert.Equal(t, daterange.PolicyTrailingMonth, cfg.DefaultWindow)
	assert.Equal(t, "/data", cfg.Directory)
}

// TestApplyEnv_Empty verifies unset variables change nothing
func TestApplyEnv_Empty(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(envMap(nil)))
	assert.Equal(t, Default(), cfg)
}

// TestApplyEnv_Invalid verifies bad values are rejected
func TestApplyEnv_Invalid(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(envMap(map[string]string{EnvFetchTimeout: "ten seconds"}))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), EnvFetchTimeout)
}
