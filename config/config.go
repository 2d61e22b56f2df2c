// Package config resolves the settings of a scrape run from built-in
// defaults, an optional YAML file and CRUNCHER_* environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/pevans/cruncher/company"
	"github.com/pevans/cruncher/daterange"
	"github.com/pevans/cruncher/discovery"
	"github.com/pevans/cruncher/scraper"
)

// DefaultOutputFile is the name of the CSV file written to the output
// directory.
const DefaultOutputFile = "company_info.csv"

// Environment variables read by ApplyEnv.
const (
	EnvSiteRoot      = "CRUNCHER_SITE_ROOT"
	EnvFetchTimeout  = "CRUNCHER_FETCH_TIMEOUT"
	EnvUserAgent     = "CRUNCHER_USER_AGENT"
	EnvColumns       = "CRUNCHER_COLUMNS"
	EnvDefaultWindow = "CRUNCHER_DEFAULT_WINDOW"
	EnvDirectory     = "CRUNCHER_DIRECTORY"
)

// Config is the resolved configuration of a run.
type Config struct {
	Site          scraper.SiteConfig
	Fetch         discovery.FetchConfig
	Columns       company.ColumnOrder
	DefaultWindow daterange.DefaultPolicy
	Directory     string
	OutputFile    string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Site:          scraper.DefaultSiteConfig(),
		Fetch:         discovery.DefaultFetchConfig(),
		Columns:       company.CompanyFirst,
		DefaultWindow: daterange.PolicyYesterday,
		Directory:     ".",
		OutputFile:    DefaultOutputFile,
	}
}

// ApplyFile overrides c with every field set in f. A nil f changes nothing.
func (c *Config) ApplyFile(f *FileConfig) error {
	if f == nil {
		return nil
	}

	// Site fields left empty in the file keep their defaults
	c.Site = c.Site.Merge(f.Site)

	if f.Fetch.Timeout != "" {
		d, err := time.ParseDuration(f.Fetch.Timeout)
		if err != nil {
			return fmt.Errorf("invalid fetch.timeout: %w", err)
		}
		c.Fetch.Timeout = d
	}
	if f.Fetch.UserAgent != "" {
		c.Fetch.UserAgent = f.Fetch.UserAgent
	}
	if f.Fetch.BreakerThreshold != nil {
		if *f.Fetch.BreakerThreshold < 0 {
			return fmt.Errorf("invalid fetch.breaker_threshold: %d", *f.Fetch.BreakerThreshold)
		}
		c.Fetch.BreakerThreshold = uint32(*f.Fetch.BreakerThreshold)
	}
	if f.Fetch.BreakerTimeout != "" {
		d, err := time.ParseDuration(f.Fetch.BreakerTimeout)
		if err != nil {
			return fmt.Errorf("invalid fetch.breaker_timeout: %w", err)
		}
		c.Fetch.BreakerTimeout = d
	}

	if f.Output.Directory != "" {
		c.Directory = f.Output.Directory
	}
	if f.Output.File != "" {
		c.OutputFile = f.Output.File
	}
	if f.Output.Columns != "" {
		order, err := company.ParseColumnOrder(f.Output.Columns)
		if err != nil {
			return fmt.Errorf("invalid output.columns: %w", err)
		}
		c.Columns = order
	}

	if f.Dates.DefaultWindow != "" {
		policy, err := daterange.ParsePolicy(f.Dates.DefaultWindow)
		if err != nil {
			return fmt.Errorf("invalid dates.default_window: %w", err)
		}
		c.DefaultWindow = policy
	}

	return nil
}

// ApplyEnv overrides c with the CRUNCHER_* variables returned by getenv.
// Pass os.Getenv in production.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvSiteRoot); v != "" {
		c.Site.Root = v
	}
	if v := getenv(EnvFetchTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvFetchTimeout, err)
		}
		c.Fetch.Timeout = d
	}
	if v := getenv(EnvUserAgent); v != "" {
		c.Fetch.UserAgent = v
	}
	if v := getenv(EnvColumns); v != "" {
		order, err := company.ParseColumnOrder(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvColumns, err)
		}
		c.Columns = order
	}
	if v := getenv(EnvDefaultWindow); v != "" {
		policy, err := daterange.ParsePolicy(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvDefaultWindow, err)
		}
		c.DefaultWindow = policy
	}
	if v := getenv(EnvDirectory); v != "" {
		c.Directory = v
	}

	return nil
}
