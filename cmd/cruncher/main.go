package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/pevans/cruncher/company"
	"github.com/pevans/cruncher/config"
	"github.com/pevans/cruncher/daterange"
	"github.com/pevans/cruncher/discovery"
	"github.com/pevans/cruncher/logging"
	"github.com/pevans/cruncher/metrics"
	"github.com/pevans/cruncher/pipeline"
)

// Exit codes.
const (
	exitOK           = 0
	exitUsage        = 1
	exitInvalidRange = 2
	exitNoData       = 3
	exitWriteFailed  = 4
	exitInterrupted  = 5
)

// options holds the parsed command line.
type options struct {
	startDate     string
	endDate       string
	directory     string
	configPath    string
	columns       string
	defaultWindow string
	outputFile    string
	metricsFile   string
	logLevel      string
	logFormat     string
}

func main() {
	// A missing .env file is fine
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stderr, os.Getenv)
	stop()

	os.Exit(code)
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(getenv func(string) string, key, defaultValue string) string {
	if value := getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseFlags(args []string, stderr io.Writer, getenv func(string) string) (*options, error) {
	opts := &options{}

	fs := flag.NewFlagSet("cruncher", flag.ContinueOnError)
	fs.SetOutput(stderr)

	startHelp := "Beginning date for scraping, e.g. 2015-07-30 for July 30, 2015"
	fs.StringVar(&opts.startDate, "start-date", "", startHelp)
	fs.StringVar(&opts.startDate, "startdate", "", startHelp)

	endHelp := "End date for scraping (YYYY-MM-DD)"
	fs.StringVar(&opts.endDate, "end-date", "", endHelp)
	fs.StringVar(&opts.endDate, "enddate", "", endHelp)

	dirHelp := "Destination folder for the CSV file; created if it doesn't exist"
	fs.StringVar(&opts.directory, "directory", "", dirHelp)
	fs.StringVar(&opts.directory, "dir", "", dirHelp)

	fs.StringVar(&opts.configPath, "config", "", "Path to config file (default ~/.cruncher/config.yaml)")
	fs.StringVar(&opts.columns, "columns", "", "Column order: company-first or article-first (CRUNCHER_COLUMNS)")
	fs.StringVar(&opts.defaultWindow, "default-window", "", "Dates used when none are given: yesterday or trailing-month (CRUNCHER_DEFAULT_WINDOW)")
	fs.StringVar(&opts.outputFile, "output", "", "Name of the CSV file (default "+config.DefaultOutputFile+")")
	fs.StringVar(&opts.metricsFile, "metrics-file", "", "Write run metrics in Prometheus text format to this path")
	fs.StringVar(&opts.logLevel, "log-level", getEnv(getenv, "LOG_LEVEL", "info"), "Log level: debug, info, warn, error (LOG_LEVEL)")
	fs.StringVar(&opts.logFormat, "log-format", getEnv(getenv, "LOG_FORMAT", logging.FormatText), "Log format: text or json (LOG_FORMAT)")

	fs.Usage = func() {
		fmt.Fprintln(stderr, "cruncher - Extract company information from TechCrunch articles")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Usage:")
		fmt.Fprintln(stderr, "  cruncher [--start-date YYYY-MM-DD] [--end-date YYYY-MM-DD] [--directory DIR]")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Flags:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	return opts, nil
}

// resolveConfig layers defaults, config file, environment and flags.
func resolveConfig(opts *options, getenv func(string) string) (config.Config, error) {
	cfg := config.Default()

	file, err := config.LoadConfigFile(opts.configPath)
	if err != nil {
		return cfg, err
	}
	if err := cfg.ApplyFile(file); err != nil {
		return cfg, err
	}
	if err := cfg.ApplyEnv(getenv); err != nil {
		return cfg, err
	}

	if opts.directory != "" {
		cfg.Directory = opts.directory
	}
	if opts.outputFile != "" {
		cfg.OutputFile = opts.outputFile
	}
	if opts.columns != "" {
		order, err := company.ParseColumnOrder(opts.columns)
		if err != nil {
			return cfg, err
		}
		cfg.Columns = order
	}
	if opts.defaultWindow != "" {
		policy, err := daterange.ParsePolicy(opts.defaultWindow)
		if err != nil {
			return cfg, err
		}
		cfg.DefaultWindow = policy
	}

	return cfg, nil
}

func run(ctx context.Context, args []string, stderr io.Writer, getenv func(string) string) int {
	opts, err := parseFlags(args, stderr, getenv)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	logger, err := logging.New(stderr, opts.logLevel, opts.logFormat)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	cfg, err := resolveConfig(opts, getenv)
	if err != nil {
		logger.Error("invalid configuration", slog.Any("error", err))
		return exitUsage
	}

	if err := os.MkdirAll(cfg.Directory, 0o755); err != nil {
		logger.Error("failed to create output directory", slog.String("directory", cfg.Directory), slog.Any("error", err))
		return exitWriteFailed
	}
	outputPath := filepath.Join(cfg.Directory, cfg.OutputFile)

	m := metrics.New()
	fetcher := discovery.NewHTTPFetcher(nil, cfg.Fetch, logger)
	driver := pipeline.NewDriver(fetcher, pipeline.Options{
		Site:          cfg.Site,
		DefaultWindow: cfg.DefaultWindow,
		Metrics:       m,
		Logger:        logger,
	})

	table, report, runErr := driver.Run(ctx, opts.startDate, opts.endDate)

	code := exitOK
	switch {
	case runErr == nil:
	case errors.Is(runErr, daterange.ErrInvalidRange):
		code = exitInvalidRange
	case errors.Is(runErr, pipeline.ErrNothingFetched):
		code = exitNoData
	case errors.Is(runErr, context.Canceled), errors.Is(runErr, context.DeadlineExceeded):
		logger.Warn("run interrupted, writing partial results", slog.Int("records", table.Len()))
		code = exitInterrupted
	default:
		logger.Error("run failed", slog.Any("error", runErr))
		code = exitNoData
	}

	if err := table.Persist(outputPath, cfg.Columns); err != nil {
		logger.Error("failed to save results", slog.String("path", outputPath), slog.Any("error", err))
		return exitWriteFailed
	}

	logger.Info("saved results",
		slog.String("path", outputPath),
		slog.Int("records", table.Len()),
		slog.String("run_id", report.RunID.String()))

	if opts.metricsFile != "" {
		if err := m.WriteTextfile(opts.metricsFile); err != nil {
			logger.Warn("failed to write metrics", slog.Any("error", err))
		}
	}

	return code
}
