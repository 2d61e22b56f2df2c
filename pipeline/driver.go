// Package pipeline runs a complete scrape: it expands the date range, reads
// every daily listing and then every article, one page at a time.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pevans/cruncher/company"
	"github.com/pevans/cruncher/daterange"
	"github.com/pevans/cruncher/discovery"
	"github.com/pevans/cruncher/metrics"
	"github.com/pevans/cruncher/scraper"
)

// ErrNothingFetched is returned when days were requested but not a single
// listing page could be fetched.
var ErrNothingFetched = errors.New("no listing page could be fetched")

// Options configures a Driver. Zero values get defaults.
type Options struct {
	Site          scraper.SiteConfig
	DefaultWindow daterange.DefaultPolicy
	Metrics       *metrics.Metrics
	Logger        *slog.Logger
	// Now returns the wall clock time used for default dates
	Now func() time.Time
}

// Driver runs scrapes against one site. It keeps no state between runs.
type Driver struct {
	fetcher discovery.Fetcher
	site    scraper.SiteConfig
	policy  daterange.DefaultPolicy
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// RunReport summarizes what a run did.
type RunReport struct {
	RunID           uuid.UUID
	Range           daterange.Range
	Days            int
	ListingsFetched int
	ListingsFailed  int
	ArticlesFound   int
	ArticlesSkipped int
	Records         int
	Duration        time.Duration
}

// NewDriver creates a driver that fetches pages with fetcher.
func NewDriver(fetcher discovery.Fetcher, opts Options) *Driver {
	if opts.DefaultWindow == "" {
		opts.DefaultWindow = daterange.PolicyYesterday
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Driver{
		fetcher: fetcher,
		site:    opts.Site.WithDefaults(),
		policy:  opts.DefaultWindow,
		metrics: opts.Metrics,
		logger:  opts.Logger,
		now:     opts.Now,
	}
}

// Run scrapes every article listed between start and end (YYYY-MM-DD, empty
// for the default) and returns the records in discovery order.
//
// Pages that fail to load and articles without a title are logged and
// skipped. The returned table is never nil; it holds whatever was collected
// even when an error is returned. Errors are daterange.ErrInvalidRange,
// ErrNothingFetched, or the context's error if ctx ends early.
func (d *Driver) Run(ctx context.Context, start, end string) (*company.Table, *RunReport, error) {
	startedAt := time.Now()
	table := company.NewTable()
	report := &RunReport{RunID: uuid.New()}
	logger := d.logger.With(slog.String("run_id", report.RunID.String()))

	defer func() {
		report.Records = table.Len()
		report.Duration = time.Since(startedAt)
		d.metrics.RunDuration.Set(report.Duration.Seconds())
	}()

	r, err := daterange.Resolve(start, end, d.now(), d.policy)
	report.Range = r
	if errors.Is(err, daterange.ErrInvalidRange) {
		logger.Error("start date should be older than end date",
			slog.String("start", r.Start.Format(daterange.Layout)),
			slog.String("end", r.End.Format(daterange.Layout)))
		return table, report, err
	}
	if err != nil {
		logger.Warn("reverting to default date", slog.Any("error", err))
	}

	dayURLs, err := daterange.Expand(r, d.site.Root)
	if err != nil {
		return table, report, err
	}
	report.Days = len(dayURLs)

	logger.Info("starting run",
		slog.String("range", r.String()),
		slog.Int("days", report.Days),
		slog.String("site", d.site.Root))

	articleURLs, err := d.collectLinks(ctx, logger, dayURLs, report)
	if err == nil {
		err = interrupted(ctx)
	}
	if err != nil {
		return table, report, err
	}

	if report.Days > 0 && report.ListingsFetched == 0 {
		logger.Error("no listing page could be fetched", slog.Int("failed", report.ListingsFailed))
		return table, report, ErrNothingFetched
	}

	err = d.scrapeArticles(ctx, logger, articleURLs, table, report)
	if err == nil {
		err = interrupted(ctx)
	}
	if err != nil {
		return table, report, err
	}

	logger.Info("run complete",
		slog.Int("articles", report.ArticlesFound),
		slog.Int("records", table.Len()),
		slog.Int("skipped", report.ArticlesSkipped),
		slog.Duration("duration", time.Since(startedAt)))

	return table, report, nil
}

// collectLinks reads the listing pages of every day, in order, and returns
// all article links found.
func (d *Driver) collectLinks(ctx context.Context, logger *slog.Logger, dayURLs []string, report *RunReport) ([]string, error) {
	var articleURLs []string

	for _, dayURL := range dayURLs {
		for page := 1; page <= d.site.ListConfig.MaxPages; page++ {
			if err := interrupted(ctx); err != nil {
				return articleURLs, err
			}

			logger.Info("fetching links on page", slog.String("url", discovery.ListingURL(dayURL, page)))

			links, err := discovery.ScrapeListing(ctx, d.fetcher, dayURL, page, d.site.ListConfig)
			if stop := interrupted(ctx); stop != nil {
				return articleURLs, stop
			}
			d.metrics.RecordFetch(metrics.KindListing, err)
			if err != nil {
				report.ListingsFailed++
				logger.Warn("skipping listing page", slog.String("url", dayURL), slog.Int("page", page), slog.Any("error", err))
				break
			}

			report.ListingsFetched++
			logger.Debug("found article links", slog.String("url", dayURL), slog.Int("page", page), slog.Int("count", len(links)))

			articleURLs = append(articleURLs, links...)
			if len(links) == 0 {
				break
			}
		}
	}

	report.ArticlesFound = len(articleURLs)

	return articleURLs, nil
}

// scrapeArticles extracts a record from each article in order and appends
// it to table.
func (d *Driver) scrapeArticles(ctx context.Context, logger *slog.Logger, articleURLs []string, table *company.Table, report *RunReport) error {
	for _, articleURL := range articleURLs {
		if err := interrupted(ctx); err != nil {
			return err
		}

		logger.Info("company info on article", slog.String("url", articleURL))

		record, err := discovery.ScrapeArticle(ctx, d.fetcher, articleURL, d.site.ArticleConfig)
		if stop := interrupted(ctx); stop != nil {
			return stop
		}

		var fetchErr error
		if errors.Is(err, discovery.ErrFetch) {
			fetchErr = err
		}
		d.metrics.RecordFetch(metrics.KindArticle, fetchErr)

		if err != nil {
			report.ArticlesSkipped++
			reason := metrics.ReasonFetch
			if errors.Is(err, discovery.ErrMissingField) {
				reason = metrics.ReasonMissingTitle
			}
			d.metrics.RecordSkip(reason)
			logger.Warn("skipping article", slog.String("url", articleURL), slog.String("reason", reason), slog.Any("error", err))
			continue
		}

		table.Append(record)
		d.metrics.RecordRecord(record.HasCompany())
	}

	return nil
}

// interrupted returns a wrapped context error once ctx has ended.
func interrupted(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("run interrupted: %w", err)
	}
	return nil
}
