package discovery

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pevans/cruncher/company"
	"github.com/pevans/cruncher/scraper"
)

// ErrMissingField matches every *MissingFieldError.
var ErrMissingField = errors.New("missing field")

// MissingFieldError describes a required element that was not on an article
// page.
type MissingFieldError struct {
	Field string
	URL   string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s not found on %s", e.Field, e.URL)
}

// Is lets errors.Is match a MissingFieldError against ErrMissingField.
func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// ExtractFields reads the article title and company card from an article
// page. The title is required; a missing company name or website leaves
// that field absent on the record.
func ExtractFields(doc *goquery.Document, config scraper.ArticleConfig, sourceURL string) (company.Record, error) {
	// Normalize whitespace: replace multiple spaces/newlines with single space
	title := strings.Join(strings.Fields(doc.Find(config.TitleSelector).First().Text()), " ")
	if title == "" {
		return company.Record{}, &MissingFieldError{Field: "article title", URL: sourceURL}
	}

	name := ExtractCompanyName(doc, config)
	website := ExtractWebsite(doc, config, DefaultWebsiteStrategies)

	return company.NewRecord(title, sourceURL, name, website), nil
}

// ExtractCompanyName returns the trimmed text of the company card title, or
// "" if the article has no company card.
func ExtractCompanyName(doc *goquery.Document, config scraper.ArticleConfig) string {
	return strings.TrimSpace(doc.Find(config.CompanyNameSelector).First().Text())
}

// ScrapeArticle fetches an article page once and extracts its fields. A
// fetch failure is returned as is and no record is produced.
func ScrapeArticle(ctx context.Context, fetcher Fetcher, articleURL string, config scraper.ArticleConfig) (company.Record, error) {
	doc, err := fetcher.Fetch(ctx, articleURL)
	if err != nil {
		return company.Record{}, err
	}

	return ExtractFields(doc, config, articleURL)
}
