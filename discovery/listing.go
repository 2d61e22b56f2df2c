package discovery

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pevans/cruncher/scraper"
)

// ListingURL returns the URL of one page of a day's listing. Page 1 (or
// anything lower) is the day URL itself; later pages live under
// <day>/page/N/.
func ListingURL(dayURL string, page int) string {
	if page <= 1 {
		return dayURL
	}
	return strings.TrimSuffix(dayURL, "/") + "/page/" + strconv.Itoa(page) + "/"
}

// ExtractLinks returns the href of every headline link on a listing page, in
// document order. A headline link is an anchor whose config.HeadlineAttr
// value starts with config.HeadlineMarker. Duplicates are kept. Relative
// hrefs are resolved against doc.Url when it is set.
func ExtractLinks(doc *goquery.Document, config scraper.ListConfig) []string {
	links := []string{}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		marker, ok := s.Attr(config.HeadlineAttr)
		if !ok || !strings.HasPrefix(marker, config.HeadlineMarker) {
			return
		}

		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" {
			return
		}

		links = append(links, resolveURL(doc.Url, href))
	})

	return links
}

// ScrapeListing fetches one page of a day's listing and returns its article
// links.
func ScrapeListing(ctx context.Context, fetcher Fetcher, dayURL string, page int, config scraper.ListConfig) ([]string, error) {
	doc, err := fetcher.Fetch(ctx, ListingURL(dayURL, page))
	if err != nil {
		return nil, err
	}

	return ExtractLinks(doc, config), nil
}

func resolveURL(base *url.URL, href string) string {
	if base == nil {
		return href
	}

	ref, err := url.Parse(href)
	if err != nil || ref.IsAbs() {
		return href
	}

	return base.ResolveReference(ref).String()
}
