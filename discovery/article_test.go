package discovery

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pevans/cruncher/scraper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultArticleConfig() scraper.ArticleConfig {
	return scraper.DefaultSiteConfig().ArticleConfig
}

const fullArticleHTML = `
<html>
	<body>
		<header>
			<h1 class="alpha tweet-title">  Acme Corp raises
				$10M Series A  </h1>
		</header>
		<div class="article-entry">Story text.</div>
		<ul class="data-card crunchbase-card active">
			<li class="cb-card-title">
				<a class="cb-card-title-link" href="/organization/acme">
					Acme Corp
				</a>
			</li>
			<li class="data-item">
				<strong>Founded</strong>
				<span>2012</span>
			</li>
			<li class="data-item">
				<strong>Website</strong>
				<span class="value">
					<a href="https://acme.example">acme.example</a>
				</span>
			</li>
		</ul>
	</body>
</html>
`

const noCardArticleHTML = `
<html>
	<body>
		<h1 class="alpha tweet-title">Opinion: the state of things</h1>
		<div class="article-entry">No company here.</div>
	</body>
</html>
`

// TestExtractFields_Complete verifies all fields are extracted
func TestExtractFields_Complete(t *testing.T) {
	record, err := ExtractFields(parseHTML(t, fullArticleHTML), defaultArticleConfig(), "https://techcrunch.com/2015/07/01/acme/")
	require.NoError(t, err)

	assert.Equal(t, "Acme Corp raises $10M Series A", record.ArticleTitle, "should normalize title whitespace")
	assert.Equal(t, "https://techcrunch.com/2015/07/01/acme/", record.ArticleURL)
	require.NotNil(t, record.CompanyName)
	assert.Equal(t, "Acme Corp", *record.CompanyName)
	require.NotNil(t, record.CompanyWebsite)
	assert.Equal(t, "https://acme.example", *record.CompanyWebsite)
}

// TestExtractFields_NoCompanyCard verifies absent company fields
func TestExtractFields_NoCompanyCard(t *testing.T) {
	record, err := ExtractFields(parseHTML(t, noCardArticleHTML), defaultArticleConfig(), "http://example.com/op-ed")
	require.NoError(t, err)

	assert.Equal(t, "Opinion: the state of things", record.ArticleTitle)
	assert.Nil(t, record.CompanyName)
	assert.Nil(t, record.CompanyWebsite)
	assert.Equal(t, "n/a", record.Name())
	assert.Equal(t, "n/a", record.Website())
}

// TestExtractFields_NameWithoutWebsite verifies fields are independent
func TestExtractFields_NameWithoutWebsite(t *testing.T) {
	html := `<h1 class="alpha tweet-title">Title</h1>
		<a class="cb-card-title-link">Solo Inc</a>`

	record, err := ExtractFields(parseHTML(t, html), defaultArticleConfig(), "http://example.com/a")
	require.NoError(t, err)

	assert.Equal(t, "Solo Inc", record.Name())
	assert.Nil(t, record.CompanyWebsite)
}

// TestExtractFields_MissingTitle verifies the title is required
func TestExtractFields_MissingTitle(t *testing.T) {
	html := `<html><body><h2>Not the title</h2><a class="cb-card-title-link">Acme</a></body></html>`

	_, err := ExtractFields(parseHTML(t, html), defaultArticleConfig(), "http://example.com/a")
	assert.ErrorIs(t, err, ErrMissingField)

	var missing *MissingFieldError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "article title", missing.Field)
	assert.Equal(t, "http://example.com/a", missing.URL)
}

// TestExtractFields_BlankTitle verifies a whitespace-only title is missing
func TestExtractFields_BlankTitle(t *testing.T) {
	html := `<h1 class="alpha tweet-title">   </h1>`

	_, err := ExtractFields(parseHTML(t, html), defaultArticleConfig(), "http://example.com/a")
	assert.ErrorIs(t, err, ErrMissingField)
}

// TestExtractCompanyName_FirstCard verifies only the first card is used
func TestExtractCompanyName_FirstCard(t *testing.T) {
	html := `<a class="cb-card-title-link"> First </a><a class="cb-card-title-link">Second</a>`

	assert.Equal(t, "First", ExtractCompanyName(parseHTML(t, html), defaultArticleConfig()))
}

// TestScrapeArticle verifies one fetch per article
func TestScrapeArticle(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(fullArticleHTML))
	}))
	defer server.Close()

	fetcher := NewHTTPFetcher(nil, testFetchConfig(), nil)

	record, err := ScrapeArticle(context.Background(), fetcher, server.URL+"/acme", defaultArticleConfig())
	require.NoError(t, err)

	assert.Equal(t, 1, hits)
	assert.Equal(t, server.URL+"/acme", record.ArticleURL)
	assert.Equal(t, "Acme Corp", record.Name())
}

// TestScrapeArticle_FetchError verifies no record is synthesized on failure
func TestScrapeArticle_FetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	fetcher := NewHTTPFetcher(nil, testFetchConfig(), nil)

	record, err := ScrapeArticle(context.Background(), fetcher, server.URL+"/acme", defaultArticleConfig())
	assert.ErrorIs(t, err, ErrFetch)
	assert.Empty(t, record.ArticleURL)
	assert.Empty(t, record.ArticleTitle)
}
