// Package company holds the per-article company records produced by a scrape
// and writes them out as a CSV table.
package company

// NotAvailable is written in place of a company name or website that could
// not be determined.
const NotAvailable = "n/a"

// Record is the company, if any, that an article is about. A nil
// CompanyName or CompanyWebsite means the value was not found on the page;
// it is distinct from an empty string.
type Record struct {
	CompanyName    *string `json:"company_name,omitempty"`
	CompanyWebsite *string `json:"company_website,omitempty"`
	ArticleTitle   string  `json:"article_title"`
	ArticleURL     string  `json:"article_url"`
}

// NewRecord creates a record for an article. Empty name or website strings
// are treated as absent.
func NewRecord(articleTitle, articleURL, companyName, companyWebsite string) Record {
	return Record{
		CompanyName:    optional(companyName),
		CompanyWebsite: optional(companyWebsite),
		ArticleTitle:   articleTitle,
		ArticleURL:     articleURL,
	}
}

// Name returns the company name or NotAvailable.
func (r Record) Name() string {
	return orNotAvailable(r.CompanyName)
}

// Website returns the company website or NotAvailable.
func (r Record) Website() string {
	return orNotAvailable(r.CompanyWebsite)
}

// HasCompany reports whether a company name was found.
func (r Record) HasCompany() bool {
	return r.CompanyName != nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func orNotAvailable(s *string) string {
	if s == nil {
		return NotAvailable
	}
	return *s
}
