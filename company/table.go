package company

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Column names as they appear in the header row.
const (
	ColumnCompanyName    = "company name"
	ColumnCompanyWebsite = "company website"
	ColumnArticleTitle   = "article title"
	ColumnArticleURL     = "article url"
)

// ColumnOrder selects the layout of the output table.
type ColumnOrder string

const (
	// CompanyFirst writes company name, company website, article title,
	// article url.
	CompanyFirst ColumnOrder = "company-first"
	// ArticleFirst writes article title, article url, company name, company
	// website.
	ArticleFirst ColumnOrder = "article-first"
)

var ErrBadColumnOrder = errors.New("column order must be company-first or article-first")

// ParseColumnOrder validates a column order name. An empty string selects
// CompanyFirst.
func ParseColumnOrder(s string) (ColumnOrder, error) {
	switch ColumnOrder(strings.TrimSpace(s)) {
	case "", CompanyFirst:
		return CompanyFirst, nil
	case ArticleFirst:
		return ArticleFirst, nil
	}
	return "", fmt.Errorf("%w: %q", ErrBadColumnOrder, s)
}

// Header returns the header row for this order.
func (o ColumnOrder) Header() []string {
	if o == ArticleFirst {
		return []string{ColumnArticleTitle, ColumnArticleURL, ColumnCompanyName, ColumnCompanyWebsite}
	}
	return []string{ColumnCompanyName, ColumnCompanyWebsite, ColumnArticleTitle, ColumnArticleURL}
}

// Row renders a record in this order, substituting NotAvailable for absent
// fields.
func (o ColumnOrder) Row(r Record) []string {
	if o == ArticleFirst {
		return []string{r.ArticleTitle, r.ArticleURL, r.Name(), r.Website()}
	}
	return []string{r.Name(), r.Website(), r.ArticleTitle, r.ArticleURL}
}

// Table is an ordered list of records in the order they were discovered.
type Table struct {
	Records []Record
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{Records: []Record{}}
}

// Append adds a record to the end of the table.
func (t *Table) Append(r Record) {
	t.Records = append(t.Records, r)
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.Records)
}

// WriteCSV writes a header row followed by one row per record.
func (t *Table) WriteCSV(w io.Writer, order ColumnOrder) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(order.Header()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, record := range t.Records {
		if err := cw.Write(order.Row(record)); err != nil {
			return fmt.Errorf("failed to write row for %s: %w", record.ArticleURL, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}

	return nil
}

// Persist writes the table as CSV to path, replacing any existing file. The
// parent directory is created if it doesn't exist.
func (t *Table) Persist(path string, order ColumnOrder) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if err := t.WriteCSV(f, order); err != nil {
		f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}

	return nil
}
