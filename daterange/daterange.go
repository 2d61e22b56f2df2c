// Package daterange turns a pair of user supplied calendar dates into the
// ordered list of per-day listing pages to scrape.
package daterange

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Layout is the only accepted input format for dates.
const Layout = "2006-01-02"

// pathLayout is how a day appears in a listing page URL.
const pathLayout = "2006/01/02"

// DefaultPolicy decides which dates stand in for a missing or malformed
// bound.
type DefaultPolicy string

const (
	// PolicyYesterday scrapes only the day before today.
	PolicyYesterday DefaultPolicy = "yesterday"
	// PolicyTrailingMonth scrapes from one month ago up to yesterday.
	PolicyTrailingMonth DefaultPolicy = "trailing-month"
)

// Errors reported while resolving a range.
var (
	ErrInvalidRange = errors.New("start date is after end date")
	ErrDateParse    = errors.New("date is not in YYYY-MM-DD format")
	ErrBadPolicy    = errors.New("default window must be yesterday or trailing-month")
)

// ParseError describes a date that could not be parsed and was replaced by
// its default.
type ParseError struct {
	Field    string
	Value    string
	Fallback time.Time
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s %q is not in YYYY-MM-DD format, using %s",
		e.Field, e.Value, e.Fallback.Format(Layout))
}

// Is lets errors.Is match a ParseError against ErrDateParse.
func (e *ParseError) Is(target error) bool {
	return target == ErrDateParse
}

// ParsePolicy validates a default window name. An empty string selects
// PolicyYesterday.
func ParsePolicy(s string) (DefaultPolicy, error) {
	switch DefaultPolicy(strings.TrimSpace(s)) {
	case "", PolicyYesterday:
		return PolicyYesterday, nil
	case PolicyTrailingMonth:
		return PolicyTrailingMonth, nil
	}
	return "", fmt.Errorf("%w: %q", ErrBadPolicy, s)
}

// Range is an inclusive span of calendar dates, both at UTC midnight.
type Range struct {
	Start time.Time
	End   time.Time
}

// Valid reports whether Start is not after End.
func (r Range) Valid() bool {
	return !r.Start.After(r.End)
}

// Days returns the number of calendar days covered, or 0 for an invalid
// range.
func (r Range) Days() int {
	if !r.Valid() {
		return 0
	}
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

func (r Range) String() string {
	return r.Start.Format(Layout) + ".." + r.End.Format(Layout)
}

// Defaults returns the start and end dates used when the user supplies none.
func Defaults(now time.Time, policy DefaultPolicy) (time.Time, time.Time) {
	yesterday := calendarDate(now).AddDate(0, 0, -1)
	if policy == PolicyTrailingMonth {
		return calendarDate(now).AddDate(0, -1, 0), yesterday
	}
	return yesterday, yesterday
}

// Resolve builds a Range from optional start and end strings. Empty strings
// take the policy default. A malformed string also takes the default and is
// reported as a *ParseError; the returned Range is still usable in that case.
// If the resolved start is after the resolved end the error matches
// ErrInvalidRange.
func Resolve(start, end string, now time.Time, policy DefaultPolicy) (Range, error) {
	defStart, defEnd := Defaults(now, policy)

	var errs []error

	startDate, err := parseOr("start date", start, defStart)
	if err != nil {
		errs = append(errs, err)
	}

	endDate, err := parseOr("end date", end, defEnd)
	if err != nil {
		errs = append(errs, err)
	}

	r := Range{Start: startDate, End: endDate}
	if !r.Valid() {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidRange, r))
	}

	return r, errors.Join(errs...)
}

// Expand returns one listing page URL per day of r, oldest first. An invalid
// range yields an empty slice and ErrInvalidRange.
func Expand(r Range, siteRoot string) ([]string, error) {
	if !r.Valid() {
		return []string{}, fmt.Errorf("%w: %s", ErrInvalidRange, r)
	}

	root := strings.TrimSuffix(siteRoot, "/")
	refs := make([]string, 0, r.Days())
	for day := r.Start; !day.After(r.End); day = day.AddDate(0, 0, 1) {
		refs = append(refs, root+"/"+day.Format(pathLayout))
	}

	return refs, nil
}

func parseOr(field, value string, fallback time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}

	parsed, err := time.Parse(Layout, value)
	if err != nil {
		return fallback, &ParseError{Field: field, Value: value, Fallback: fallback}
	}

	return parsed, nil
}

// calendarDate drops the clock part of t, keeping its local calendar day.
func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
