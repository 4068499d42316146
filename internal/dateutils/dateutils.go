// Package dateutils parses the date spellings found on bank statements and
// normalizes them to ISO dates.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Date layouts seen in statement exports.
const (
	DateLayoutISO       = "2006-01-02"
	DateLayoutUS        = "01/02/2006"
	DateLayoutEuropean  = "02.01.2006"
	DateLayoutFull      = "2006-01-02 15:04:05"
	DateLayoutRFC3339   = time.RFC3339
	DateLayoutWithMonth = "2-Jan-2006"
	DateLayoutOFX       = "20060102"
)

// CommonFormats is tried in order by ParseDate. Slash dates are read as
// month first, matching North American statements.
var CommonFormats = []string{
	DateLayoutISO,
	DateLayoutUS,
	"1/2/2006",
	DateLayoutEuropean,
	DateLayoutFull,
	DateLayoutRFC3339,
	"2006-01-02T15:04:05",
	DateLayoutWithMonth,
	DateLayoutOFX,
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
	"02 Jan 2006",
}

var spaces = regexp.MustCompile(`\s+`)

// CleanDateString trims and collapses internal whitespace.
func CleanDateString(dateStr string) string {
	return spaces.ReplaceAllString(strings.TrimSpace(dateStr), " ")
}

// ParseDate tries each of CommonFormats and returns the parsed time together
// with the layout that matched.
func ParseDate(dateStr string) (time.Time, string, error) {
	dateStr = CleanDateString(dateStr)
	if dateStr == "" {
		return time.Time{}, "", fmt.Errorf("empty date")
	}
	for _, layout := range CommonFormats {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return t, layout, nil
		}
	}
	return time.Time{}, "", fmt.Errorf("unable to parse date: %s", dateStr)
}

// ToISODate formats date as YYYY-MM-DD.
func ToISODate(date time.Time) string {
	return date.Format(DateLayoutISO)
}

// NormalizeDate rewrites a parseable date as YYYY-MM-DD. Unparseable input
// comes back trimmed and unchanged.
func NormalizeDate(dateStr string) string {
	t, _, err := ParseDate(dateStr)
	if err != nil {
		return strings.TrimSpace(dateStr)
	}
	return ToISODate(t)
}

// MonthOf returns the calendar month of a date string.
func MonthOf(dateStr string) (time.Month, bool) {
	t, _, err := ParseDate(dateStr)
	if err != nil {
		return 0, false
	}
	return t.Month(), true
}

// CompareDateStrings orders two statement dates. Parseable dates sort
// chronologically and before unparseable ones, which compare as strings.
func CompareDateStrings(a, b string) int {
	ta, _, errA := ParseDate(a)
	tb, _, errB := ParseDate(b)
	switch {
	case errA == nil && errB == nil:
		return ta.Compare(tb)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	default:
		return strings.Compare(a, b)
	}
}
