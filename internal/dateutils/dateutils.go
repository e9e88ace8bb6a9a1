// Package dateutils parses the date formats found in bank exports.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Date layouts seen in bank CSV exports.
const (
	DateLayoutISO       = "2006-01-02"
	DateLayoutUS        = "01/02/2006"
	DateLayoutUSShort   = "1/2/2006"
	DateLayoutEuropean  = "02.01.2006"
	DateLayoutFull      = "2006-01-02 15:04:05"
	DateLayoutWithMonth = "2-Jan-2006"
)

// DefaultLayouts is tried in order when no layouts are configured. US
// layouts come before day-first ones, so 01/02/2024 is January 2nd.
var DefaultLayouts = []string{
	DateLayoutISO,
	DateLayoutUS,
	DateLayoutUSShort,
	DateLayoutFull,
	DateLayoutEuropean,
	DateLayoutWithMonth,
	"2006/01/02",
	"01-02-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	time.RFC3339,
}

var whitespace = regexp.MustCompile(`\s+`)

// ParseDate parses value with the first matching layout. An empty layouts
// slice means DefaultLayouts. It returns the parsed date and the layout
// that matched.
func ParseDate(value string, layouts []string) (time.Time, string, error) {
	if len(layouts) == 0 {
		layouts = DefaultLayouts
	}

	clean := CleanDateString(value)
	if clean == "" {
		return time.Time{}, "", fmt.Errorf("empty date")
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, clean); err == nil {
			return t, layout, nil
		}
	}
	return time.Time{}, "", fmt.Errorf("unable to parse date: %s", value)
}

// CleanDateString trims value and collapses inner whitespace.
func CleanDateString(value string) string {
	return whitespace.ReplaceAllString(strings.TrimSpace(value), " ")
}
