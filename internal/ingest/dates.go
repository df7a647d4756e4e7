package ingest

import (
	"strings"
	"time"
)

// dateLayouts are tried in order. Non-padded layouts also accept padded
// values, so "5/3/2024" and "05/03/2024" both parse.
var dateLayouts = []string{
	"2006-1-2",
	"2-1-2006",
	"2/1/2006",
	"1/2/2006",
	"2006/1/2",
	"2-Jan-2006",
}

// ParseDate converts a statement date to YYYY-MM-DD. Day-first layouts win
// over month-first ones for ambiguous dates. When no layout matches, the
// trimmed input is returned unchanged.
func ParseDate(raw string) string {
	value := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(time.DateOnly)
		}
	}
	return value
}
