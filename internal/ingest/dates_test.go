package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{name: "iso", raw: "2024-03-05", expected: "2024-03-05"},
		{name: "day first with dashes", raw: "05-03-2024", expected: "2024-03-05"},
		{name: "day first with slashes", raw: "05/03/2024", expected: "2024-03-05"},
		{name: "month first when day first is impossible", raw: "03/25/2024", expected: "2024-03-25"},
		{name: "year first with slashes", raw: "2024/03/05", expected: "2024-03-05"},
		{name: "abbreviated month", raw: "05-Mar-2024", expected: "2024-03-05"},
		{name: "unpadded", raw: "5/3/2024", expected: "2024-03-05"},
		{name: "surrounding whitespace", raw: "  2024-03-05 ", expected: "2024-03-05"},
		{name: "unparseable falls back to trimmed raw", raw: " yesterday ", expected: "yesterday"},
		{name: "empty", raw: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseDate(tt.raw))
		})
	}
}
