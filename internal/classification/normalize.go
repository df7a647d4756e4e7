// Package classification turns bank narrations into categories using an
// ordered keyword taxonomy.
package classification

import (
	"regexp"
	"strings"
)

// Reference numbers appended to narrations, e.g. "ORDER-110889182110". Bare
// digit runs are kept: UPI narrations carry the only distinguishing
// reference there.
var referenceSuffix = regexp.MustCompile(`-\d{6,}`)

// Normalize canonicalises a narration: uppercase, hyphenated reference
// numbers stripped, whitespace collapsed and trimmed. It never fails and is
// idempotent.
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	s = strings.ToUpper(s)
	s = referenceSuffix.ReplaceAllString(s, "")

	return strings.Join(strings.Fields(s), " ")
}

// NormalizePtr is Normalize for optional narrations; nil yields "".
func NormalizePtr(s *string) string {
	if s == nil {
		return ""
	}
	return Normalize(*s)
}
