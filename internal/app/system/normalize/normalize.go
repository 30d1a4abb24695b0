// Package normalize holds the canonical forms for user-entered identity
// fields. Every write path and every lookup must agree on these, or
// uniqueness checks quietly stop working.
package normalize

import (
	"strings"

	"github.com/dalemusser/waffle/pantry/text"
)

// Email trims and lowercases an address. Stored emails are always in this
// form, so lookups never need a case-insensitive query.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Username trims surrounding whitespace but preserves the display casing.
// Uniqueness is enforced on the folded form (see UsernameFold).
func Username(s string) string {
	return strings.TrimSpace(s)
}

// UsernameFold returns the case-folded form used by the unique index.
func UsernameFold(s string) string {
	return text.Fold(Username(s))
}

// Title trims a movie title. The folded form backs search and sorting.
func Title(s string) string {
	return strings.TrimSpace(s)
}

// TitleFold returns the case-folded movie title.
func TitleFold(s string) string {
	return text.Fold(Title(s))
}
