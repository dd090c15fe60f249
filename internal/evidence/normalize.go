// Package evidence builds the bounded text bundle a judge or validator is
// restricted to, and owns the normalization under which quotes are
// compared against it.
package evidence

import "strings"

var normReplacer = strings.NewReplacer(
	"‘", "'", // left single quote
	"’", "'", // right single quote
	"“", `"`, // left double quote
	"”", `"`, // right double quote
	" ", " ", // non-breaking space
	"–", "-", // en dash
	"—", "-", // em dash
)

// Normalize canonicalizes text for quote matching: smart quotes to
// straight quotes, NBSP to space, em/en dashes to hyphens, whitespace
// collapsed, case folded. A quote is "verbatim" iff its normalization is
// a substring of the normalized pack.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = normReplacer.Replace(s)
	s = strings.Join(strings.Fields(s), " ")
	return strings.ToLower(s)
}

// Clip truncates s to at most n bytes, on a rune boundary.
func Clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && s[n]&0xc0 == 0x80 {
		n--
	}
	return s[:n]
}
