package rubric

import (
	"regexp"
	"strings"
)

// snippets extracts up to max bounded text windows around matches of re.
// Windows are trimmed, whitespace-normalized, capped at capChars, and
// deduplicated. These become the criterion's evidence quotes, so they
// must stay short and verbatim-recoverable from the evidence pack.
func snippets(text string, re *regexp.Regexp, max, window, capChars int) []string {
	if text == "" || re == nil {
		return nil
	}
	var out []string
	seen := make(map[string]bool)
	for _, loc := range re.FindAllStringIndex(text, max*3) {
		start := loc[0] - window
		if start < 0 {
			start = 0
		}
		end := loc[1] + window
		if end > len(text) {
			end = len(text)
		}
		// Window edges must sit on rune boundaries or the quote picks up
		// a partial rune the pack does not contain.
		for start > 0 && text[start]&0xc0 == 0x80 {
			start--
		}
		for end < len(text) && text[end]&0xc0 == 0x80 {
			end++
		}
		q := strings.Join(strings.Fields(text[start:end]), " ")
		if len(q) > capChars {
			// Trim on a word boundary, without an ellipsis: quotes must
			// stay literal substrings of the evidence they came from.
			cut := strings.LastIndexByte(q[:capChars], ' ')
			if cut <= 0 {
				cut = capChars
				for cut > 0 && q[cut]&0xc0 == 0x80 {
					cut--
				}
			}
			q = q[:cut]
		}
		if q == "" || seen[q] {
			continue
		}
		seen[q] = true
		out = append(out, q)
		if len(out) >= max {
			break
		}
	}
	return out
}
