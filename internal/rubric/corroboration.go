package rubric

import "regexp"

var (
	featEntity = regexp.MustCompile(`\b[A-Z][a-z]{3,}\b`)
	featNumber = regexp.MustCompile(`\b\d{2,}\b`)
	featYear   = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
)

// featureSet extracts a bounded fingerprint of a document's text:
// capitalized tokens, multi-digit numbers, and years, each family capped
// so one long document cannot dominate the overlap count. Only the first
// 6000 chars are scanned.
func featureSet(text string) map[string]struct{} {
	if len(text) > 6000 {
		text = text[:6000]
	}
	out := make(map[string]struct{})
	add := func(matches []string, cap int) {
		n := 0
		for _, m := range matches {
			if _, ok := out[m]; ok {
				continue
			}
			out[m] = struct{}{}
			n++
			if n >= cap {
				break
			}
		}
	}
	add(featEntity.FindAllString(text, -1), 80)
	add(featNumber.FindAllString(text, -1), 60)
	add(featYear.FindAllString(text, -1), 20)
	return out
}

// overlap counts features present in both sets.
func overlap(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for f := range a {
		if _, ok := b[f]; ok {
			n++
		}
	}
	return n
}
