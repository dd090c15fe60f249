package judge

import (
	"fmt"
	"strings"

	"credence/internal/evidence"
	"credence/internal/rubric"
)

func systemPrompt() string {
	return strings.TrimSpace(`
You are a strict source-credibility rater. You are given an evidence pack:
the retrieved text of one source plus auxiliary pages, with a context
header. Rate ONLY from the pack. Never use outside knowledge about the
publisher, and never invent quotes. If the pack does not support an
assessment of a criterion, score it null and say why the evidence is
insufficient.`)
}

func userPrompt(pack *evidence.Pack) string {
	var b strings.Builder
	b.WriteString("Rate the source on each criterion below with 0, 1, 2, or null.\n\n")
	for _, key := range rubric.Keys() {
		fmt.Fprintf(&b, "%s: %s\n", key, rubric.Names[key])
	}
	b.WriteString(`
Reply with JSON only, no prose, in this shape:
{"criteria": {"C1": {"score": 0, "reason": "...", "evidence_quotes": ["..."]}, ... "C10": {...}}}

Rules:
- evidence_quotes must be VERBATIM substrings of the evidence pack, each under 260 characters, at most 2 per criterion.
- A null score requires a reason stating the evidence is insufficient.
- A non-null score with no quotes requires a reason admitting insufficient evidence.

=== EVIDENCE PACK ===
`)
	b.WriteString(pack.Text)
	return b.String()
}
