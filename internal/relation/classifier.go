// Package relation assigns the claim-relationship label for a document:
// whether the source has a direct stake in the claim it is cited for.
package relation

import (
	"strings"

	"credence/internal/registry"
	"credence/internal/source"
)

// selfPathHints mark self-description pages, where an organization speaks
// about itself.
var selfPathHints = []string{
	"/about", "/about-us", "/who-we-are", "/mission", "/our-story",
	"/our-mission", "/what-we-do",
}

// Classify determines the relation for a document. An explicit override
// other than auto always wins. The heuristics are conservative: only
// official-control and self-description signals map to self; everything
// else stays unknown. Unknown biases the conflict-of-interest criterion
// toward skepticism, so the classifier never guesses third_party.
func Classify(doc *source.FetchedDocument, entry registry.Entry, override source.Relation) (source.Relation, string) {
	if override != "" && override != source.RelationAuto {
		return override, "explicit relation override"
	}

	domain := strings.ToLower(doc.Domain)
	if registry.OfficialDomain(domain) {
		return source.RelationSelf, "official government/military domain; claims about its own conduct are self-interested"
	}
	if entry.OfficialControl() {
		return source.RelationSelf, "registry marks domain as state/party-controlled"
	}

	path := strings.ToLower(pathOf(doc.Resolved()))
	for _, hint := range selfPathHints {
		if strings.Contains(path, hint) {
			return source.RelationSelf, "self-description page (about/mission style path)"
		}
	}

	return source.RelationUnknown, "no stake signal detected; treating relation as unknown"
}

func pathOf(rawURL string) string {
	// Cheap path split; a parse failure just yields the whole string,
	// which the hint scan handles fine.
	if i := strings.Index(rawURL, "://"); i >= 0 {
		rawURL = rawURL[i+3:]
	}
	if i := strings.IndexByte(rawURL, '/'); i >= 0 {
		return rawURL[i:]
	}
	return "/"
}
