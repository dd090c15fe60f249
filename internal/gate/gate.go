// Package gate runs the pre-scoring rules that can reject a source
// outright or restrict it to narrative use. Rules are independent checks,
// not a priority cascade: every matching rule contributes its reason, and
// auto-reject is the OR of all reject-triggering rules.
package gate

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"credence/internal/config"
	"credence/internal/registry"
	"credence/internal/source"
)

//go:embed keywords.yaml
var keywordsYAML []byte

type keywordSets struct {
	SatireDomains   []string `yaml:"satire_domains"`
	SatireKeywords  []string `yaml:"satire_keywords"`
	KnownBadDomains []string `yaml:"known_bad_domains"`
	SpamKeywords    []string `yaml:"spam_keywords"`
}

// Engine evaluates the gating rules against a fetched document. The
// registry is injected and read-only.
type Engine struct {
	reg    *registry.Registry
	policy config.Policy

	satireDomains map[string]bool
	satireWords   []string
	knownBad      map[string]bool
	spamPattern   *regexp.Regexp
}

// NewEngine builds an engine from the embedded keyword sets.
func NewEngine(reg *registry.Registry, policy config.Policy) *Engine {
	var kw keywordSets
	if err := yaml.Unmarshal(keywordsYAML, &kw); err != nil {
		panic(fmt.Sprintf("load gate keywords.yaml: %v", err))
	}
	e := &Engine{
		reg:           reg,
		policy:        policy,
		satireDomains: toSet(kw.SatireDomains),
		satireWords:   kw.SatireKeywords,
		knownBad:      toSet(kw.KnownBadDomains),
	}
	if len(kw.SpamKeywords) > 0 {
		parts := make([]string, len(kw.SpamKeywords))
		for i, k := range kw.SpamKeywords {
			parts[i] = regexp.QuoteMeta(k)
		}
		e.spamPattern = regexp.MustCompile(`\b(` + strings.Join(parts, "|") + `)\b`)
	}
	return e
}

func toSet(items []string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, s := range items {
		m[strings.ToLower(s)] = true
	}
	return m
}

// rejectableStatuses are the HTTP codes that mean the cited content is
// truly gone, not merely hard to fetch.
var unretrievableCodes = map[int]bool{404: true, 410: true, 451: true}

// Evaluate runs every gating rule and returns the accumulated decision.
// It never fails: a malformed document just accumulates warnings.
func (e *Engine) Evaluate(main *source.FetchedDocument, aux []*source.FetchedDocument, rel source.Relation, pageType source.PageType) Decision {
	var d Decision
	domain := strings.ToLower(main.Domain)
	entry := e.reg.Lookup(domain)

	combined := e.combinedText(main, aux)

	// True-unretrievable. Other fetch failures are warnings only:
	// fetchability is not credibility.
	if main.FetchStatus == source.FetchHTTPError && unretrievableCodes[main.StatusCode] {
		d.Reasons = append(d.Reasons, fmt.Sprintf("Unretrievable (HTTP %d).", main.StatusCode))
		d.AutoReject = true
	}

	// Satire / parody.
	if e.satireDomains[domain] || entry.SatirePublisher {
		d.Reasons = append(d.Reasons, "Satire/parody publisher.")
		d.AutoReject = true
	}
	if (strings.Contains(combined, "satire") || strings.Contains(combined, "parody")) && containsAny(combined, e.satireWords) {
		d.Reasons = append(d.Reasons, "Page indicates satire/parody/entertainment-only content.")
		d.AutoReject = true
	}

	// Known-bad domain.
	if e.knownBad[domain] || entry.KnownBad {
		d.Reasons = append(d.Reasons, "Known bad/misinfo/spam domain.")
		d.AutoReject = true
	}

	// Spam/synthetic content: weighted multi-signal. A single weak signal
	// (thin text, missing title) must never reject on its own, and
	// official domains are exempt so legitimate minimal-content pages
	// survive.
	signals := 0
	if len(main.Text) < e.policy.ThinBodyChars {
		signals++
	}
	if main.Title == "" {
		signals++
	}
	if len(aux) == 0 {
		signals++
	}
	if e.spamPattern != nil && e.spamPattern.MatchString(combined) {
		signals += 2
	}
	if signals >= e.policy.SpamSignalThreshold && !registry.OfficialDomain(domain) {
		d.Reasons = append(d.Reasons, fmt.Sprintf("Likely spam/synthetic content (%d weighted signals).", signals))
		d.AutoReject = true
	}

	// Self-interest restriction: non-terminal. The source is still scored;
	// the resolver caps its recommendation.
	if rel == source.RelationSelf && (entry.OfficialControl() || registry.OfficialDomain(domain)) {
		d.AutoRestrict = true
		d.RestrictReason = "State/party/official-controlled source speaking about itself: usable as narrative (A) only, not as independent factual proof."
	}

	// Non-fatal warnings.
	if pageType == source.PageListing {
		d.Warnings = append(d.Warnings, "Final URL appears to be a listing/section page; may not be the cited article.")
	}
	switch main.FetchStatus {
	case source.FetchTimeout, source.FetchBlocked, source.FetchPaywall, source.FetchPDFNoParser:
		d.Warnings = append(d.Warnings, fmt.Sprintf("Fetch incomplete (%s); manual retrieval recommended.", main.FetchStatus))
	}
	if main.FetchStatus == source.FetchOK && len(strings.TrimSpace(main.Text)) < e.policy.PartialTextFloor {
		d.Warnings = append(d.Warnings, "Thin extracted text; page may be JS-rendered or extraction incomplete.")
	}

	return d
}

// combinedText joins title, site name, and clipped page bodies for keyword
// scans, lowercased.
func (e *Engine) combinedText(main *source.FetchedDocument, aux []*source.FetchedDocument) string {
	parts := []string{main.Title, main.SiteName, clip(main.Text, 3000)}
	for i, p := range aux {
		if i >= 2 {
			break
		}
		parts = append(parts, clip(p.Text, 1200))
	}
	return strings.ToLower(strings.Join(parts, " "))
}

func clip(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
