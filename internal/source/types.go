// Package source defines the closed vocabulary of a source evaluation:
// fetch-status taxonomy, claim relation, intended use, completeness, and
// the use-permission labels, plus the immutable FetchedDocument the
// collector hands to the core.
package source

import "fmt"

// FetchStatus classifies the outcome of resolving a URL to text.
type FetchStatus string

const (
	FetchOK          FetchStatus = "ok"
	FetchHTTPError   FetchStatus = "http_error"
	FetchTimeout     FetchStatus = "timeout"
	FetchBlocked     FetchStatus = "blocked"
	FetchPaywall     FetchStatus = "paywall"
	FetchPDF         FetchStatus = "pdf"
	FetchPDFNoParser FetchStatus = "pdf_no_parser"
	FetchXML         FetchStatus = "xml"
	FetchUnknown     FetchStatus = "unknown"
)

// HardFailure reports whether the status means no usable text came back.
// Fetchability is deliberately separate from credibility: a hard failure
// caps completeness, never the rubric score.
func (s FetchStatus) HardFailure() bool {
	switch s {
	case FetchHTTPError, FetchTimeout, FetchBlocked, FetchPaywall, FetchPDFNoParser:
		return true
	}
	return false
}

// Retrieved reports whether any text extraction was attempted successfully.
func (s FetchStatus) Retrieved() bool {
	return s == FetchOK || s == FetchPDF
}

// Relation is the source's stake in the specific claim being supported.
// It is claim-specific, not a property of the source: the same domain may
// be self for one claim and third_party for another.
type Relation string

const (
	// RelationAuto is the CLI sentinel: classify from the document.
	RelationAuto             Relation = "auto"
	RelationSelf             Relation = "self"
	RelationAdversary        Relation = "adversary"
	RelationThirdParty       Relation = "third_party"
	RelationNonPoliticalFact Relation = "non_political_fact"
	RelationUnknown          Relation = "unknown"
)

// ParseRelation validates a relation flag value.
func ParseRelation(s string) (Relation, error) {
	switch Relation(s) {
	case RelationAuto, RelationSelf, RelationAdversary, RelationThirdParty,
		RelationNonPoliticalFact, RelationUnknown:
		return Relation(s), nil
	}
	return "", fmt.Errorf("invalid relation %q (want auto|self|adversary|third_party|non_political_fact|unknown)", s)
}

// IntendedUse is what the citation is meant to do.
type IntendedUse string

const (
	UseNarrative IntendedUse = "A" // what an actor claims
	UseFactual   IntendedUse = "B" // what can be verified happened
	UseContext   IntendedUse = "C" // interpretation / background
)

// ParseIntendedUse validates a use flag value.
func ParseIntendedUse(s string) (IntendedUse, error) {
	switch IntendedUse(s) {
	case UseNarrative, UseFactual, UseContext:
		return IntendedUse(s), nil
	}
	return "", fmt.Errorf("invalid intended use %q (want A|B|C)", s)
}

// Completeness describes retrieval/extraction quality only. It is
// explicitly decoupled from how credible the source appears.
type Completeness string

const (
	CompletenessComplete Completeness = "complete"
	CompletenessPartial  Completeness = "partial"
	CompletenessFailed   Completeness = "failed"
)

// Confidence is advisory metadata derived from completeness and whether
// the judge ran. It never changes the numeric score.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// UsePermission is the closed set of output labels.
type UsePermission string

const (
	PermissionBPreferred      UsePermission = "B: Preferred evidence"
	PermissionBSafeguards     UsePermission = "B: Usable with safeguards"
	PermissionCContext        UsePermission = "C: Context-only"
	PermissionANarrative      UsePermission = "A: Narrative-only"
	PermissionManualRetrieval UsePermission = "Manual retrieval needed"
	PermissionDoNotUse        UsePermission = "Do not use"
)

// PageType classifies whether the final URL looks like the cited article
// or a listing/section page that merely links to it.
type PageType string

const (
	PageArticle PageType = "article"
	PageListing PageType = "listing"
	PageUnknown PageType = "unknown"
)

// FetchedDocument is the collector's output: normalized text plus metadata
// and the fetch-status classification. Immutable once returned to the core.
type FetchedDocument struct {
	URL           string      `json:"url"`
	FinalURL      string      `json:"final_url"`
	FetchStatus   FetchStatus `json:"fetch_status"`
	StatusCode    int         `json:"status_code"`
	ContentType   string      `json:"content_type"`
	Text          string      `json:"text"`
	Title         string      `json:"title"`
	Author        string      `json:"author"`
	PublishedDate string      `json:"published_date"`
	SiteName      string      `json:"site_name"`
	Domain        string      `json:"domain"`
	Warnings      []string    `json:"warnings,omitempty"`
}

// Resolved returns the final URL if a redirect chain completed, else the
// requested URL.
func (d *FetchedDocument) Resolved() string {
	if d.FinalURL != "" {
		return d.FinalURL
	}
	return d.URL
}
