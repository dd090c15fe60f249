// Package permission classifies retrieval completeness and resolves the
// final use-permission label. Completeness describes only how much of the
// source was retrievable; it is decoupled from how credible it appears.
package permission

import (
	"strings"

	"credence/internal/config"
	"credence/internal/source"
)

// AssessCompleteness classifies retrieval/extraction quality.
func AssessCompleteness(doc *source.FetchedDocument, pageType source.PageType, policy config.Policy) source.Completeness {
	text := strings.TrimSpace(doc.Text)
	if doc.FetchStatus.HardFailure() || len(text) < policy.FailedTextFloor {
		return source.CompletenessFailed
	}
	if pageType == source.PageListing || len(text) < policy.PartialTextFloor {
		return source.CompletenessPartial
	}
	return source.CompletenessComplete
}

// AssessConfidence is advisory metadata only; it never changes the score.
func AssessConfidence(c source.Completeness, judgeRan bool) source.Confidence {
	switch c {
	case source.CompletenessComplete:
		if judgeRan {
			return source.ConfidenceHigh
		}
		return source.ConfidenceMedium
	case source.CompletenessPartial:
		return source.ConfidenceMedium
	default:
		return source.ConfidenceLow
	}
}
