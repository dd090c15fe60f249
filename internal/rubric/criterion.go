// Package rubric scores a source against the ten-criterion credibility
// rubric. Each criterion is either assessed with a 0-2 score backed by
// evidence quotes, or explicitly not assessed and excluded from the
// scoring denominator.
package rubric

import "encoding/json"

// Key identifies one rubric criterion.
type Key string

const (
	OwnershipControl   Key = "C1"
	ConflictOfInterest Key = "C2"
	EvidenceStrength   Key = "C3"
	MethodTransparency Key = "C4"
	Specificity        Key = "C5"
	Corroboration      Key = "C6"
	LegalConfirmation  Key = "C7"
	TrackRecord        Key = "C8"
	Nuance             Key = "C9"
	DomainCompetence   Key = "C10"
)

// Keys returns the criteria in canonical order.
func Keys() []Key {
	return []Key{
		OwnershipControl, ConflictOfInterest, EvidenceStrength,
		MethodTransparency, Specificity, Corroboration,
		LegalConfirmation, TrackRecord, Nuance, DomainCompetence,
	}
}

// Names maps keys to human-readable criterion names for reports.
var Names = map[Key]string{
	OwnershipControl:   "Ownership/control",
	ConflictOfInterest: "Conflict of interest",
	EvidenceStrength:   "Evidence strength",
	MethodTransparency: "Method transparency",
	Specificity:        "Specificity/auditability",
	Corroboration:      "Corroboration in set",
	LegalConfirmation:  "Legal/institutional confirmation",
	TrackRecord:        "Track record/corrections",
	Nuance:             "Nuance/bias handling",
	DomainCompetence:   "Domain competence",
}

// Criterion is one rubric dimension's result. The Assessed flag is the
// authoritative sum-type tag: when false, Score is meaningless, the
// criterion is excluded from the denominator, and EvidenceQuotes is empty.
// Construct values through Assessed/NotAssessed so the invariant holds.
type Criterion struct {
	Score          int      `json:"-"`
	Assessed       bool     `json:"assessed"`
	Reason         string   `json:"reason"`
	EvidenceQuotes []string `json:"evidence_quotes"`
}

// Assessed builds a scored criterion. Scores are clamped to 0..2 and at
// most two quotes are kept.
func Assessed(score int, reason string, quotes []string) Criterion {
	if score < 0 {
		score = 0
	} else if score > 2 {
		score = 2
	}
	if len(quotes) > 2 {
		quotes = quotes[:2]
	}
	if quotes == nil {
		quotes = []string{}
	}
	return Criterion{Score: score, Assessed: true, Reason: reason, EvidenceQuotes: quotes}
}

// NotAssessed builds an unscored criterion. The reason should state why
// the evidence was insufficient.
func NotAssessed(reason string) Criterion {
	return Criterion{Assessed: false, Reason: reason, EvidenceQuotes: []string{}}
}

// MarshalJSON emits score as null for not-assessed criteria, matching the
// judge wire contract.
func (c Criterion) MarshalJSON() ([]byte, error) {
	type alias struct {
		Score          *int     `json:"score"`
		Assessed       bool     `json:"assessed"`
		Reason         string   `json:"reason"`
		EvidenceQuotes []string `json:"evidence_quotes"`
	}
	a := alias{Assessed: c.Assessed, Reason: c.Reason, EvidenceQuotes: c.EvidenceQuotes}
	if c.Assessed {
		s := c.Score
		a.Score = &s
	}
	return json.Marshal(a)
}

// UnmarshalJSON restores the Assessed tag from a nullable score.
func (c *Criterion) UnmarshalJSON(data []byte) error {
	type alias struct {
		Score          *int     `json:"score"`
		Assessed       bool     `json:"assessed"`
		Reason         string   `json:"reason"`
		EvidenceQuotes []string `json:"evidence_quotes"`
	}
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	if a.Score != nil {
		*c = Assessed(*a.Score, a.Reason, a.EvidenceQuotes)
	} else {
		*c = NotAssessed(a.Reason)
	}
	return nil
}

// Set holds all ten criteria.
type Set map[Key]Criterion
