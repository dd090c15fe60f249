package pipeline

import (
	"credence/internal/gate"
	"credence/internal/rubric"
	"credence/internal/source"
)

// EvaluationResult is the full outcome for one source. It is created
// once per evaluation and never mutated after the resolver runs; the
// reporter only reads it.
type EvaluationResult struct {
	URL           string               `json:"url"`
	FinalURL      string               `json:"final_url,omitempty"`
	Domain        string               `json:"domain"`
	Title         string               `json:"title,omitempty"`
	FetchStatus   source.FetchStatus   `json:"fetch_status"`
	PageType      source.PageType      `json:"page_type"`
	IntendedUse   source.IntendedUse   `json:"intended_use"`
	Relation      source.Relation      `json:"relation"`
	RelationWhy   string               `json:"relation_why,omitempty"`
	Gate          gate.Decision        `json:"gate"`
	Criteria      rubric.Set           `json:"criteria,omitempty"`
	PointsScored  int                  `json:"points_scored"`
	DenomPoints   int                  `json:"denom_points"`
	HSUS          int                  `json:"hsus_0_100"`
	Completeness  source.Completeness  `json:"completeness"`
	Confidence    source.Confidence    `json:"confidence"`
	UsePermission source.UsePermission `json:"use_permission"`
	LLMUsed       bool                 `json:"llm_used"`
	LLMError      string               `json:"llm_error,omitempty"`
	EvidencePages []string             `json:"evidence_pages,omitempty"`
	WorksCited    string               `json:"works_cited,omitempty"`
	Label         string               `json:"label,omitempty"` // batch label from a works-cited file
}
