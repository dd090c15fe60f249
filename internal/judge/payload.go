package judge

import (
	"bytes"
	"encoding/json"
	"fmt"

	"credence/internal/rubric"
)

// rawCriterion mirrors the judge's per-criterion output contract before
// validation. Score stays a pointer so null survives decoding.
type rawCriterion struct {
	Score          *int     `json:"score"`
	Reason         string   `json:"reason"`
	EvidenceQuotes []string `json:"evidence_quotes"`
}

type payload struct {
	criteria map[rubric.Key]rawCriterion
	// declared totals, if the model volunteered them
	points *int
	denom  *int
}

type envelope struct {
	Criteria     map[string]json.RawMessage `json:"criteria"`
	PointsScored *int                       `json:"points_scored"`
	DenomPoints  *int                       `json:"denom_points"`
}

// cleanJSON strips markdown code fences and surrounding whitespace from
// LLM responses. Models often wrap JSON in ```json ... ``` blocks. This
// handles: ```json\n{...}\n```, ```\n{...}\n```, and bare JSON.
func cleanJSON(data []byte) []byte {
	s := bytes.TrimSpace(data)
	if len(s) == 0 {
		return s
	}

	if bytes.HasPrefix(s, []byte("```")) {
		if idx := bytes.IndexByte(s, '\n'); idx >= 0 {
			s = s[idx+1:]
		}
		if bytes.HasSuffix(s, []byte("```")) {
			s = s[:len(s)-3]
		}
		s = bytes.TrimSpace(s)
	}

	return s
}

// parsePayload decodes a judge reply. Both shapes are accepted: a
// {"criteria": {...}} envelope, and the C1..C10 keys at the top level.
func parsePayload(data []byte) (*payload, error) {
	data = cleanJSON(data)

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	raw := env.Criteria
	if raw == nil {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode criteria: %w", err)
		}
	}

	p := &payload{
		criteria: make(map[rubric.Key]rawCriterion),
		points:   env.PointsScored,
		denom:    env.DenomPoints,
	}
	for _, key := range rubric.Keys() {
		msg, ok := raw[string(key)]
		if !ok {
			continue
		}
		var rc rawCriterion
		if err := json.Unmarshal(msg, &rc); err != nil {
			return nil, fmt.Errorf("decode %s: %w", key, err)
		}
		p.criteria[key] = rc
	}
	return p, nil
}
