package judge

import (
	"fmt"
	"strings"

	"credence/internal/evidence"
	"credence/internal/rubric"
)

// insufficiencyMarkers are the phrases a reason must contain when the
// judge declines to score, or scores without quotes. A null score with a
// confident-sounding reason is rejected: the judge may not hedge silently
// while implying certainty.
var insufficiencyMarkers = []string{
	"not assessed",
	"not assessable",
	"cannot assess",
	"cannot be assessed",
	"unable to assess",
	"insufficient",
	"no evidence",
	"no direct evidence",
	"lacks evidence",
}

func admitsInsufficiency(reason string) bool {
	low := strings.ToLower(reason)
	for _, m := range insufficiencyMarkers {
		if strings.Contains(low, m) {
			return true
		}
	}
	return false
}

// validate is the single atomic pass over a parsed payload. Any rule
// failure discards the whole payload; there is no partial acceptance.
func validate(p *payload, pack *evidence.Pack, quoteMinChars int) (rubric.Set, error) {
	set := rubric.Set{}

	for _, key := range rubric.Keys() {
		rc, ok := p.criteria[key]
		if !ok {
			return nil, fmt.Errorf("criterion %s missing", key)
		}
		if strings.TrimSpace(rc.Reason) == "" {
			return nil, fmt.Errorf("criterion %s: empty reason", key)
		}

		if rc.Score == nil {
			if !admitsInsufficiency(rc.Reason) {
				return nil, fmt.Errorf("criterion %s: null score with a confident reason", key)
			}
			set[key] = rubric.NotAssessed(rc.Reason)
			continue
		}

		if *rc.Score < 0 || *rc.Score > 2 {
			return nil, fmt.Errorf("criterion %s: score %d outside {0,1,2,null}", key, *rc.Score)
		}

		var quotes []string
		for _, q := range rc.EvidenceQuotes {
			if strings.TrimSpace(q) == "" {
				continue
			}
			norm := evidence.Normalize(q)
			if len(norm) < quoteMinChars {
				return nil, fmt.Errorf("criterion %s: quote too short to verify", key)
			}
			if !pack.Contains(q) {
				return nil, fmt.Errorf("criterion %s: quote not found in evidence pack", key)
			}
			quotes = append(quotes, q)
		}
		if len(quotes) == 0 && !admitsInsufficiency(rc.Reason) {
			return nil, fmt.Errorf("criterion %s: scored with no quotes and no insufficiency admission", key)
		}
		set[key] = rubric.Assessed(*rc.Score, rc.Reason, quotes)
	}

	// Declared totals must match a recomputation over the non-null
	// criteria exactly.
	if p.points != nil || p.denom != nil {
		points, denom := 0, 0
		for _, key := range rubric.Keys() {
			c := set[key]
			if c.Assessed {
				points += c.Score
				denom += 2
			}
		}
		if p.points != nil && *p.points != points {
			return nil, fmt.Errorf("declared points %d != recomputed %d", *p.points, points)
		}
		if p.denom != nil && *p.denom != denom {
			return nil, fmt.Errorf("declared denominator %d != recomputed %d", *p.denom, denom)
		}
	}

	return set, nil
}
