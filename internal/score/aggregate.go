// Package score merges heuristic and judge criterion sets and computes
// the normalized 0-100 index over the assessed criteria only.
package score

import (
	"fmt"
	"math"

	"credence/internal/rubric"
)

// Mode selects which scorer's values win.
type Mode string

const (
	ModeHeuristic Mode = "heuristic"
	ModeLLM       Mode = "llm"
	ModeHybrid    Mode = "hybrid"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeHeuristic, ModeLLM, ModeHybrid:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown scoring mode %q (heuristic|llm|hybrid)", s)
	}
}

// hybridPinned are the criteria the heuristic keeps in hybrid mode:
// ownership and conflict-of-interest come from the registry and the
// relation, which the judge cannot see better than we can.
var hybridPinned = map[rubric.Key]bool{
	rubric.OwnershipControl:   true,
	rubric.ConflictOfInterest: true,
}

// Merge combines the heuristic set with a validated judge set according
// to the mode. A nil judge set (judge skipped or discarded) always yields
// the heuristic values. A validated judge null replaces the heuristic
// value as not-assessed: the judge looked and declined.
func Merge(mode Mode, heuristic, judge rubric.Set) rubric.Set {
	if judge == nil || mode == ModeHeuristic {
		return heuristic
	}
	out := rubric.Set{}
	for _, key := range rubric.Keys() {
		if mode == ModeHybrid && hybridPinned[key] {
			out[key] = heuristic[key]
			continue
		}
		if c, ok := judge[key]; ok {
			out[key] = c
			continue
		}
		out[key] = heuristic[key]
	}
	return out
}

// Points sums the assessed criteria. The denominator is two points per
// assessed criterion; with nothing assessed the index is 0, not NaN.
func Points(set rubric.Set) (points, denom, hsus int) {
	for _, key := range rubric.Keys() {
		c, ok := set[key]
		if !ok || !c.Assessed {
			continue
		}
		points += c.Score
		denom += 2
	}
	if denom == 0 {
		return 0, 0, 0
	}
	hsus = int(math.Round(float64(points) / float64(denom) * 100))
	return points, denom, hsus
}
