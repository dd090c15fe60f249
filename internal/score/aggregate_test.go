package score

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"credence/internal/rubric"
)

func fullSet(score int) rubric.Set {
	set := rubric.Set{}
	for _, key := range rubric.Keys() {
		set[key] = rubric.Assessed(score, "test", nil)
	}
	return set
}

func TestPointsNormalizesOverAssessedOnly(t *testing.T) {
	set := fullSet(2)
	points, denom, hsus := Points(set)
	if points != 20 || denom != 20 || hsus != 100 {
		t.Errorf("all twos: got %d/%d=%d, want 20/20=100", points, denom, hsus)
	}

	set[rubric.Corroboration] = rubric.NotAssessed("single source")
	set[rubric.TrackRecord] = rubric.NotAssessed("no evidence")
	points, denom, hsus = Points(set)
	if points != 16 || denom != 16 || hsus != 100 {
		t.Errorf("two not assessed: got %d/%d=%d, want 16/16=100", points, denom, hsus)
	}
}

func TestPointsRounding(t *testing.T) {
	set := fullSet(1)
	set[rubric.EvidenceStrength] = rubric.Assessed(2, "t", nil)
	// 11 of 20 -> 55
	_, _, hsus := Points(set)
	if hsus != 55 {
		t.Errorf("hsus = %d, want 55", hsus)
	}
}

func TestPointsNothingAssessed(t *testing.T) {
	set := rubric.Set{}
	for _, key := range rubric.Keys() {
		set[key] = rubric.NotAssessed("nothing")
	}
	points, denom, hsus := Points(set)
	if points != 0 || denom != 0 || hsus != 0 {
		t.Errorf("empty denominator: got %d/%d=%d, want 0/0=0", points, denom, hsus)
	}
}

func TestMergeHeuristicModeIgnoresJudge(t *testing.T) {
	h, j := fullSet(1), fullSet(2)
	got := Merge(ModeHeuristic, h, j)
	if diff := cmp.Diff(h, got); diff != "" {
		t.Errorf("heuristic mode diff (-want +got):\n%s", diff)
	}
}

func TestMergeNilJudgeFallsBack(t *testing.T) {
	h := fullSet(1)
	got := Merge(ModeLLM, h, nil)
	if diff := cmp.Diff(h, got); diff != "" {
		t.Errorf("nil judge diff (-want +got):\n%s", diff)
	}
}

func TestMergeHybridPinsOwnershipAndConflict(t *testing.T) {
	h, j := fullSet(0), fullSet(2)
	got := Merge(ModeHybrid, h, j)
	if got[rubric.OwnershipControl].Score != 0 || got[rubric.ConflictOfInterest].Score != 0 {
		t.Errorf("C1/C2 must stay heuristic in hybrid: %+v / %+v",
			got[rubric.OwnershipControl], got[rubric.ConflictOfInterest])
	}
	if got[rubric.EvidenceStrength].Score != 2 {
		t.Errorf("C3 must come from judge in hybrid: %+v", got[rubric.EvidenceStrength])
	}
}

func TestMergeJudgeNullReplacesHeuristic(t *testing.T) {
	h, j := fullSet(2), fullSet(2)
	j[rubric.TrackRecord] = rubric.NotAssessed("insufficient corrections evidence")
	got := Merge(ModeLLM, h, j)
	if got[rubric.TrackRecord].Assessed {
		t.Errorf("validated judge null must stay not-assessed: %+v", got[rubric.TrackRecord])
	}
}

func TestParseMode(t *testing.T) {
	for _, ok := range []string{"heuristic", "llm", "hybrid"} {
		if _, err := ParseMode(ok); err != nil {
			t.Errorf("ParseMode(%q): %v", ok, err)
		}
	}
	if _, err := ParseMode("vibes"); err == nil {
		t.Error("ParseMode should reject unknown modes")
	}
}
