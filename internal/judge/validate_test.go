package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"credence/internal/config"
	"credence/internal/evidence"
	"credence/internal/rubric"
	"credence/internal/source"
)

const packBody = "The court convicted the defendant on 12 March 2024 in Vilnius. " +
	"Officials said the ruling was final and the sentence would stand."

func testPack() *evidence.Pack {
	main := &source.FetchedDocument{
		URL:         "https://news.example/article",
		FetchStatus: source.FetchOK,
		Domain:      "news.example",
		Title:       "Court ruling",
		Text:        packBody,
	}
	return evidence.Build(main, nil, evidence.BuildContext{
		IntendedUse:  source.UseFactual,
		Relation:     source.RelationThirdParty,
		PageType:     source.PageArticle,
		Completeness: source.CompletenessComplete,
	}, 14000, 4500)
}

// goodReply builds a complete, valid ten-criterion reply. Criteria score 1
// with an insufficiency admission so no quotes are required; C3 carries a
// real quote from the pack.
func goodReply(t *testing.T) string {
	t.Helper()
	criteria := map[string]any{}
	for _, key := range rubric.Keys() {
		criteria[string(key)] = map[string]any{
			"score":           1,
			"reason":          "Partial signals; evidence is insufficient for a higher score.",
			"evidence_quotes": []string{},
		}
	}
	criteria["C3"] = map[string]any{
		"score":           2,
		"reason":          "Court outcome described directly.",
		"evidence_quotes": []string{"The court convicted the defendant"},
	}
	out, err := json.Marshal(map[string]any{"criteria": criteria})
	if err != nil {
		t.Fatal(err)
	}
	return string(out)
}

func mutateReply(t *testing.T, reply string, key string, c map[string]any) string {
	t.Helper()
	var env map[string]map[string]json.RawMessage
	if err := json.Unmarshal([]byte(reply), &env); err != nil {
		t.Fatal(err)
	}
	raw, err := json.Marshal(c)
	if err != nil {
		t.Fatal(err)
	}
	env["criteria"][key] = raw
	out, err := json.Marshal(env)
	if err != nil {
		t.Fatal(err)
	}
	return string(out)
}

func mustValidate(t *testing.T, reply string) rubric.Set {
	t.Helper()
	p, err := parsePayload([]byte(reply))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	set, err := validate(p, testPack(), 6)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	return set
}

func mustReject(t *testing.T, reply, wantSubstr string) {
	t.Helper()
	p, err := parsePayload([]byte(reply))
	if err != nil {
		return // parse-level rejection also counts
	}
	_, err = validate(p, testPack(), 6)
	if err == nil {
		t.Fatalf("payload accepted, want rejection containing %q", wantSubstr)
	}
	if !strings.Contains(err.Error(), wantSubstr) {
		t.Fatalf("rejection %q does not mention %q", err, wantSubstr)
	}
}

func TestValidPayloadAccepted(t *testing.T) {
	set := mustValidate(t, goodReply(t))
	c3 := set[rubric.EvidenceStrength]
	if !c3.Assessed || c3.Score != 2 || len(c3.EvidenceQuotes) != 1 {
		t.Errorf("C3 = %+v, want assessed score 2 with one quote", c3)
	}
}

func TestMissingCriterionRejectsWholePayload(t *testing.T) {
	var env map[string]map[string]json.RawMessage
	if err := json.Unmarshal([]byte(goodReply(t)), &env); err != nil {
		t.Fatal(err)
	}
	delete(env["criteria"], "C7")
	out, _ := json.Marshal(env)
	mustReject(t, string(out), "C7 missing")
}

func TestScoreOutsideDomainRejects(t *testing.T) {
	reply := mutateReply(t, goodReply(t), "C5", map[string]any{
		"score": 3, "reason": "great", "evidence_quotes": []string{},
	})
	mustReject(t, reply, "outside")
}

func TestNullScoreNeedsInsufficiencyReason(t *testing.T) {
	confident := mutateReply(t, goodReply(t), "C8", map[string]any{
		"score": nil, "reason": "The publisher clearly corrects errors.", "evidence_quotes": []string{},
	})
	mustReject(t, confident, "confident")

	honest := mutateReply(t, goodReply(t), "C8", map[string]any{
		"score": nil, "reason": "Not assessed: insufficient corrections evidence in the pack.", "evidence_quotes": []string{},
	})
	set := mustValidate(t, honest)
	if set[rubric.TrackRecord].Assessed {
		t.Errorf("C8 = %+v, want not assessed", set[rubric.TrackRecord])
	}
}

func TestScoreWithoutQuotesNeedsAdmission(t *testing.T) {
	silent := mutateReply(t, goodReply(t), "C9", map[string]any{
		"score": 2, "reason": "Excellent nuance throughout.", "evidence_quotes": []string{},
	})
	mustReject(t, silent, "no quotes")
}

func TestFabricatedQuoteRejectsWholePayload(t *testing.T) {
	fabricated := mutateReply(t, goodReply(t), "C3", map[string]any{
		"score": 2, "reason": "Direct evidence.", "evidence_quotes": []string{"The jury awarded ten million dollars"},
	})
	mustReject(t, fabricated, "not found in evidence pack")
}

func TestQuoteSurvivesNormalization(t *testing.T) {
	// Case differs from the pack; casefold must neutralize it.
	lower := mutateReply(t, goodReply(t), "C3", map[string]any{
		"score": 2, "reason": "Direct evidence.", "evidence_quotes": []string{"the court convicted the defendant"},
	})
	set := mustValidate(t, lower)
	if !set[rubric.EvidenceStrength].Assessed {
		t.Fatal("C3 should be assessed")
	}

	// NBSP between words where the pack has a plain space.
	nbsp := mutateReply(t, goodReply(t), "C3", map[string]any{
		"score": 2, "reason": "Direct evidence.", "evidence_quotes": []string{"Officials\u00a0said the ruling was final"},
	})
	set = mustValidate(t, nbsp)
	if !set[rubric.EvidenceStrength].Assessed {
		t.Fatal("NBSP in quote should normalize away")
	}

	// Same sentence with an extra word is not in the pack.
	extra := mutateReply(t, goodReply(t), "C3", map[string]any{
		"score": 2, "reason": "Direct evidence.", "evidence_quotes": []string{"Officials definitely said the ruling was final"},
	})
	mustReject(t, extra, "not found in evidence pack")
}

func TestDeclaredTotalsMustMatch(t *testing.T) {
	var env map[string]json.RawMessage
	if err := json.Unmarshal([]byte(goodReply(t)), &env); err != nil {
		t.Fatal(err)
	}
	// goodReply: nine criteria at 1 plus C3 at 2 = 11 points, denom 20.
	env["points_scored"] = json.RawMessage("11")
	env["denom_points"] = json.RawMessage("20")
	out, _ := json.Marshal(env)
	mustValidate(t, string(out))

	env["points_scored"] = json.RawMessage("15")
	out, _ = json.Marshal(env)
	mustReject(t, string(out), "recomputed")
}

func TestBareCriterionKeysAccepted(t *testing.T) {
	var env map[string]map[string]json.RawMessage
	if err := json.Unmarshal([]byte(goodReply(t)), &env); err != nil {
		t.Fatal(err)
	}
	out, _ := json.Marshal(env["criteria"])
	set := mustValidate(t, string(out))
	if len(set) != 10 {
		t.Errorf("bare keys: got %d criteria, want 10", len(set))
	}
}

func TestMarkdownFencesStripped(t *testing.T) {
	fenced := "```json\n" + goodReply(t) + "\n```"
	mustValidate(t, fenced)
}

func TestJudgeRetriesThenSucceeds(t *testing.T) {
	stub := &StubBackend{
		Replies: []string{"", goodReply(t)},
		Errs:    []error{fmt.Errorf("transient"), nil},
	}
	j := New(stub, config.Judge{TimeoutSeconds: 5, MaxRetries: 2}, config.Default().Policy)
	set, err := j.Score(context.Background(), testPack())
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if stub.Calls() != 2 {
		t.Errorf("calls = %d, want 2", stub.Calls())
	}
	if len(set) != 10 {
		t.Errorf("got %d criteria, want 10", len(set))
	}
}

func TestJudgeExhaustsRetries(t *testing.T) {
	stub := &StubBackend{
		Replies: []string{"not json", "not json", "not json"},
	}
	j := New(stub, config.Judge{TimeoutSeconds: 5, MaxRetries: 2}, config.Default().Policy)
	_, err := j.Score(context.Background(), testPack())
	if err == nil {
		t.Fatal("want error after exhausted retries")
	}
	if stub.Calls() != 3 {
		t.Errorf("calls = %d, want 3", stub.Calls())
	}
}
