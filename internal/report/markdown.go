package report

import (
	"fmt"
	"io"
	"time"

	"credence/internal/pipeline"
	"credence/internal/rubric"
)

// WriteMarkdown renders the full evaluation report: a summary table, then
// one section per source with the gating outcome, criterion scores,
// evidence quotes, and the resolved permission.
func WriteMarkdown(w io.Writer, results []*pipeline.EvaluationResult, generated time.Time) error {
	fmt.Fprintf(w, "# Source credibility report\n\n")
	fmt.Fprintf(w, "Generated %s. %d source(s) evaluated.\n\n", generated.Format("2006-01-02 15:04 MST"), len(results))

	fmt.Fprintln(w, summaryWriter(results).RenderMarkdown())
	fmt.Fprintln(w)

	for i, r := range results {
		title := r.Title
		if title == "" {
			title = r.Domain
		}
		fmt.Fprintf(w, "## %d. %s\n\n", i+1, title)
		fmt.Fprintf(w, "- URL: %s\n", r.URL)
		fmt.Fprintf(w, "- Fetch: %s, page type %s, completeness %s (confidence %s)\n",
			r.FetchStatus, r.PageType, r.Completeness, r.Confidence)
		fmt.Fprintf(w, "- Relation: %s (%s)\n", r.Relation, r.RelationWhy)
		if r.DenomPoints > 0 {
			fmt.Fprintf(w, "- Index: %d (%d of %d points over assessed criteria)\n",
				r.HSUS, r.PointsScored, r.DenomPoints)
		}
		if r.LLMUsed {
			fmt.Fprintf(w, "- Judge: used\n")
		} else if r.LLMError != "" {
			fmt.Fprintf(w, "- Judge: discarded (%s)\n", truncate(r.LLMError, 120))
		}
		fmt.Fprintf(w, "- **Permission: %s**\n\n", r.UsePermission)

		if len(r.Gate.Reasons) > 0 {
			fmt.Fprintf(w, "Rejected:\n")
			for _, reason := range r.Gate.Reasons {
				fmt.Fprintf(w, "- %s\n", reason)
			}
			fmt.Fprintln(w)
		}
		if r.Gate.AutoRestrict {
			fmt.Fprintf(w, "Restricted: %s\n\n", r.Gate.RestrictReason)
		}
		for _, warning := range r.Gate.Warnings {
			fmt.Fprintf(w, "> Warning: %s\n", warning)
		}
		if len(r.Gate.Warnings) > 0 {
			fmt.Fprintln(w)
		}

		if len(r.Criteria) > 0 {
			fmt.Fprintln(w, criterionWriter(r.Criteria).RenderMarkdown())
			fmt.Fprintln(w)
			writeQuotes(w, r)
		}

		if len(r.EvidencePages) > 1 {
			fmt.Fprintf(w, "Pages consulted:\n")
			for _, u := range r.EvidencePages {
				fmt.Fprintf(w, "- %s\n", u)
			}
			fmt.Fprintln(w)
		}
		if r.WorksCited != "" {
			fmt.Fprintf(w, "Citation: %s\n\n", r.WorksCited)
		}
	}
	return nil
}

func writeQuotes(w io.Writer, r *pipeline.EvaluationResult) {
	any := false
	for _, key := range rubric.Keys() {
		c, ok := r.Criteria[key]
		if !ok {
			continue
		}
		for _, q := range c.EvidenceQuotes {
			if !any {
				fmt.Fprintf(w, "Evidence quotes:\n")
				any = true
			}
			fmt.Fprintf(w, "- %s: %q\n", key, q)
		}
	}
	if any {
		fmt.Fprintln(w)
	}
}
