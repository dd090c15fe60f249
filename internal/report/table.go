// Package report renders evaluation results as terminal tables, a
// Markdown report, or JSON.
package report

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"credence/internal/pipeline"
	"credence/internal/rubric"
)

// Summary renders the batch overview as a fixed-width terminal table.
func Summary(results []*pipeline.EvaluationResult) string {
	w := summaryWriter(results)
	w.SetStyle(table.StyleLight)
	return w.Render()
}

func summaryWriter(results []*pipeline.EvaluationResult) table.Writer {
	w := table.NewWriter()
	w.AppendHeader(table.Row{"#", "Source", "Index", "Complete", "Relation", "Permission"})
	w.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: 44},
		{Number: 3, Align: text.AlignRight},
		{Number: 6, WidthMax: 28},
	})
	for i, r := range results {
		name := r.Domain
		if r.Label != "" {
			name = r.Label + " " + name
		}
		index := "-"
		if r.DenomPoints > 0 {
			index = fmt.Sprintf("%d", r.HSUS)
		}
		w.AppendRow(table.Row{i + 1, name, index, r.Completeness, r.Relation, r.UsePermission})
	}
	return w
}

// criterionWriter builds the per-source criterion table.
func criterionWriter(set rubric.Set) table.Writer {
	w := table.NewWriter()
	w.AppendHeader(table.Row{"Criterion", "Score", "Reason"})
	w.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignCenter},
		{Number: 3, WidthMax: 70},
	})
	for _, key := range rubric.Keys() {
		c, ok := set[key]
		if !ok {
			continue
		}
		scoreCell := "-"
		if c.Assessed {
			scoreCell = fmt.Sprintf("%d", c.Score)
		}
		w.AppendRow(table.Row{fmt.Sprintf("%s %s", key, rubric.Names[key]), scoreCell, c.Reason})
	}
	return w
}

// truncate shortens s for table cells, appending "..." when cut.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
