package evidence

import (
	"fmt"
	"strings"

	"credence/internal/source"
)

// Pack is the evidence bundle for one evaluation: the main document's
// clipped text plus up to N auxiliary pages, with the context the judge
// needs. Built once per evaluation and reused for every judge call and
// every quote-validation check.
type Pack struct {
	Text  string   // the full rendered pack
	Pages []string // URLs of the pages the pack draws from

	norm string // cached Normalize(Text)
}

// BuildContext carries the evaluation context the judge is told about.
type BuildContext struct {
	IntendedUse  source.IntendedUse
	Relation     source.Relation
	PageType     source.PageType
	Completeness source.Completeness
}

// Build assembles the pack. mainClip and auxClip bound how much text each
// page contributes.
func Build(main *source.FetchedDocument, aux []*source.FetchedDocument, ctx BuildContext, mainClip, auxClip int) *Pack {
	var b strings.Builder
	pages := []string{main.Resolved()}

	b.WriteString("=== CONTEXT ===\n")
	fmt.Fprintf(&b, "intended_use: %s\n", ctx.IntendedUse)
	fmt.Fprintf(&b, "relation: %s\n", ctx.Relation)
	fmt.Fprintf(&b, "page_type: %s\n", ctx.PageType)
	fmt.Fprintf(&b, "completeness: %s\n", ctx.Completeness)

	b.WriteString("\n=== SOURCE METADATA ===\n")
	fmt.Fprintf(&b, "URL: %s\n", main.Resolved())
	fmt.Fprintf(&b, "Domain: %s\n", main.Domain)
	fmt.Fprintf(&b, "Title: %s\n", main.Title)
	fmt.Fprintf(&b, "Author: %s\n", main.Author)
	fmt.Fprintf(&b, "Published: %s\n", main.PublishedDate)
	fmt.Fprintf(&b, "Site name: %s\n", main.SiteName)
	fmt.Fprintf(&b, "Fetch status: %s\n", main.FetchStatus)
	fmt.Fprintf(&b, "Content type: %s\n", main.ContentType)

	b.WriteString("\n=== MAIN TEXT (clipped) ===\n")
	b.WriteString(Clip(main.Text, mainClip))

	b.WriteString("\n\n=== AUX PAGES (clipped) ===\n")
	for _, p := range aux {
		fmt.Fprintf(&b, "\n--- %s ---\n", p.Resolved())
		b.WriteString(Clip(p.Text, auxClip))
		b.WriteString("\n")
		pages = append(pages, p.Resolved())
	}

	pack := &Pack{Text: b.String(), Pages: pages}
	pack.norm = Normalize(pack.Text)
	return pack
}

// Contains reports whether the quote, normalized, appears verbatim in the
// normalized pack.
func (p *Pack) Contains(quote string) bool {
	nq := Normalize(quote)
	if nq == "" {
		return false
	}
	return strings.Contains(p.norm, nq)
}
