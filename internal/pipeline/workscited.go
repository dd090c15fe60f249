package pipeline

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"credence/internal/source"
)

// ParseWorksCited reads a works-cited file: one source per line, either a
// bare URL or "LABEL<TAB>citation text containing a URL". Blank lines and
// '#' comments are skipped.
func ParseWorksCited(path string, use source.IntendedUse) ([]Request, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open works-cited file: %w", err)
	}
	defer f.Close()

	var reqs []Request
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		label, rest := "", line
		if i := strings.IndexByte(line, '\t'); i >= 0 {
			label, rest = strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+1:])
		}
		u := firstURL(rest)
		if u == "" {
			continue
		}
		reqs = append(reqs, Request{
			URL:      u,
			Use:      use,
			Relation: source.RelationAuto,
			Label:    label,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read works-cited file: %w", err)
	}
	return reqs, nil
}

// firstURL pulls the first http(s) URL out of a citation line, trimming
// trailing citation punctuation.
func firstURL(s string) string {
	for _, tok := range strings.Fields(s) {
		if !strings.HasPrefix(tok, "http://") && !strings.HasPrefix(tok, "https://") {
			continue
		}
		return strings.TrimRight(tok, ".,;)\"'")
	}
	return ""
}

// FormatWorksCited renders a citation entry for the document, filling the
// gaps the way a bibliography does.
func FormatWorksCited(doc *source.FetchedDocument, accessed time.Time) string {
	author := strings.TrimSpace(doc.Author)
	if author == "" {
		author = "Unknown author"
	}
	title := strings.TrimSpace(doc.Title)
	if title == "" {
		title = "Untitled"
	}
	site := strings.TrimSpace(doc.SiteName)
	if site == "" {
		site = doc.Domain
	}
	date := strings.TrimSpace(doc.PublishedDate)
	if date == "" {
		date = "n.d."
	}
	return fmt.Sprintf("%s. %q %s, %s. %s (accessed %s).",
		author, title, site, date, doc.Resolved(), accessed.Format("2006-01-02"))
}
