package fetch

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// pageMeta is everything extraction pulls from one HTML page.
type pageMeta struct {
	Text      string
	Title     string
	Author    string
	Published string
	SiteName  string
	Links     int      // anchor count before noise stripping, for listing detection
	Hrefs     []string // anchor targets, for policy-link discovery
}

const maxHrefs = 300

var noiseSelectors = "script, style, noscript, nav, header, footer, aside, form, iframe"

// extractHTML pulls the main text and metadata from a parsed page.
// Extraction order: JSON-LD articleBody, then <article>/<main>, then the
// noise-stripped body.
func extractHTML(doc *goquery.Document) pageMeta {
	anchors := doc.Find("a[href]")
	m := pageMeta{
		Links:    anchors.Length(),
		Title:    strings.TrimSpace(doc.Find("title").First().Text()),
		SiteName: metaContent(doc, `meta[property="og:site_name"]`, `meta[name="application-name"]`),
		Author:   metaContent(doc, `meta[name="author"]`, `meta[property="article:author"]`),
		Published: metaContent(doc,
			`meta[property="article:published_time"]`, `meta[name="pubdate"]`, `meta[name="date"]`),
	}
	if og := metaContent(doc, `meta[property="og:title"]`); og != "" {
		m.Title = og
	}
	anchors.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if href, ok := s.Attr("href"); ok {
			m.Hrefs = append(m.Hrefs, href)
		}
		return len(m.Hrefs) < maxHrefs
	})

	if body, meta := jsonLDArticle(doc); body != "" {
		m.Text = body
		if m.Author == "" {
			m.Author = meta.Author
		}
		if m.Published == "" {
			m.Published = meta.Published
		}
		return m
	}

	for _, sel := range []string{"article", "main"} {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		node.Find(noiseSelectors).Remove()
		if text := collapseLines(node.Text()); len(text) >= 250 {
			m.Text = text
			return m
		}
	}

	body := doc.Find("body").First()
	body.Find(noiseSelectors).Remove()
	m.Text = collapseLines(body.Text())
	return m
}

func metaContent(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if v, ok := doc.Find(sel).First().Attr("content"); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// jsonLDArticle looks for an Article-typed JSON-LD block with an
// articleBody. Sites that render body text client-side often still ship
// the full text here.
func jsonLDArticle(doc *goquery.Document) (string, pageMeta) {
	var body string
	var meta pageMeta
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var obj map[string]any
		if err := json.Unmarshal([]byte(s.Text()), &obj); err != nil {
			return true
		}
		ab, _ := obj["articleBody"].(string)
		if strings.TrimSpace(ab) == "" {
			return true
		}
		body = collapseLines(ab)
		if d, ok := obj["datePublished"].(string); ok {
			meta.Published = d
		}
		switch a := obj["author"].(type) {
		case map[string]any:
			if name, ok := a["name"].(string); ok {
				meta.Author = name
			}
		case string:
			meta.Author = a
		}
		return false
	})
	return body, meta
}

// collapseLines trims each line and drops the empty ones, keeping line
// structure for the downstream pattern scans.
func collapseLines(s string) string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
