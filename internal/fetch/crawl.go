package fetch

import (
	"context"
	"net/url"
	"strings"

	"credence/internal/source"
)

// crawlPaths are the standard policy/about locations probed on every
// evaluated site. Ownership, standards, and corrections evidence lives
// on these pages, not in the cited article.
var crawlPaths = []string{
	"/about", "/about-us", "/who-we-are", "/mission", "/history", "/our-story",
	"/contact", "/contact-us",
	"/editorial-policy", "/ethics", "/standards", "/values", "/principles",
	"/methods", "/methodology",
	"/corrections", "/correction", "/retractions",
	"/terms", "/privacy", "/policies",
}

// policyLinkTokens mark on-page links worth following when the standard
// paths come up empty; sites hide their policy pages behind footer links
// with these words.
var policyLinkTokens = []string{
	"about", "mission", "who-we-are", "our-story", "ethics", "standards",
	"editorial", "corrections", "retractions", "methodology", "funding",
	"ownership", "masthead",
}

const minAuxChars = 150

// Crawl probes a site's policy pages: the fixed path list first, then
// policy-looking links found on the main page. Pages are kept only when
// actually retrieved with enough text to scan; the total is capped by
// config.
func (c *Client) Crawl(ctx context.Context, main Result) []*source.FetchedDocument {
	if main.Doc == nil || main.Doc.Resolved() == "" || c.cfg.MaxAuxPages <= 0 {
		return nil
	}
	base, err := url.Parse(main.Doc.Resolved())
	if err != nil {
		return nil
	}
	root := base.Scheme + "://" + base.Host

	seen := map[string]bool{main.Doc.Resolved(): true}
	var pages []*source.FetchedDocument

	try := func(candidate string) bool {
		if seen[candidate] {
			return len(pages) < c.cfg.MaxAuxPages
		}
		seen[candidate] = true
		res, err := c.Fetch(ctx, candidate)
		if err != nil {
			return true
		}
		doc := res.Doc
		if doc.FetchStatus.Retrieved() && len(doc.Text) > minAuxChars && !seen[doc.Resolved()] {
			seen[doc.Resolved()] = true
			pages = append(pages, doc)
		}
		return len(pages) < c.cfg.MaxAuxPages
	}

	for _, path := range crawlPaths {
		if !try(root + path) {
			return pages
		}
	}
	for _, link := range discoverPolicyLinks(base, main.Hrefs, 12) {
		if !try(link) {
			return pages
		}
	}
	return pages
}

// discoverPolicyLinks filters the main page's anchor targets down to
// same-host links whose path contains a policy token.
func discoverPolicyLinks(base *url.URL, hrefs []string, max int) []string {
	var out []string
	seen := map[string]bool{}
	for _, href := range hrefs {
		u, err := base.Parse(href)
		if err != nil || u.Host != base.Host {
			continue
		}
		path := strings.ToLower(u.Path)
		match := false
		for _, tok := range policyLinkTokens {
			if strings.Contains(path, tok) {
				match = true
				break
			}
		}
		if !match {
			continue
		}
		u.Fragment = ""
		s := u.String()
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
		if len(out) >= max {
			break
		}
	}
	return out
}
