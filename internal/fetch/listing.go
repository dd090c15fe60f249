package fetch

import (
	"strings"

	"credence/internal/source"
)

var listingURLHints = []string{
	"/section/", "/category/", "/tag/", "/topics/", "/topic/",
	"/search", "/archive", "/archives",
}

// ClassifyPage decides whether a page is an article or a listing/section
// page. URL path hints win; otherwise a crude link-density check: many
// links over little text is an index, not content.
func ClassifyPage(finalURL string, links int, text string) source.PageType {
	u := strings.ToLower(finalURL)
	for _, h := range listingURLHints {
		if strings.Contains(u, h) {
			return source.PageListing
		}
	}
	if links >= 80 && len(strings.TrimSpace(text)) < 1200 {
		return source.PageListing
	}
	if strings.TrimSpace(text) != "" {
		return source.PageArticle
	}
	return source.PageUnknown
}
