// Package fetch is the evidence collector: it retrieves URLs, extracts
// text and metadata, classifies fetch failures, and crawls a site's
// policy pages. Fetch failures are data in the returned document, never
// errors; fetchability and credibility stay separate concerns.
package fetch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"credence/internal/config"
	"credence/internal/logging"
	"credence/internal/registry"
	"credence/internal/source"
)

const maxBodyBytes = 3 << 20 // per-response read cap

var paywallHints = []string{
	"subscribe to continue", "subscribe now", "sign in to continue",
	"membership required", "register to continue", "start your subscription",
}

var botblockHints = []string{
	"verify you are human", "captcha", "cloudflare", "unusual traffic",
	"access denied", "request blocked", "bot detection", "ddos protection",
}

// Client fetches and extracts documents. The optional cache short-circuits
// repeat fetches; a nil cache just fetches every time.
type Client struct {
	http  *http.Client
	cfg   config.Fetch
	cache *Cache
	log   *slog.Logger

	mu   sync.Mutex // guards last; batch evaluations fetch concurrently
	last time.Time  // politeness clock
}

func NewClient(cfg config.Fetch, cache *Cache) *Client {
	return &Client{
		http: &http.Client{
			Timeout: cfg.ReadTimeout(),
		},
		cfg:   cfg,
		cache: cache,
		log:   logging.New("fetch"),
	}
}

// Result is one fetch plus the page-level detail the document itself
// does not carry: the page-type classification and the raw link targets
// used for policy-link discovery.
type Result struct {
	Doc      *source.FetchedDocument
	PageType source.PageType
	Hrefs    []string
}

// Fetch retrieves one URL. The returned document always has a fetch
// status; network and parse failures are encoded there, and the error
// return is reserved for programmer mistakes (bad URL syntax).
func (c *Client) Fetch(ctx context.Context, rawURL string) (Result, error) {
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return Result{}, err
	}
	if c.cache != nil {
		if doc, ok := c.cache.Get(rawURL); ok {
			c.log.Debug("cache hit", "url", rawURL)
			return Result{Doc: doc, PageType: c.classify(doc, 0)}, nil
		}
	}

	c.sleep()
	doc, meta := c.fetchOnce(ctx, rawURL)
	doc.Domain = registry.RegistrableDomain(doc.Resolved())

	if c.cache != nil {
		if err := c.cache.Put(rawURL, doc); err != nil {
			c.log.Warn("cache write failed", "url", rawURL, "error", err)
		}
	}
	return Result{Doc: doc, PageType: c.classify(doc, meta.Links), Hrefs: meta.Hrefs}, nil
}

// classify never calls a listing a PDF or a feed; those are always the
// content itself. Cached documents lose the link count, so only URL
// hints and text length apply there.
func (c *Client) classify(doc *source.FetchedDocument, links int) source.PageType {
	if doc.FetchStatus == source.FetchPDF || doc.FetchStatus == source.FetchXML {
		return source.PageArticle
	}
	return ClassifyPage(doc.Resolved(), links, doc.Text)
}

// sleep enforces the politeness delay. Holding the lock across the wait
// serializes concurrent fetchers, so a batch run still spaces requests
// out rather than stampeding after a shared wake-up.
func (c *Client) sleep() {
	if c.cfg.SleepMillis <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	wait := time.Duration(c.cfg.SleepMillis)*time.Millisecond - time.Since(c.last)
	if wait > 0 {
		time.Sleep(wait)
	}
	c.last = time.Now()
}

func (c *Client) fetchOnce(ctx context.Context, rawURL string) (*source.FetchedDocument, pageMeta) {
	doc := &source.FetchedDocument{URL: rawURL, FetchStatus: source.FetchUnknown}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		doc.FetchStatus = source.FetchHTTPError
		doc.Warnings = append(doc.Warnings, "request build failed: "+err.Error())
		return doc, pageMeta{}
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			doc.FetchStatus = source.FetchTimeout
		} else {
			doc.FetchStatus = source.FetchHTTPError
		}
		doc.Warnings = append(doc.Warnings, "fetch failed: "+err.Error())
		return doc, pageMeta{}
	}
	defer resp.Body.Close()

	doc.FinalURL = resp.Request.URL.String()
	doc.StatusCode = resp.StatusCode
	doc.ContentType = resp.Header.Get("Content-Type")

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if isTimeout(err) {
			doc.FetchStatus = source.FetchTimeout
		} else {
			doc.FetchStatus = source.FetchHTTPError
		}
		doc.Warnings = append(doc.Warnings, "read failed: "+err.Error())
		return doc, pageMeta{}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		doc.FetchStatus = source.FetchBlocked
		return doc, c.extractInto(ctx, doc, body)
	case resp.StatusCode >= 400:
		doc.FetchStatus = source.FetchHTTPError
		return doc, pageMeta{}
	}

	if isPDF(doc.ContentType, body) {
		text, err := extractPDF(body, c.cfg.PDFTimeout())
		if err != nil {
			doc.FetchStatus = source.FetchPDFNoParser
			doc.Warnings = append(doc.Warnings, "pdf extraction failed: "+err.Error())
			return doc, pageMeta{}
		}
		doc.FetchStatus = source.FetchPDF
		doc.Text = text
		return doc, pageMeta{}
	}
	if looksLikeXML(doc.ContentType, body) {
		doc.FetchStatus = source.FetchXML
		doc.Text = string(body)
		return doc, pageMeta{}
	}

	return doc, c.extractInto(ctx, doc, body)
}

// extractInto parses HTML, optionally re-renders through the browser when
// extraction is thin, and classifies paywall/bot-block hint text.
func (c *Client) extractInto(ctx context.Context, doc *source.FetchedDocument, body []byte) pageMeta {
	html := string(body)
	meta := parseAndExtract(html)

	if len(meta.Text) < 350 && c.cfg.Browser && doc.StatusCode < 400 {
		if rendered, err := renderWithBrowser(ctx, doc.Resolved(), c.cfg.ReadTimeout()); err == nil {
			if m2 := parseAndExtract(rendered); len(m2.Text) > len(meta.Text) {
				meta = m2
				doc.Warnings = append(doc.Warnings, "browser-rendered extraction used")
			}
		} else {
			c.log.Warn("browser render failed", "url", doc.Resolved(), "error", err)
		}
	}

	doc.Text = meta.Text
	doc.Title = meta.Title
	doc.Author = meta.Author
	doc.PublishedDate = meta.Published
	doc.SiteName = meta.SiteName

	if doc.FetchStatus == source.FetchBlocked {
		return meta
	}
	combined := strings.ToLower(doc.Title + "\n" + doc.Text)
	switch {
	case containsAny(combined, botblockHints):
		doc.FetchStatus = source.FetchBlocked
		doc.Warnings = append(doc.Warnings, "bot-block text detected")
	case containsAny(combined, paywallHints):
		doc.FetchStatus = source.FetchPaywall
		doc.Warnings = append(doc.Warnings, "paywall text detected")
	default:
		doc.FetchStatus = source.FetchOK
	}
	return meta
}

func parseAndExtract(html string) pageMeta {
	gq, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return pageMeta{}
	}
	return extractHTML(gq)
}

func containsAny(s string, hints []string) bool {
	for _, h := range hints {
		if strings.Contains(s, h) {
			return true
		}
	}
	return false
}

func isTimeout(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

func isPDF(contentType string, body []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "application/pdf") {
		return true
	}
	return len(body) >= 5 && string(body[:5]) == "%PDF-"
}

func looksLikeXML(contentType string, body []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "xml") &&
		!strings.Contains(strings.ToLower(contentType), "html") {
		return true
	}
	t := strings.TrimSpace(string(body[:min(len(body), 64)]))
	return strings.HasPrefix(t, "<?xml") || strings.HasPrefix(t, "<rss") || strings.HasPrefix(t, "<feed")
}
