package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"credence/internal/config"
	"credence/internal/source"
)

func testClient(cache *Cache) *Client {
	cfg := config.Default().Fetch
	cfg.SleepMillis = 0
	return NewClient(cfg, cache)
}

const articleHTML = `<!doctype html>
<html><head>
<title>Fallback title</title>
<meta property="og:title" content="Budget approved after long debate">
<meta property="og:site_name" content="Example Times">
<meta name="author" content="Jane Reporter">
<meta property="article:published_time" content="2024-03-12">
</head><body>
<nav><a href="/">home</a><a href="/politics">politics</a></nav>
<article>
<p>Parliament approved the budget on 12 March 2024 after a long debate.</p>
<p>The finance minister said the package totals 320 million euros and funds
regional hospitals through 2026. Opposition members voted against it,
arguing the deficit projections were too optimistic. Independent analysts
reviewed the figures and found them broadly consistent with earlier
ministry estimates published in January.</p>
</article>
<footer><a href="/about-us">About us</a><a href="/ethics">Ethics</a></footer>
</body></html>`

func TestFetchExtractsArticle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(articleHTML))
	}))
	defer srv.Close()

	res, err := testClient(nil).Fetch(context.Background(), srv.URL+"/news/budget")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	doc := res.Doc
	if doc.FetchStatus != source.FetchOK {
		t.Fatalf("status = %q, want ok (warnings: %v)", doc.FetchStatus, doc.Warnings)
	}
	if doc.Title != "Budget approved after long debate" {
		t.Errorf("title = %q", doc.Title)
	}
	if doc.SiteName != "Example Times" || doc.Author != "Jane Reporter" {
		t.Errorf("meta = %q / %q", doc.SiteName, doc.Author)
	}
	if !strings.Contains(doc.Text, "320 million euros") {
		t.Errorf("article text not extracted: %q", doc.Text)
	}
	if strings.Contains(doc.Text, "politics") {
		t.Errorf("nav noise leaked into text: %q", doc.Text)
	}
	if res.PageType != source.PageArticle {
		t.Errorf("page type = %q, want article", res.PageType)
	}
	if len(res.Hrefs) == 0 {
		t.Error("no hrefs collected for policy discovery")
	}
}

func TestFetchPrefersJSONLDBody(t *testing.T) {
	page := `<html><head><script type="application/ld+json">
	{"@type":"NewsArticle","articleBody":"Full body shipped via structured data.","datePublished":"2024-05-01","author":{"name":"Lead Writer"}}
	</script></head><body><div id="app"></div></body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	res, err := testClient(nil).Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !strings.Contains(res.Doc.Text, "structured data") {
		t.Errorf("JSON-LD body not used: %q", res.Doc.Text)
	}
	if res.Doc.Author != "Lead Writer" || res.Doc.PublishedDate != "2024-05-01" {
		t.Errorf("JSON-LD meta not used: %q / %q", res.Doc.Author, res.Doc.PublishedDate)
	}
}

func TestFetchStatusClassification(t *testing.T) {
	handler := func(code int, body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.WriteHeader(code)
			_, _ = w.Write([]byte(body))
		}
	}
	cases := []struct {
		name    string
		handler http.HandlerFunc
		want    source.FetchStatus
	}{
		{"404 is http_error", handler(404, "gone"), source.FetchHTTPError},
		{"410 is http_error", handler(410, "gone"), source.FetchHTTPError},
		{"403 is blocked", handler(403, "<html><body>denied</body></html>"), source.FetchBlocked},
		{"paywall text", handler(200, "<html><body><p>Subscribe to continue reading this story.</p></body></html>"), source.FetchPaywall},
		{"botblock text", handler(200, "<html><body><p>Please verify you are human to proceed.</p></body></html>"), source.FetchBlocked},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()
			res, err := testClient(nil).Fetch(context.Background(), srv.URL)
			if err != nil {
				t.Fatalf("Fetch: %v", err)
			}
			if res.Doc.FetchStatus != tc.want {
				t.Errorf("status = %q, want %q", res.Doc.FetchStatus, tc.want)
			}
		})
	}
}

func TestFetchDetectsFeeds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(`<?xml version="1.0"?><rss><channel></channel></rss>`))
	}))
	defer srv.Close()

	res, err := testClient(nil).Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if res.Doc.FetchStatus != source.FetchXML {
		t.Errorf("status = %q, want xml", res.Doc.FetchStatus)
	}
}

func TestExtractPDFRejectsGarbage(t *testing.T) {
	if _, err := extractPDF([]byte("%PDF-not really a pdf"), time.Second); err == nil {
		t.Error("garbage PDF should fail extraction")
	}
}

func TestClassifyPage(t *testing.T) {
	long := strings.Repeat("sentence ", 400)
	cases := []struct {
		name  string
		url   string
		links int
		text  string
		want  source.PageType
	}{
		{"section URL", "https://x.example/section/world", 0, long, source.PageListing},
		{"tag URL", "https://x.example/tag/economy", 0, long, source.PageListing},
		{"link-dense thin page", "https://x.example/today", 120, "short", source.PageListing},
		{"normal article", "https://x.example/news/story", 30, long, source.PageArticle},
		{"empty page", "https://x.example/", 0, "", source.PageUnknown},
	}
	for _, tc := range cases {
		if got := ClassifyPage(tc.url, tc.links, tc.text); got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestCacheRoundtripAndExpiry(t *testing.T) {
	path := t.TempDir() + "/cache.db"
	cache, err := OpenCache(path, time.Hour)
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	defer cache.Close()

	doc := &source.FetchedDocument{URL: "https://x.example/a", FetchStatus: source.FetchOK, Text: "body"}
	if err := cache.Put(doc.URL, doc); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok := cache.Get(doc.URL)
	if !ok || got.Text != "body" {
		t.Fatalf("Get: ok=%v doc=%+v", ok, got)
	}
	if _, ok := cache.Get("https://x.example/missing"); ok {
		t.Error("missing URL should miss")
	}

	stale, err := OpenCache(path, -time.Second)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer stale.Close()
	if _, ok := stale.Get(doc.URL); ok {
		t.Error("expired entry should miss")
	}
}

func TestFetchUsesCache(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(articleHTML))
	}))
	defer srv.Close()

	cache, err := OpenCache(t.TempDir()+"/cache.db", time.Hour)
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	defer cache.Close()
	client := testClient(cache)

	for i := 0; i < 3; i++ {
		if _, err := client.Fetch(context.Background(), srv.URL); err != nil {
			t.Fatalf("Fetch: %v", err)
		}
	}
	if hits != 1 {
		t.Errorf("server hits = %d, want 1", hits)
	}
}

func TestFetchPolitenessSerializesConcurrentFetches(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(articleHTML))
	}))
	defer srv.Close()

	cfg := config.Default().Fetch
	cfg.SleepMillis = 30
	client := NewClient(cfg, nil)

	// Three concurrent fetches through the shared politeness clock; run
	// with -race this also guards the clock against unsynchronized access.
	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := client.Fetch(context.Background(), srv.URL); err != nil {
				t.Errorf("Fetch: %v", err)
			}
		}()
	}
	wg.Wait()

	if elapsed := time.Since(start); elapsed < 60*time.Millisecond {
		t.Errorf("three fetches finished in %v, want >= 60ms of politeness spacing", elapsed)
	}
}
