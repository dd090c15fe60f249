package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"credence/internal/config"
)

func TestCrawlCollectsPolicyPages(t *testing.T) {
	policyText := strings.Repeat("We correct errors promptly and note corrections on the article. ", 8)
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		switch r.URL.Path {
		case "/about", "/corrections":
			_, _ = w.Write([]byte("<html><body><main><p>" + policyText + "</p></main></body></html>"))
		case "/news/story":
			_, _ = w.Write([]byte(articleHTML))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := config.Default().Fetch
	cfg.SleepMillis = 0
	cfg.MaxAuxPages = 3
	client := NewClient(cfg, nil)

	main, err := client.Fetch(context.Background(), srv.URL+"/news/story")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	pages := client.Crawl(context.Background(), main)
	if len(pages) != 2 {
		t.Fatalf("got %d aux pages, want 2: %+v", len(pages), pages)
	}
	for _, p := range pages {
		if !strings.Contains(p.Text, "correct errors") {
			t.Errorf("aux page %s has unexpected text", p.Resolved())
		}
	}
}

func TestCrawlRespectsCap(t *testing.T) {
	policyText := strings.Repeat("Editorial standards and ethics statement for the newsroom. ", 8)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body><main><p>" + policyText + " " + r.URL.Path + "</p></main></body></html>"))
	}))
	defer srv.Close()

	cfg := config.Default().Fetch
	cfg.SleepMillis = 0
	cfg.MaxAuxPages = 2
	client := NewClient(cfg, nil)

	main, err := client.Fetch(context.Background(), srv.URL+"/news/story")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got := client.Crawl(context.Background(), main); len(got) != 2 {
		t.Errorf("got %d aux pages, want cap of 2", len(got))
	}
}

func TestDiscoverPolicyLinks(t *testing.T) {
	base, _ := url.Parse("https://news.example/story/1")
	hrefs := []string{
		"/about-us",
		"https://news.example/ethics#top",
		"https://othersite.example/about", // cross-host: dropped
		"/sports/results",                 // no policy token: dropped
		"/about-us",                       // duplicate: dropped
	}
	got := discoverPolicyLinks(base, hrefs, 10)
	want := []string{"https://news.example/about-us", "https://news.example/ethics"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("link %d = %q, want %q", i, got[i], want[i])
		}
	}
}
