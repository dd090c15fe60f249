package mcpserver_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"

	"credence/internal/config"
	"credence/internal/fetch"
	"credence/internal/mcpserver"
	"credence/internal/pipeline"
	"credence/internal/registry"
	"credence/internal/score"
	"credence/internal/source"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	})))
	os.Exit(m.Run())
}

type stubCollector struct {
	docs map[string]fetch.Result
}

func (s *stubCollector) Fetch(ctx context.Context, url string) (fetch.Result, error) {
	if res, ok := s.docs[url]; ok {
		return res, nil
	}
	return fetch.Result{Doc: &source.FetchedDocument{
		URL: url, FetchStatus: source.FetchHTTPError, StatusCode: 404,
	}, PageType: source.PageUnknown}, nil
}

func (s *stubCollector) Crawl(ctx context.Context, main fetch.Result) []*source.FetchedDocument {
	return nil
}

const inquiryText = `The inquiry published its judgment on 12 March 2024.
According to the transcript, the court convicted two officials and the
ruling was upheld. The Defence Ministry said it would comply with the
decision. Analysts reviewed the filing and reportedly found the dataset
consistent with earlier reporting. The figures may be revised, officials
said, and the totals appear stable. Parliament allocated 320 million euros
for compliance, a spokesman noted, and the package reportedly covers 14
agencies through 2026. According to observers the process might continue.`

func newTestServer(t *testing.T) *mcpserver.Server {
	t.Helper()
	url := "https://news.example/inquiry"
	c := &stubCollector{docs: map[string]fetch.Result{
		url: {Doc: &source.FetchedDocument{
			URL:         url,
			FinalURL:    url,
			FetchStatus: source.FetchOK,
			StatusCode:  200,
			Domain:      "news.example",
			Title:       "Inquiry findings published",
			SiteName:    "Example Times",
			Author:      "Jane Reporter",
			Text:        inquiryText,
		}, PageType: source.PageArticle},
	}}
	reg := registry.New(map[string]registry.Entry{
		"satire.example": {SatirePublisher: true},
	})
	eval := pipeline.NewEvaluator(c, reg, nil, score.ModeHeuristic, config.Default().Policy)
	return mcpserver.NewServer(eval, reg)
}

func connectInMemory(t *testing.T, ctx context.Context, srv *mcpserver.Server) *sdkmcp.ClientSession {
	t.Helper()
	t1, t2 := sdkmcp.NewInMemoryTransports()
	serverSession, err := srv.MCPServer.Connect(ctx, t1, nil)
	if err != nil {
		t.Fatalf("server.Connect: %v", err)
	}
	t.Cleanup(func() { serverSession.Close() })

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, t2, nil)
	if err != nil {
		t.Fatalf("client.Connect: %v", err)
	}
	return session
}

func callTool(t *testing.T, ctx context.Context, session *sdkmcp.ClientSession, name string, args map[string]any) map[string]any {
	t.Helper()
	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	if res.IsError {
		for _, c := range res.Content {
			if tc, ok := c.(*sdkmcp.TextContent); ok {
				t.Fatalf("CallTool(%s) returned error: %s", name, tc.Text)
			}
		}
		t.Fatalf("CallTool(%s) returned error", name)
	}
	result := make(map[string]any)
	for _, c := range res.Content {
		if tc, ok := c.(*sdkmcp.TextContent); ok {
			if err := json.Unmarshal([]byte(tc.Text), &result); err != nil {
				t.Fatalf("unmarshal tool result: %v (text: %s)", err, tc.Text)
			}
			return result
		}
	}
	t.Fatalf("no text content in tool result")
	return nil
}

func TestListTools(t *testing.T) {
	ctx := context.Background()
	session := connectInMemory(t, ctx, newTestServer(t))
	defer session.Close()

	tools, err := session.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	names := map[string]bool{}
	for _, tool := range tools.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"evaluate_source", "lookup_domain"} {
		if !names[want] {
			t.Errorf("tool %q not registered (have %v)", want, names)
		}
	}
}

func TestEvaluateSourceTool(t *testing.T) {
	ctx := context.Background()
	session := connectInMemory(t, ctx, newTestServer(t))
	defer session.Close()

	result := callTool(t, ctx, session, "evaluate_source", map[string]any{
		"url": "https://news.example/inquiry",
		"use": "B",
	})
	if got := result["completeness"]; got != "complete" {
		t.Errorf("completeness = %v", got)
	}
	if got := result["use_permission"]; got == "" || got == nil {
		t.Error("use_permission missing from tool output")
	}
	if _, ok := result["hsus_0_100"]; !ok {
		t.Error("hsus_0_100 missing from tool output")
	}
}

func TestEvaluateSourceToolRejectsBadUse(t *testing.T) {
	ctx := context.Background()
	session := connectInMemory(t, ctx, newTestServer(t))
	defer session.Close()

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "evaluate_source",
		Arguments: map[string]any{"url": "https://news.example/inquiry", "use": "D"},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected tool error for invalid use")
	}
}

func TestLookupDomainTool(t *testing.T) {
	ctx := context.Background()
	session := connectInMemory(t, ctx, newTestServer(t))
	defer session.Close()

	result := callTool(t, ctx, session, "lookup_domain", map[string]any{
		"domain": "https://satire.example/article",
	})
	if got := result["domain"]; got != "satire.example" {
		t.Errorf("domain = %v", got)
	}
	if got := result["known"]; got != true {
		t.Errorf("known = %v", got)
	}
	entry, _ := result["entry"].(map[string]any)
	if entry["satire_publisher"] != true {
		t.Errorf("satire_publisher flag not set in %v", entry)
	}

	result = callTool(t, ctx, session, "lookup_domain", map[string]any{
		"domain": "unlisted.example",
	})
	if got := result["known"]; got != false {
		t.Errorf("known = %v for unlisted domain", got)
	}
}
