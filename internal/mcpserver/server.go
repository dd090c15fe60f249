// Package mcpserver exposes source evaluation over the Model Context
// Protocol so agent hosts can call the pipeline as tools instead of
// shelling out to the CLI.
package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"credence/internal/logging"
	"credence/internal/pipeline"
	"credence/internal/registry"
	"credence/internal/source"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP SDK server around a shared Evaluator. The
// evaluator is safe for concurrent tool calls, so the server holds no
// per-session state.
type Server struct {
	MCPServer *sdkmcp.Server

	eval *pipeline.Evaluator
	reg  *registry.Registry
}

// NewServer creates an MCP server with evaluation and registry tools.
func NewServer(eval *pipeline.Evaluator, reg *registry.Registry) *Server {
	s := &Server{eval: eval, reg: reg}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "credence", Version: "dev"},
		nil,
	)
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "evaluate_source",
		Description: "Fetch a URL and evaluate it as a source for a specific claim use. Returns the criterion scores, credibility index, and use-permission label.",
	}, s.handleEvaluateSource)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "lookup_domain",
		Description: "Look up a domain in the source registry and return its ownership and reliability flags.",
	}, s.handleLookupDomain)
}

// --- Tool input/output types ---

type evaluateSourceInput struct {
	URL      string `json:"url" jsonschema:"URL of the source to evaluate"`
	Use      string `json:"use" jsonschema:"intended use: A (narrative claim), B (factual support), C (context)"`
	Relation string `json:"relation,omitempty" jsonschema:"relation override (self, adversary, third_party, non_political_fact, unknown); omit for automatic classification"`
}

type lookupDomainInput struct {
	Domain string `json:"domain" jsonschema:"domain name or URL to look up"`
}

type lookupDomainOutput struct {
	Domain string         `json:"domain"`
	Known  bool           `json:"known"`
	Entry  registry.Entry `json:"entry"`
}

// --- Tool handlers ---

func (s *Server) handleEvaluateSource(ctx context.Context, _ *sdkmcp.CallToolRequest, input evaluateSourceInput) (*sdkmcp.CallToolResult, pipeline.EvaluationResult, error) {
	logger := logging.New("mcp-evaluate")

	use, err := source.ParseIntendedUse(input.Use)
	if err != nil {
		return nil, pipeline.EvaluationResult{}, err
	}
	rel := source.RelationAuto
	if input.Relation != "" {
		rel, err = source.ParseRelation(input.Relation)
		if err != nil {
			return nil, pipeline.EvaluationResult{}, err
		}
	}

	logger.Info("evaluating source", "url", input.URL, "use", use)
	res, err := s.eval.EvaluateOne(ctx, pipeline.Request{
		URL:      input.URL,
		Use:      use,
		Relation: rel,
	})
	if err != nil {
		return nil, pipeline.EvaluationResult{}, fmt.Errorf("evaluate %s: %w", input.URL, err)
	}
	return nil, *res, nil
}

func (s *Server) handleLookupDomain(_ context.Context, _ *sdkmcp.CallToolRequest, input lookupDomainInput) (*sdkmcp.CallToolResult, lookupDomainOutput, error) {
	if input.Domain == "" {
		return nil, lookupDomainOutput{}, fmt.Errorf("domain is required")
	}
	raw := input.Domain
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	domain := registry.RegistrableDomain(raw)
	if domain == "" {
		return nil, lookupDomainOutput{}, fmt.Errorf("cannot parse domain %q", input.Domain)
	}
	entry, known := s.reg.Entry(domain)
	return nil, lookupDomainOutput{Domain: domain, Known: known, Entry: entry}, nil
}
