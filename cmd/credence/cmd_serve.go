package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"credence/internal/logging"
	"credence/internal/mcpserver"
	"credence/internal/score"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

var serveFlags struct {
	mode string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server over stdio",
	Long: `Starts an MCP server over stdin/stdout exposing evaluate_source and
lookup_domain tools, so agent hosts can score sources directly.

The server monitors for parent process death. When the host disconnects,
the server self-terminates to prevent zombie processes.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.mode, "mode", "heuristic", "Scoring mode for evaluate_source: heuristic, llm, or hybrid")
}

func runServe(cmd *cobra.Command, _ []string) error {
	mode, err := score.ParseMode(serveFlags.mode)
	if err != nil {
		return err
	}
	eval, reg, cleanup, err := buildEvaluator(mode)
	if err != nil {
		return fmt.Errorf("build evaluator: %w", err)
	}
	defer cleanup()

	srv := mcpserver.NewServer(eval, reg)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	mcpserver.WatchParent(ctx, cancel)

	logging.New("mcp").Info("starting credence MCP server over stdio (parent watchdog active)", "mode", mode)
	return srv.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}
