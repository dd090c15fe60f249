// credence is the main CLI: evaluate sources, inspect the domain
// registry, and serve the pipeline over MCP.
//
// Usage:
//
//	credence evaluate <url>... --use B [--mode hybrid] [--report out.md]
//	credence evaluate --works-cited sources.txt --use B -o results.json
//	credence registry <domain>
//	credence serve
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"credence/internal/config"
	"credence/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

// cfg is loaded by the persistent pre-run and read by every subcommand.
var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "credence",
	Short: "Evidence-bound credibility scoring for cited sources",
	Long: "Credence fetches cited web sources, scores them against a fixed\n" +
		"criterion rubric, and maps the result to a use-permission label.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var err error
		cfg, err = config.Load(rootFlags.configPath)
		if err != nil {
			return err
		}
		if rootFlags.logLevel != "" {
			cfg.Log.Level = rootFlags.logLevel
		}
		if rootFlags.logFormat != "" {
			cfg.Log.Format = rootFlags.logFormat
		}
		logging.Init(logging.ParseLevel(cfg.Log.Level), cfg.Log.Format)
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.configPath, "config", "", "Path to YAML config file (default: built-in defaults)")
	pf.StringVar(&rootFlags.logLevel, "log-level", "", "Override log level (debug|info|warn|error)")
	pf.StringVar(&rootFlags.logFormat, "log-format", "", "Override log format (text|json)")

	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(registryCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
