package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"credence/internal/logging"
	"credence/internal/pipeline"
	"credence/internal/report"
	"credence/internal/score"
	"credence/internal/source"
)

var evaluateFlags struct {
	use        string
	mode       string
	relation   string
	worksCited string
	reportPath string
	outputPath string
	checkpoint string
	workers    int
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate [url]...",
	Short: "Fetch and score cited sources, producing use-permission labels",
	Long: `Evaluate one or more sources for a specific intended use and print a
summary table. Sources come from URL arguments or a works-cited file
(one source per line, optional TAB-separated label before the URL).

Usage:
  credence evaluate https://example.org/report --use B
  credence evaluate --works-cited sources.txt --use B --mode hybrid
  credence evaluate <url> --use A --relation self

Intended use:
  A  support a claim about what an actor said (narrative)
  B  support a claim about what happened (factual)
  C  background or interpretation (context)

The LLM judge (--mode llm or hybrid) reads its API key from the
environment variable named in the config (default OPENAI_API_KEY).`,
	Args: cobra.ArbitraryArgs,
	RunE: runEvaluate,
}

func init() {
	f := evaluateCmd.Flags()
	f.StringVar(&evaluateFlags.use, "use", "", "Intended use: A, B, or C (required)")
	f.StringVar(&evaluateFlags.mode, "mode", "heuristic", "Scoring mode: heuristic, llm, or hybrid")
	f.StringVar(&evaluateFlags.relation, "relation", "auto", "Relation override: auto, self, adversary, third_party, non_political_fact, unknown")
	f.StringVar(&evaluateFlags.worksCited, "works-cited", "", "Path to a works-cited file instead of URL arguments")
	f.StringVar(&evaluateFlags.reportPath, "report", "", "Write a Markdown report to this path")
	f.StringVarP(&evaluateFlags.outputPath, "output", "o", "", "Write full JSON results to this path")
	f.StringVar(&evaluateFlags.checkpoint, "checkpoint", "", "Write partial results to this path after each source")
	f.IntVar(&evaluateFlags.workers, "workers", 2, "Parallel evaluations in batch mode")
	_ = evaluateCmd.MarkFlagRequired("use")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	use, err := source.ParseIntendedUse(evaluateFlags.use)
	if err != nil {
		return err
	}
	mode, err := score.ParseMode(evaluateFlags.mode)
	if err != nil {
		return err
	}
	rel, err := source.ParseRelation(evaluateFlags.relation)
	if err != nil {
		return err
	}

	reqs, err := collectRequests(args, use, rel)
	if err != nil {
		return err
	}
	if len(reqs) == 0 {
		return fmt.Errorf("nothing to evaluate\n\nUsage: credence evaluate <url> --use B\n       credence evaluate --works-cited sources.txt --use B")
	}

	eval, _, cleanup, err := buildEvaluator(mode)
	if err != nil {
		return err
	}
	defer cleanup()

	logger := logging.New("cli")
	logger.Info("evaluating", "sources", len(reqs), "use", use, "mode", mode)

	var checkpoint func([]*pipeline.EvaluationResult)
	if evaluateFlags.checkpoint != "" {
		path := evaluateFlags.checkpoint
		checkpoint = func(partial []*pipeline.EvaluationResult) {
			if err := pipeline.WriteCheckpoint(path, partial); err != nil {
				logger.Warn("checkpoint write failed", "path", path, "error", err)
			}
		}
	}

	results := eval.EvaluateBatch(cmd.Context(), reqs, evaluateFlags.workers, checkpoint)

	fmt.Println(report.Summary(results))

	if evaluateFlags.reportPath != "" {
		f, err := createWithDir(evaluateFlags.reportPath)
		if err != nil {
			return err
		}
		err = report.WriteMarkdown(f, results, time.Now())
		f.Close()
		if err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		logger.Info("report written", "path", evaluateFlags.reportPath)
	}
	if evaluateFlags.outputPath != "" {
		f, err := createWithDir(evaluateFlags.outputPath)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := report.WriteJSON(f, results); err != nil {
			return fmt.Errorf("write results: %w", err)
		}
		logger.Info("results written", "path", evaluateFlags.outputPath)
	}
	return nil
}

func collectRequests(args []string, use source.IntendedUse, rel source.Relation) ([]pipeline.Request, error) {
	if evaluateFlags.worksCited != "" {
		if len(args) > 0 {
			return nil, fmt.Errorf("use either URL arguments or --works-cited, not both")
		}
		return pipeline.ParseWorksCited(evaluateFlags.worksCited, use)
	}
	reqs := make([]pipeline.Request, 0, len(args))
	for _, url := range args {
		reqs = append(reqs, pipeline.Request{URL: url, Use: use, Relation: rel})
	}
	return reqs, nil
}

func createWithDir(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, nil
}
