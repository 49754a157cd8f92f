package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/brodheadw/oreacle-bot/internal/pipeline"
	"github.com/brodheadw/oreacle-bot/internal/worker"
)

var (
	evalJSON    string
	evalMD      string
	evalTimeout time.Duration
	evalWorkers int
)

// evaluateCmd represents the evaluate command
var evaluateCmd = &cobra.Command{
	Use:   "evaluate <items.jsonl|->",
	Short: "Run raw items through prefilter, extraction and the decision gate",
	Long: `Evaluate reads raw items (JSON Lines or a JSON array, "-" for stdin) and
runs each through the pipeline:
- Relevance prefilter (phrasebook aliases + action terms, fuzzy mine names)
- Structured extraction by the configured LLM provider (cached)
- Conservative YES/NO gates; everything else is AMBIGUOUS

Items are isolated: a failure is recorded on that item and the batch continues.
Input records that do not decode or lack a source/id are listed as rejected.

Example:
  oreacle evaluate items.jsonl --llm-provider openai --market-id abc123
  cat items.jsonl | oreacle evaluate - --json report.json --md report.md`,
	Args: cobra.ExactArgs(1),
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringVar(&evalJSON, "json", "", "output JSON report path")
	evaluateCmd.Flags().StringVar(&evalMD, "md", "", "output Markdown report path")
	evaluateCmd.Flags().DurationVar(&evalTimeout, "timeout", 10*time.Minute, "total timeout for the batch")
	evaluateCmd.Flags().IntVar(&evalWorkers, "workers", 0, "number of concurrent workers (default: concurrency.workers)")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if evalWorkers > 0 {
		cfg.Concurrency.Workers = evalWorkers
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	in, err := openInput(cmd, args[0])
	if err != nil {
		return err
	}
	items, rejected, err := worker.ReadItems(in)
	_ = in.Close()
	if err != nil {
		return fmt.Errorf("read items: %w", err)
	}
	for _, r := range rejected {
		logger.WithFields(logrus.Fields{"line": r.Line, "item_id": r.ItemID, "error": r.Error}).Warn("Rejected input record")
	}

	p, err := pipeline.NewPipeline(cfg, logger)
	if err != nil {
		return err
	}
	if !p.Extractor().IsEnabled() {
		logger.Warn("No extraction provider configured: relevant items will be recorded as failed (--llm-provider rules works offline)")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), evalTimeout)
	defer cancel()

	report := p.Run(ctx, items)
	report.AddRejected(rejected)

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)
	if evalJSON != "" {
		if err := renderer.RenderJSON(report, evalJSON); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		logger.WithField("path", evalJSON).Info("Wrote JSON report")
	} else {
		if err := renderer.WriteJSON(cmd.OutOrStdout(), report); err != nil {
			return err
		}
	}
	if evalMD != "" {
		if err := renderer.RenderMarkdown(report, evalMD); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		logger.WithField("path", evalMD).Info("Wrote Markdown report")
	}

	renderer.RenderSummary(os.Stderr, report)
	return nil
}
