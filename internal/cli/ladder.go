package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/brodheadw/oreacle-bot/internal/model"
	"github.com/brodheadw/oreacle-bot/internal/pipeline"
)

var (
	ladderJSON string
	ladderMD   string
)

// ladderCmd represents the ladder command
var ladderCmd = &cobra.Command{
	Use:   "ladder <markets.json|->",
	Short: "Check deadline ladders for monotonicity violations",
	Long: `Ladder reads a JSON array of market snapshots, groups markets that differ
only by deadline, and flags pairs where the earlier deadline is priced above
a later one by more than the tolerance. A comment is planned on the earlier
market of each violation.

Example:
  oreacle ladder markets.json
  oreacle ladder markets.json --tolerance 0.03 --md ladder.md`,
	Args: cobra.ExactArgs(1),
	RunE: runLadder,
}

func init() {
	rootCmd.AddCommand(ladderCmd)
	ladderCmd.Flags().StringVar(&ladderJSON, "json", "", "output JSON report path")
	ladderCmd.Flags().StringVar(&ladderMD, "md", "", "output Markdown report path")
}

func runLadder(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	data, err := readInput(cmd, args[0])
	if err != nil {
		return err
	}

	var markets []model.Market
	if err := json.Unmarshal(data, &markets); err != nil {
		return fmt.Errorf("decode markets: %w", err)
	}

	p := pipeline.New(cfg, pipeline.Options{Logger: logger})
	report := p.CheckLadder(markets)

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)
	if ladderJSON != "" {
		if err := renderer.RenderJSON(report, ladderJSON); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
	} else {
		if err := renderer.WriteJSON(cmd.OutOrStdout(), report); err != nil {
			return err
		}
	}
	if ladderMD != "" {
		if err := renderer.RenderLadderMarkdown(report, ladderMD); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
	}

	renderer.RenderLadderSummary(os.Stderr, report)
	return nil
}
