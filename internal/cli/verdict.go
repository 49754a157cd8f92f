package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brodheadw/oreacle-bot/internal/model"
	"github.com/brodheadw/oreacle-bot/internal/pipeline"
)

var verdictCommentOnly bool

// verdictCmd represents the verdict command
var verdictCmd = &cobra.Command{
	Use:   "verdict <extraction.json|->",
	Short: "Gate an extraction record into a final verdict",
	Long: `Verdict validates an extraction record and applies the YES and NO gates.
Invalid records are rejected with the failing field; nothing is coerced.

Example:
  oreacle verdict extraction.json
  oreacle verdict - --comment < extraction.json`,
	Args: cobra.ExactArgs(1),
	RunE: runVerdict,
}

func init() {
	rootCmd.AddCommand(verdictCmd)
	verdictCmd.Flags().BoolVar(&verdictCommentOnly, "comment", false, "print only the rendered comment")
}

type verdictOutput struct {
	Verdict           model.Verdict `json:"verdict"`
	FailedAffirmative []string      `json:"failed_affirmative,omitempty"`
	FailedNegative    []string      `json:"failed_negative,omitempty"`
	Action            model.Action  `json:"action"`
}

func runVerdict(cmd *cobra.Command, args []string) error {
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

	x, err := model.ParseExtraction(data)
	if err != nil {
		return err
	}

	p := pipeline.New(cfg, pipeline.Options{Logger: logger})
	d, action, err := p.Decide(x)
	if err != nil {
		return err
	}

	if verdictCommentOnly {
		if !d.Verdict.Actionable() {
			return fmt.Errorf("verdict is %s: no comment", d.Verdict)
		}
		fmt.Fprintln(cmd.OutOrStdout(), pipeline.VerdictComment(x, d.Verdict))
		return nil
	}

	return pipeline.NewRenderer(false).WriteJSON(cmd.OutOrStdout(), verdictOutput{
		Verdict:           d.Verdict,
		FailedAffirmative: d.FailedAffirmative,
		FailedNegative:    d.FailedNegative,
		Action:            action,
	})
}
