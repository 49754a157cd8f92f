package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/brodheadw/oreacle-bot/internal/phrasebook"
	"github.com/brodheadw/oreacle-bot/internal/pipeline"
)

var prefilterFile string

// prefilterCmd represents the prefilter command
var prefilterCmd = &cobra.Command{
	Use:   "prefilter [text...]",
	Short: "Check whether text is relevant enough for extraction",
	Long: `Prefilter runs the cheap relevance check on free text: phrasebook entity
and action terms, plus transliterations and known typos of the mine name.

Example:
  oreacle prefilter "宁德时代宜春枧下窝矿区恢复生产"
  oreacle prefilter --file announcement.txt`,
	RunE: runPrefilter,
}

func init() {
	rootCmd.AddCommand(prefilterCmd)
	prefilterCmd.Flags().StringVar(&prefilterFile, "file", "", "read text from file (\"-\" for stdin)")
}

func runPrefilter(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	if prefilterFile != "" {
		data, err := readInput(cmd, prefilterFile)
		if err != nil {
			return err
		}
		text = string(data)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("no text given")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	pb, err := phrasebook.Load(cfg.Phrasebook.Path)
	if err != nil {
		return fmt.Errorf("load phrasebook: %w", err)
	}

	p := pipeline.New(cfg, pipeline.Options{Phrasebook: pb, Logger: logger})

	r := p.Prefilter(text)
	out := cmd.OutOrStdout()
	if r.Passed {
		fmt.Fprintf(out, "✓ relevant (boolean: %v, fuzzy: %v)\n", r.Boolean, r.Fuzzy)
	} else {
		fmt.Fprintln(out, "✗ not relevant")
	}
	return nil
}
