package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/veracity/internal/extract"
	"github.com/ppiankov/veracity/internal/pipeline"
	"github.com/ppiankov/veracity/internal/reputation"
	"github.com/ppiankov/veracity/internal/verify"
)

var selectOnly bool

// scoreCmd represents the score command
var scoreCmd = &cobra.Command{
	Use:   "score <claims.json>",
	Short: "Score claims without verifying them",
	Long: `Score prints each claim's specificity breakdown, verifiability and
type as JSON. With --select it prints the claims a verification run would
check, including synthesized absence claims, and the selection metadata.

No LLM or search calls are made.`,
	Args: cobra.ExactArgs(1),
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)
	scoreCmd.Flags().BoolVar(&selectOnly, "select", false, "print the selected claims instead of every scored claim")
}

func runScore(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	set, err := extract.NewJSONExtractor(args[0]).Load()
	if err != nil {
		return err
	}
	if len(set.Claims) == 0 {
		return errors.New("claims file contains no claims")
	}

	// Scoring and selection need no collaborators
	p := pipeline.New(cfg, reputation.NewTable(nil), verify.NewOrchestrator(cfg, nil, nil))

	var out any
	if selectOnly {
		sel, err := p.Select(set.Claims)
		if err != nil {
			return err
		}
		out = map[string]any{"claims": sel.Claims, "selection": sel.Meta}
	} else {
		out = map[string]any{"claims": p.Score(set.Claims)}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode claims: %w", err)
	}
	return nil
}
