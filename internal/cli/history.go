package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/veracity/internal/pipeline"
	"github.com/ppiankov/veracity/internal/store"
	"github.com/ppiankov/veracity/internal/util"
)

var (
	historyLimit int
	historyJSON  bool
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past verification runs",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show a stored report",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.PersistentFlags().StringVar(&storePath, "store", "", "run history database (default from config)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of runs to list")
	historyShowCmd.Flags().BoolVar(&historyJSON, "json", false, "print the full report as JSON")
}

func openHistory(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("store") {
		cfg.Store.Path = storePath
	}
	if cfg.Store.Path == "" {
		return nil, errors.New("no run history database: set store.path or pass --store")
	}
	return store.Open(cfg.Store.Path)
}

func runHistory(cmd *cobra.Command, args []string) error {
	st, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN ID\tSTARTED\tSTATUS\tCLAIMS\tVIDEO")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			r.RunID, r.StartedAt.Format("2006-01-02 15:04"), r.Status, r.Claims, util.Truncate(r.VideoTitle, 50))
	}
	return w.Flush()
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	st, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	report, err := st.GetRun(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if historyJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	pipeline.WriteSummary(cmd.OutOrStdout(), report)
	return nil
}
