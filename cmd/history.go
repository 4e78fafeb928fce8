package cmd

import (
	"fmt"
	"time"

	"github.com/KaramelBytes/tabstat-cli/internal/history"
	"github.com/KaramelBytes/tabstat-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	histLimit int
	histJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List recorded runs, or show one run's per-file records",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := settings()
		st, err := history.Open(c.HistoryPath)
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer st.Close()
		out := cmd.OutOrStdout()

		if len(args) == 1 {
			d, err := st.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if histJSON {
				b, err := utils.PrettyJSON(d)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(b))
				return nil
			}
			fmt.Fprintf(out, "Run %s (%s) on %s\n", d.ID, d.Tool, d.Source)
			fmt.Fprintf(out, "Started: %s  Took: %s\n", d.StartedAt.Local().Format("2006-01-02 15:04:05"), d.EndedAt.Sub(d.StartedAt).Round(time.Millisecond))
			if d.Output != "" {
				fmt.Fprintf(out, "Output: %s\n", d.Output)
			}
			for _, e := range d.Records {
				fmt.Fprintf(out, "  %-10s %s\n", e.Status, e.Line)
			}
			return nil
		}

		runs, err := st.ListRuns(cmd.Context(), histLimit)
		if err != nil {
			return err
		}
		if histJSON {
			b, err := utils.PrettyJSON(runs)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}
		if len(runs) == 0 {
			fmt.Fprintln(out, "No runs recorded")
			return nil
		}
		for _, r := range runs {
			fmt.Fprintf(out, "%s  %s  %-12s ok=%d undefined=%d skipped=%d failed=%d  %s\n",
				r.ID, r.StartedAt.Local().Format("2006-01-02 15:04"), r.Tool,
				r.OK, r.Undefined, r.Skipped, r.Failed, r.Source)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&histLimit, "limit", "n", 20, "number of runs to list")
	historyCmd.Flags().BoolVar(&histJSON, "json", false, "print as JSON")
}
