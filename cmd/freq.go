package cmd

import (
	"fmt"
	"strconv"

	"github.com/KaramelBytes/tabstat-cli/internal/dataset"
	"github.com/KaramelBytes/tabstat-cli/internal/report"
	"github.com/KaramelBytes/tabstat-cli/internal/stats"
	"github.com/KaramelBytes/tabstat-cli/internal/utils"
	"github.com/spf13/cobra"
)

var freqColumn string

var freqCmd = &cobra.Command{
	Use:   "freq <file>",
	Short: "Value frequency table (count and percent) of one column",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := readOptions()
		if err != nil {
			return err
		}
		ds, err := dataset.Load(args[0], opt)
		if err != nil {
			return err
		}
		i := ds.IndexFold(freqColumn)
		if i < 0 {
			return fmt.Errorf("column %q: %w", freqColumn, dataset.ErrColumnNotFound)
		}
		values, err := ds.FloatsAt(i)
		if err != nil {
			return err
		}
		rows := stats.Frequencies(values)
		if len(rows) == 0 {
			return fmt.Errorf("column %q has no values", freqColumn)
		}

		out := cmd.OutOrStdout()
		if runJSON {
			b, err := utils.PrettyJSON(rows)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
		} else {
			fmt.Fprintf(out, "%-16s %8s %9s\n", ds.Header[i], "Count", "Percent")
			for _, r := range rows {
				fmt.Fprintf(out, "%-16s %8d %8.2f%%\n", strconv.FormatFloat(r.Value, 'g', -1, 64), r.Count, r.Percent)
			}
		}

		if runOutput != "" {
			sheet := [][]any{{ds.Header[i], "Count", "Percent"}}
			for _, r := range rows {
				sheet = append(sheet, []any{r.Value, r.Count, r.Percent})
			}
			if err := report.WriteXLSX(runOutput, sheet); err != nil {
				return err
			}
			if !runJSON {
				fmt.Fprintf(out, "✓ Saved results to %s\n", runOutput)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(freqCmd)
	freqCmd.Flags().StringVar(&freqColumn, "col", "", "column to tabulate (required)")
	freqCmd.Flags().StringVarP(&runOutput, "output", "o", "", "optional path of the result spreadsheet (.xlsx)")
	freqCmd.Flags().BoolVar(&runJSON, "json", false, "print the table as JSON")
	_ = freqCmd.MarkFlagRequired("col")
	addReadFlags(freqCmd)
}
