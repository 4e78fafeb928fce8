package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/tabstat-cli/internal/batch"
	"github.com/KaramelBytes/tabstat-cli/internal/plot"
	"github.com/KaramelBytes/tabstat-cli/internal/stats"
	"github.com/spf13/cobra"
)

var (
	ttA        string
	ttB        string
	ttMode     string
	ttTail     string
	ttChart    string
	ttColor    string
	ttCapsize  int
	ttLabels   []string
	ttNoValues bool
)

var ttestCmd = &cobra.Command{
	Use:   "ttest <file>",
	Short: "Two-sample t-test between columns A and B of one file",
	Long: `Independent mode checks equal variances with Levene's test (median centred)
and then runs a pooled or Welch t-test; paired mode runs a paired t-test.
Prints the statistics, optionally writes a one-row spreadsheet (--output)
and a bar chart of the means with population SD error bars (--chart).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := settings()
		opt, err := readOptions()
		if err != nil {
			return err
		}
		mode, err := stats.ParseMode(ttMode)
		if err != nil {
			return err
		}
		tail, err := stats.ParseTail(ttTail)
		if err != nil {
			return err
		}
		bars := plot.BarOptions{
			Color:      c.ChartColor,
			Capsize:    c.ChartCapsize,
			Width:      c.ChartWidth,
			Height:     c.ChartHeight,
			ShowValues: !ttNoValues,
		}
		if cmd.Flags().Changed("color") {
			bars.Color = ttColor
		}
		if cmd.Flags().Changed("capsize") {
			bars.Capsize = ttCapsize
		}
		if ttChart != "" {
			// fail before computing anything
			if _, err := plot.ParseColor(bars.Color); err != nil {
				return err
			}
		}
		labels := [2]string{"A", "B"}
		if len(ttLabels) > 0 {
			if len(ttLabels) != 2 {
				return fmt.Errorf("--labels takes exactly two names, got %d", len(ttLabels))
			}
			labels = [2]string{ttLabels[0], ttLabels[1]}
		}

		res, err := executeRun(cmd, batch.RunConfig{
			Tool:    batch.ToolTTest,
			Source:  args[0],
			Columns: []string{ttA, ttB},
			Params:  batch.Params{Mode: mode, Tail: tail},
			Read:    opt,
		})
		if err != nil {
			return err
		}
		if len(res.Table.Rows) == 0 || res.Table.Rows[0].TTest == nil {
			reason := "no result"
			if len(res.Table.Rows) > 0 {
				reason = res.Table.Rows[0].Reason
			}
			return fmt.Errorf("t-test failed: %s", reason)
		}
		tt := res.Table.Rows[0].TTest
		if !runJSON {
			printTTest(cmd.OutOrStdout(), tt, ttA, ttB)
		}
		if ttChart != "" {
			if err := plot.WritePNG(ttChart, tt, labels, bars); err != nil {
				return fmt.Errorf("write chart: %w", err)
			}
			if !runJSON {
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved chart to %s\n", ttChart)
			}
		}
		return nil
	},
}

func printTTest(w io.Writer, r *stats.TTestResult, a, b string) {
	fmt.Fprintf(w, "T Statistic: %.4f\n", r.T)
	fmt.Fprintf(w, "P Value (%s): %.4f\n", r.TailDesc, r.P)
	if note := r.VarianceNote(); note != "" {
		fmt.Fprintf(w, "Levene p: %.4f (%s)\n", r.LeveneP, note)
	}
	fmt.Fprintf(w, "Mean A (%s): %.4f\n", a, r.MeanA)
	fmt.Fprintf(w, "Pop SD A: %.4f\n", r.SDA)
	fmt.Fprintf(w, "Mean B (%s): %.4f\n", b, r.MeanB)
	fmt.Fprintf(w, "Pop SD B: %.4f\n", r.SDB)
	if sig := r.Significance(); sig != "" {
		fmt.Fprintf(w, "Significance: %s\n", sig)
	}
}

func init() {
	rootCmd.AddCommand(ttestCmd)
	ttestCmd.Flags().StringVarP(&ttA, "a", "a", "", "column for group A (required)")
	ttestCmd.Flags().StringVarP(&ttB, "b", "b", "", "column for group B (required)")
	ttestCmd.Flags().StringVar(&ttMode, "mode", "independent", "test type: independent | paired")
	ttestCmd.Flags().StringVar(&ttTail, "tail", "two", "tail: two | one")
	ttestCmd.Flags().StringVar(&ttChart, "chart", "", "write a PNG bar chart of the means to this path")
	ttestCmd.Flags().StringVar(&ttColor, "color", "blue", "bar color: "+strings.Join(plot.Colors(), " | ")+" (overrides config)")
	ttestCmd.Flags().IntVar(&ttCapsize, "capsize", 10, "error bar cap width in pixels (overrides config)")
	ttestCmd.Flags().StringSliceVar(&ttLabels, "labels", nil, "bar labels for A and B (default A,B)")
	ttestCmd.Flags().BoolVar(&ttNoValues, "no-values", false, "hide the mean value labels on the bars")
	_ = ttestCmd.MarkFlagRequired("a")
	_ = ttestCmd.MarkFlagRequired("b")
	addBatchFlags(ttestCmd)
	addReadFlags(ttestCmd)
}
