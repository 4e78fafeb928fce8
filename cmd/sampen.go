package cmd

import (
	"fmt"

	"github.com/KaramelBytes/tabstat-cli/internal/batch"
	"github.com/spf13/cobra"
)

var (
	seColumns   []string
	seDim       int
	seTolerance float64
)

var sampenCmd = &cobra.Command{
	Use:   "sampen <folder|file>",
	Short: "Sample entropy of up to five columns, one row per file",
	Long: `Computes SampEn(m, r) for each selected column, with r = factor x population
standard deviation of the column. Files missing a column note it as skipped.
Results go to <folder>/Sample_Entropy_Results.xlsx unless --output is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := settings()
		opt, err := readOptions()
		if err != nil {
			return err
		}
		if len(seColumns) == 0 {
			return fmt.Errorf("select at least one column with --col")
		}
		p := batch.Params{EmbeddingDim: c.SampEnEmbeddingDim, ToleranceFactor: c.SampEnToleranceFactor}
		if cmd.Flags().Changed("m") {
			p.EmbeddingDim = seDim
		}
		if cmd.Flags().Changed("tolerance") {
			p.ToleranceFactor = seTolerance
		}
		_, err = executeRun(cmd, batch.RunConfig{
			Tool:    batch.ToolSampleEntropy,
			Source:  args[0],
			Columns: seColumns,
			Params:  p,
			Read:    opt,
		})
		return err
	},
}

func init() {
	rootCmd.AddCommand(sampenCmd)
	sampenCmd.Flags().StringSliceVar(&seColumns, "col", nil, fmt.Sprintf("column to analyse (repeatable, up to %d)", batch.MaxSampEnColumns))
	sampenCmd.Flags().IntVarP(&seDim, "m", "m", 1, "embedding dimension (positive integer, overrides config)")
	sampenCmd.Flags().Float64Var(&seTolerance, "tolerance", 0.2, "tolerance as a factor of the population std (overrides config)")
	addBatchFlags(sampenCmd)
	addReadFlags(sampenCmd)
}
