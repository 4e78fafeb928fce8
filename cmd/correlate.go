package cmd

import (
	"github.com/KaramelBytes/tabstat-cli/internal/batch"
	"github.com/spf13/cobra"
)

var (
	corrX string
	corrY string
)

var correlateCmd = &cobra.Command{
	Use:   "correlate <folder|file>",
	Short: "Pearson correlation between columns X and Y, one row per file",
	Long: `Matches X and Y case-insensitively, drops missing values from each column,
truncates both to the shorter length and reports Pearson's r.
Results go to <folder>/Pearson_Correlations.xlsx unless --output is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := readOptions()
		if err != nil {
			return err
		}
		_, err = executeRun(cmd, batch.RunConfig{
			Tool:    batch.ToolCorrelation,
			Source:  args[0],
			Columns: []string{corrX, corrY},
			Read:    opt,
		})
		return err
	},
}

func init() {
	rootCmd.AddCommand(correlateCmd)
	correlateCmd.Flags().StringVarP(&corrX, "x", "x", "", "first column (required)")
	correlateCmd.Flags().StringVarP(&corrY, "y", "y", "", "second column (required)")
	_ = correlateCmd.MarkFlagRequired("x")
	_ = correlateCmd.MarkFlagRequired("y")
	addBatchFlags(correlateCmd)
	addReadFlags(correlateCmd)
}
