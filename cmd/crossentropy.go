package cmd

import (
	"github.com/KaramelBytes/tabstat-cli/internal/batch"
	"github.com/spf13/cobra"
)

var (
	ceTruth string
	ceRef   string
)

var crossEntropyCmd = &cobra.Command{
	Use:   "crossentropy <folder|file>",
	Short: "Cross entropy (bits) between two integer columns, one row per file",
	Long: `Rounds both columns to integers, builds their value distributions and
reports H(p_true, p_ref) in bits for every .csv/.xlsx file in the folder.
Results go to <folder>/Cross_Entropy_Results.xlsx unless --output is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := readOptions()
		if err != nil {
			return err
		}
		_, err = executeRun(cmd, batch.RunConfig{
			Tool:    batch.ToolCrossEntropy,
			Source:  args[0],
			Columns: []string{ceTruth, ceRef},
			Read:    opt,
		})
		return err
	},
}

func init() {
	rootCmd.AddCommand(crossEntropyCmd)
	crossEntropyCmd.Flags().StringVar(&ceTruth, "col1", "", "column holding the true distribution (required)")
	crossEntropyCmd.Flags().StringVar(&ceRef, "col2", "", "column holding the reference distribution (required)")
	_ = crossEntropyCmd.MarkFlagRequired("col1")
	_ = crossEntropyCmd.MarkFlagRequired("col2")
	addBatchFlags(crossEntropyCmd)
	addReadFlags(crossEntropyCmd)
}
