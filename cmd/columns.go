package cmd

import (
	"fmt"

	"github.com/KaramelBytes/tabstat-cli/internal/dataset"
	"github.com/spf13/cobra"
)

var columnsCmd = &cobra.Command{
	Use:   "columns <folder|file>",
	Short: "List the column names of the first tabular file in a folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := readOptions()
		if err != nil {
			return err
		}
		file, header, err := dataset.Columns(args[0], opt)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Columns in %s:\n", file)
		for i, h := range header {
			fmt.Fprintf(out, "  %d. %s\n", i+1, h)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(columnsCmd)
	addReadFlags(columnsCmd)
}
