package cmd

import (
	"fmt"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/tabstat-cli/internal/config"
	"github.com/KaramelBytes/tabstat-cli/internal/plot"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set tabstat configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := settings()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "log_level: %s\n", c.LogLevel)
		fmt.Fprintf(out, "history_enabled: %t\n", c.HistoryEnabled)
		fmt.Fprintf(out, "history_path: %s\n", c.HistoryPath)
		fmt.Fprintf(out, "sampen_embedding_dim: %d\n", c.SampEnEmbeddingDim)
		fmt.Fprintf(out, "sampen_tolerance_factor: %.3f\n", c.SampEnToleranceFactor)
		if c.CSVDelimiter != "" {
			fmt.Fprintf(out, "csv_delimiter: %q\n", c.CSVDelimiter)
		}
		if c.DecimalSeparator != "" {
			fmt.Fprintf(out, "decimal_separator: %q\n", c.DecimalSeparator)
		}
		if c.ThousandsSeparator != "" {
			fmt.Fprintf(out, "thousands_separator: %q\n", c.ThousandsSeparator)
		}
		if c.SheetName != "" {
			fmt.Fprintf(out, "sheet_name: %s\n", c.SheetName)
		}
		fmt.Fprintf(out, "sheet_index: %d\n", c.SheetIndex)
		fmt.Fprintf(out, "chart_color: %s\n", c.ChartColor)
		fmt.Fprintf(out, "chart_capsize: %d\n", c.ChartCapsize)
		fmt.Fprintf(out, "chart_width: %d\n", c.ChartWidth)
		fmt.Fprintf(out, "chart_height: %d\n", c.ChartHeight)
		fmt.Fprintf(out, "server_addr: %s\n", c.ServerAddr)
		fmt.Fprintf(out, "cors_origins: %s\n", strings.Join(c.CORSOrigins, ","))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c := settings()
		switch key {
		case "log_level":
			switch strings.ToLower(val) {
			case "debug", "info", "warn", "error":
				c.LogLevel = strings.ToLower(val)
			default:
				return fmt.Errorf("invalid log_level: %s (use debug|info|warn|error)", val)
			}
		case "history_enabled":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for history_enabled: %v", val)
			}
			c.HistoryEnabled = b
		case "history_path":
			c.HistoryPath = val
		case "sampen_embedding_dim":
			i, err := strconv.Atoi(val)
			if err != nil || i < 1 {
				return fmt.Errorf("invalid positive int for sampen_embedding_dim: %v", val)
			}
			c.SampEnEmbeddingDim = i
		case "sampen_tolerance_factor":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f < 0 {
				return fmt.Errorf("invalid float for sampen_tolerance_factor: %v", val)
			}
			c.SampEnToleranceFactor = f
		case "csv_delimiter":
			c.CSVDelimiter = val
		case "decimal_separator":
			c.DecimalSeparator = val
		case "thousands_separator":
			c.ThousandsSeparator = val
		case "sheet_name":
			c.SheetName = val
		case "sheet_index":
			i, err := strconv.Atoi(val)
			if err != nil || i < 1 {
				return fmt.Errorf("invalid 1-based int for sheet_index: %v", val)
			}
			c.SheetIndex = i
		case "chart_color":
			if _, err := plot.ParseColor(val); err != nil {
				return err
			}
			c.ChartColor = strings.ToLower(val)
		case "chart_capsize", "chart_width", "chart_height":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for %s: %v", key, val)
			}
			switch key {
			case "chart_capsize":
				c.ChartCapsize = i
			case "chart_width":
				c.ChartWidth = i
			default:
				c.ChartHeight = i
			}
		case "server_addr":
			c.ServerAddr = val
		case "cors_origins":
			var origins []string
			for _, o := range strings.Split(val, ",") {
				if o = strings.TrimSpace(o); o != "" {
					origins = append(origins, o)
				}
			}
			c.CORSOrigins = origins
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if _, err := readOptions(); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
