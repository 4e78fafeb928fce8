package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/tabstat-cli/internal/config"
	"github.com/KaramelBytes/tabstat-cli/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg    *cfgpkg.Global
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tabstat",
	Short: "tabstat: batch statistics over folders of CSV/XLSX files",
	Long: `tabstat runs one statistic over every tabular file in a folder (or one file)
and collects a row per file into a result spreadsheet: cross entropy, sample
entropy, Pearson correlation, and a two-sample t-test with an optional chart.`,
}

// Execute is the entry point called by main.main()
func Execute() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.tabstat/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Defaults()
	}
	cfg = c

	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	l, err := logging.New(level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", err)
		l, _ = logging.New("")
	}
	logger = l
}

// settings returns the loaded configuration, loading it on first use.
func settings() *cfgpkg.Global {
	if cfg == nil || logger == nil {
		loadConfig()
	}
	return cfg
}
