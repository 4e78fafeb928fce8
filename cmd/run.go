package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KaramelBytes/tabstat-cli/internal/batch"
	"github.com/KaramelBytes/tabstat-cli/internal/dataset"
	"github.com/KaramelBytes/tabstat-cli/internal/history"
	"github.com/KaramelBytes/tabstat-cli/internal/tui"
	"github.com/KaramelBytes/tabstat-cli/internal/utils"
)

var (
	// Batch presentation flags
	runOutput    string
	runJSON      bool
	runTUI       bool
	runNoHistory bool

	// Reading flags (override config if set)
	readDelimiter  string
	readDecimal    string
	readThousands  string
	readSheetName  string
	readSheetIndex int
)

func addBatchFlags(c *cobra.Command) {
	c.Flags().StringVarP(&runOutput, "output", "o", "", "path of the result spreadsheet (.xlsx)")
	c.Flags().BoolVar(&runJSON, "json", false, "print the result table as JSON")
	c.Flags().BoolVar(&runTUI, "tui", false, "show progress in an interactive terminal view")
	c.Flags().BoolVar(&runNoHistory, "no-history", false, "do not record this run in the history database")
}

func addReadFlags(c *cobra.Command) {
	c.Flags().StringVar(&readDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' | '|' (default from extension)")
	c.Flags().StringVar(&readDecimal, "decimal", "", "decimal separator for numbers: '.'|'comma' (auto-detect if omitted)")
	c.Flags().StringVar(&readThousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space' (auto-detect if omitted)")
	c.Flags().StringVar(&readSheetName, "sheet-name", "", "XLSX: sheet name to read")
	c.Flags().IntVar(&readSheetIndex, "sheet-index", 0, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
}

// readOptions merges config defaults with the reading flags.
func readOptions() (dataset.Options, error) {
	c := settings()
	opt := dataset.DefaultOptions()

	delim := c.CSVDelimiter
	if readDelimiter != "" {
		delim = readDelimiter
	}
	switch strings.ToLower(delim) {
	case "":
	case ",":
		opt.Delimiter = ','
	case ";":
		opt.Delimiter = ';'
	case "|":
		opt.Delimiter = '|'
	case "\t", "\\t", "tab":
		opt.Delimiter = '\t'
	default:
		return opt, fmt.Errorf("unsupported delimiter: %s (use ','|';'|'tab'|'|')", delim)
	}

	dec := c.DecimalSeparator
	if readDecimal != "" {
		dec = readDecimal
	}
	switch strings.ToLower(strings.TrimSpace(dec)) {
	case ",", "comma":
		opt.DecimalSeparator = ','
	case ".", "dot":
		opt.DecimalSeparator = '.'
	case "":
	default:
		return opt, fmt.Errorf("unsupported decimal separator: %s (use '.'|'comma')", dec)
	}

	th := c.ThousandsSeparator
	if readThousands != "" {
		th = readThousands
	}
	switch strings.ToLower(th) {
	case ",":
		opt.ThousandsSeparator = ','
	case ".":
		opt.ThousandsSeparator = '.'
	case "space", " ":
		opt.ThousandsSeparator = ' '
	case "":
	default:
		return opt, fmt.Errorf("unsupported thousands separator: %s (use ','|'.'|'space')", th)
	}

	opt.SheetName = c.SheetName
	if readSheetName != "" {
		opt.SheetName = readSheetName
	}
	if c.SheetIndex > 0 {
		opt.SheetIndex = c.SheetIndex
	}
	if readSheetIndex > 0 {
		opt.SheetIndex = readSheetIndex
	}
	return opt, nil
}

// executeRun submits rc to a fresh queue, presents the progress, records the
// run in history and prints the outcome.
func executeRun(cmd *cobra.Command, rc batch.RunConfig) (*batch.Result, error) {
	c := settings()
	if runOutput != "" {
		rc.Output = runOutput
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	q := batch.NewQueue(logger)
	events, err := q.Submit(ctx, rc)
	if err != nil {
		return nil, err
	}

	var res *batch.Result
	if runTUI {
		res, err = presentTUI(ctx, stop, string(rc.Tool), events)
	} else {
		progress := cmd.OutOrStdout()
		if runJSON {
			progress = cmd.ErrOrStderr()
		}
		res, err = batch.Drain(events, printEvent(progress))
	}
	if res == nil {
		if err == nil {
			err = errors.New("run aborted")
		}
		return nil, err
	}

	if c.HistoryEnabled && !runNoHistory {
		if herr := recordHistory(context.WithoutCancel(ctx), c.HistoryPath, res); herr != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: could not record run history: %v\n", herr)
		}
	}

	if runJSON {
		b, jerr := utils.PrettyJSON(res)
		if jerr != nil {
			return res, jerr
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
	} else if !runTUI {
		printSummary(cmd.OutOrStdout(), res)
	}
	return res, err
}

func printEvent(w io.Writer) func(batch.Event) {
	return func(ev batch.Event) {
		switch ev.Kind {
		case batch.EventStarted:
			fmt.Fprintf(w, "Processing %d file(s)\n", ev.Total)
		case batch.EventFile:
			fmt.Fprintf(w, "[%d/%d] %s\n", ev.Index, ev.Total, ev.Record.Line)
		}
	}
}

func printSummary(w io.Writer, res *batch.Result) {
	counts := res.Counts()
	fmt.Fprintf(w, "Files: %d ok, %d undefined, %d skipped, %d failed\n",
		counts[batch.StatusOK], counts[batch.StatusUndefined], counts[batch.StatusSkipped], counts[batch.StatusFailed])
	for _, warn := range res.Warnings {
		fmt.Fprintf(w, "⚠ %s\n", warn)
	}
	if res.Output != "" {
		fmt.Fprintf(w, "✓ Saved results to %s\n", res.Output)
	}
}

func presentTUI(ctx context.Context, stop context.CancelFunc, title string, events <-chan batch.Event) (*batch.Result, error) {
	feed := tui.NewFeed(events)
	model := tui.NewModel(title, feed.Events())
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		logger.Warn("terminal view failed", zap.Error(err))
	}
	if !model.Done() {
		// Quit before Done: stop between files and keep what finished.
		stop()
	}
	return feed.Close()
}

func recordHistory(ctx context.Context, path string, res *batch.Result) error {
	st, err := history.Open(path)
	if err != nil {
		return err
	}
	defer st.Close()
	return st.InsertRun(ctx, res)
}
