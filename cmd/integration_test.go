package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/KaramelBytes/tabstat-cli/internal/batch"
	"github.com/KaramelBytes/tabstat-cli/internal/report"
)

// resetFlags clears values and Changed state left over from a previous invocation.
func resetFlags(c *cobra.Command) {
	c.Flags().VisitAll(func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	})
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCmd is a helper to execute the root command with args and capture stdout.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execCmd(args...)
	if err != nil {
		t.Fatalf("command %v failed: %v\n%s", args, err, out)
	}
	return out
}

func execCmd(args ...string) (string, error) {
	resetFlags(rootCmd)
	// Reload configuration for the current HOME
	cfg, logger = nil, nil
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestCLI_CrossEntropyFolderWritesResults(t *testing.T) {
	home := isolateHome(t)
	data := filepath.Join(home, "data")
	writeFile(t, filepath.Join(data, "a.csv"), "truth,ref\n1,1\n2,2\n2,1\n1,2\n")
	writeFile(t, filepath.Join(data, "b.csv"), "other\n1\n")

	out := runCmd(t, "crossentropy", data, "--col1", "truth", "--col2", "ref")
	if !strings.Contains(out, "[1/2] Processed a.csv: Cross Entropy = ") {
		t.Fatalf("missing progress line:\n%s", out)
	}
	if !strings.Contains(out, "[2/2] b.csv: Columns not found.") {
		t.Fatalf("missing skip line:\n%s", out)
	}
	want := filepath.Join(data, "Cross_Entropy_Results.xlsx")
	if !strings.Contains(out, "✓ Saved results to "+want) {
		t.Fatalf("missing saved line:\n%s", out)
	}
	rows, err := report.ReadXLSX(want)
	if err != nil {
		t.Fatalf("read results: %v", err)
	}
	if len(rows) != 2 || rows[0][0] != "File Name" || rows[1][0] != "a.csv" {
		t.Fatalf("unexpected sheet: %v", rows)
	}

	// the run was recorded
	hist := runCmd(t, "history")
	if !strings.Contains(hist, "crossentropy") || !strings.Contains(hist, "ok=1") {
		t.Fatalf("history listing:\n%s", hist)
	}
}

func TestCLI_CorrelateJSONNoHistory(t *testing.T) {
	home := isolateHome(t)
	data := filepath.Join(home, "data")
	writeFile(t, filepath.Join(data, "c.csv"), "X,Y\n1,2\n2,4\n3,6\n")

	out := runCmd(t, "correlate", data, "-x", "x", "-y", "y", "--json", "--no-history")
	start := strings.Index(out, "{")
	if start < 0 {
		t.Fatalf("no JSON in output:\n%s", out)
	}
	var res batch.Result
	if err := json.Unmarshal([]byte(out[start:]), &res); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(res.Table.Rows) != 1 || res.Table.Rows[0].Values["Pearson(X,Y)"].Num < 0.999 {
		t.Fatalf("unexpected result: %+v", res.Table)
	}
	if _, err := os.Stat(filepath.Join(home, ".tabstat", "history.db")); !os.IsNotExist(err) {
		t.Fatalf("history written despite --no-history")
	}
}

func TestCLI_SampEnRejectsBadDimension(t *testing.T) {
	home := isolateHome(t)
	data := filepath.Join(home, "data")
	writeFile(t, filepath.Join(data, "s.csv"), "A\n1\n2\n1\n2\n")
	if _, err := execCmd("sampen", data, "--col", "A", "--m", "0"); err == nil {
		t.Fatalf("expected validation error for m=0")
	}
	out := runCmd(t, "sampen", data, "--col", "A", "--col", "Z", "--no-history")
	if !strings.Contains(out, "s.csv: A=0.0000, Z skipped") {
		t.Fatalf("unexpected sampen output:\n%s", out)
	}
}

func TestCLI_TTestPrintsBlockAndChart(t *testing.T) {
	home := isolateHome(t)
	file := filepath.Join(home, "t.csv")
	writeFile(t, file, "A,B\n1,2\n2,3\n3,4\n4,5\n5,6\n")
	chart := filepath.Join(home, "out", "means.png")

	out := runCmd(t, "ttest", file, "-a", "A", "-b", "B", "--chart", chart, "--color", "green", "--no-history")
	for _, want := range []string{"T Statistic: -1.0000", "P Value (two-tailed):", "Levene p:", "Mean A (A): 3.0000", "✓ Saved chart to"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
	if _, err := os.Stat(chart); err != nil {
		t.Fatalf("chart not written: %v", err)
	}
	if _, err := execCmd("ttest", file, "-a", "A", "-b", "B", "--chart", chart, "--color", "teal"); err == nil {
		t.Fatalf("expected unknown color error")
	}
}

func TestCLI_FreqAndColumns(t *testing.T) {
	home := isolateHome(t)
	file := filepath.Join(home, "f.csv")
	writeFile(t, file, "Grade\n3\n1\n3\n\n2\n")

	cols := runCmd(t, "columns", file)
	if !strings.Contains(cols, "1. Grade") {
		t.Fatalf("columns output:\n%s", cols)
	}
	out := runCmd(t, "freq", file, "--col", "grade")
	if !strings.Contains(out, "50.00%") || !strings.Contains(out, "25.00%") {
		t.Fatalf("freq output:\n%s", out)
	}
}

func TestCLI_ConfigSetAndShow(t *testing.T) {
	isolateHome(t)
	runCmd(t, "config", "set", "sampen_embedding_dim", "2")
	runCmd(t, "config", "set", "chart_color", "Purple")
	out := runCmd(t, "config", "show")
	if !strings.Contains(out, "sampen_embedding_dim: 2") || !strings.Contains(out, "chart_color: purple") {
		t.Fatalf("config show:\n%s", out)
	}
	if _, err := execCmd("config", "set", "chart_color", "teal"); err == nil {
		t.Fatalf("expected invalid color error")
	}
	if _, err := execCmd("config", "set", "nope", "1"); err == nil {
		t.Fatalf("expected unknown key error")
	}
}
