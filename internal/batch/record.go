package batch

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/KaramelBytes/tabstat-cli/internal/stats"
)

// Status classifies the outcome for one file.
type Status string

const (
	// StatusOK means the statistic was computed.
	StatusOK Status = "ok"
	// StatusUndefined means the file was processed but the statistic has no
	// numeric value; Reason explains why.
	StatusUndefined Status = "undefined"
	// StatusSkipped means the file lacked what the run needs.
	StatusSkipped Status = "skipped"
	// StatusFailed means reading or computing raised an error.
	StatusFailed Status = "failed"
)

// Emitted reports whether records with this status belong in the result spreadsheet.
func (s Status) Emitted() bool { return s == StatusOK || s == StatusUndefined }

// Cell is one result value: a number (possibly NaN or Inf) or text.
type Cell struct {
	Num    float64
	Text   string
	IsText bool
}

// Number wraps a numeric result.
func Number(v float64) Cell { return Cell{Num: v} }

// Text wraps a text result.
func Text(s string) Cell { return Cell{Text: s, IsText: true} }

// Int wraps a count.
func Int(n int) Cell { return Cell{Num: float64(n)} }

// Value converts the cell for a spreadsheet: NaN becomes an empty cell and
// infinities become text.
func (c Cell) Value() any {
	switch {
	case c.IsText:
		return c.Text
	case math.IsNaN(c.Num):
		return nil
	case math.IsInf(c.Num, 0):
		return formatNum(c.Num)
	}
	return c.Num
}

func (c Cell) String() string {
	if c.IsText {
		return c.Text
	}
	return formatNum(c.Num)
}

// MarshalJSON writes finite numbers as numbers, NaN as null and Inf as text.
func (c Cell) MarshalJSON() ([]byte, error) {
	switch v := c.Value().(type) {
	case nil:
		return []byte("null"), nil
	default:
		return json.Marshal(v)
	}
}

// UnmarshalJSON reverses MarshalJSON.
func (c *Cell) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch v := v.(type) {
	case nil:
		*c = Number(math.NaN())
	case float64:
		*c = Number(v)
	case string:
		switch v {
		case "inf":
			*c = Number(math.Inf(1))
		case "-inf":
			*c = Number(math.Inf(-1))
		default:
			*c = Text(v)
		}
	default:
		return fmt.Errorf("cell: unexpected JSON %s", b)
	}
	return nil
}

func formatNum(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return fmt.Sprintf("%.4f", v)
}

// Record is the typed outcome for one input file.
type Record struct {
	File   string          `json:"file"`
	Status Status          `json:"status"`
	Reason string          `json:"reason,omitempty"`
	Values map[string]Cell `json:"values,omitempty"`
	// Line is the human-readable log line for this file.
	Line string `json:"line"`
	// TTest is set by t-test runs.
	TTest *stats.TTestResult `json:"-"`
}

// Table is the ordered result of a run. Columns[0] names the file column.
type Table struct {
	Columns []string `json:"columns"`
	Rows    []Record `json:"rows"`
}

// Emitted returns the records written to the result spreadsheet.
func (t Table) Emitted() []Record {
	var out []Record
	for _, r := range t.Rows {
		if r.Status.Emitted() {
			out = append(out, r)
		}
	}
	return out
}

// Sheet lays the emitted records out as spreadsheet rows, header first.
// Columns missing from a record stay empty.
func (t Table) Sheet() [][]any {
	header := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	rows := [][]any{header}
	for _, r := range t.Emitted() {
		row := make([]any, len(t.Columns))
		row[0] = r.File
		for i, col := range t.Columns[1:] {
			if c, ok := r.Values[col]; ok {
				row[i+1] = c.Value()
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// Result is everything a finished run produced.
type Result struct {
	ID        string    `json:"id"`
	Tool      Tool      `json:"tool"`
	Source    string    `json:"source"`
	Output    string    `json:"output,omitempty"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
	Table     Table     `json:"table"`
	Warnings  []string  `json:"warnings,omitempty"`
}

// Counts tallies records by status.
func (r *Result) Counts() map[Status]int {
	out := map[Status]int{}
	for _, rec := range r.Table.Rows {
		out[rec.Status]++
	}
	return out
}
