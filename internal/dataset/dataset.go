package dataset

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrColumnNotFound is returned when a requested column is absent from the header.
var ErrColumnNotFound = errors.New("column not found")

// Options controls how tabular files are read and how cells become numbers.
type Options struct {
	// Delimiter for CSV. If 0, chosen from the file extension (',' or '\t' for .tsv).
	Delimiter rune
	// Numeric parsing locale. If DecimalSeparator is 0, auto-detect per value.
	DecimalSeparator   rune
	ThousandsSeparator rune // optional; if 0, auto-detect common separators (',' '.' space)
	// XLSX sheet selection. SheetName wins over SheetIndex (1-based).
	SheetName  string
	SheetIndex int
}

// DefaultOptions reads the first sheet and auto-detects number formats.
func DefaultOptions() Options {
	return Options{SheetIndex: 1}
}

// Dataset is one loaded table: a header row and the raw cell text beneath it.
type Dataset struct {
	Name   string
	Path   string
	Header []string
	rows   [][]string
	opt    Options
}

// ParseError reports a non-empty cell that is not a number.
type ParseError struct {
	Column string
	Row    int // 1-based data row
	Value  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("column %q row %d: cannot parse %q as a number", e.Column, e.Row, e.Value)
}

func newDataset(name, path string, records [][]string, opt Options) *Dataset {
	ds := &Dataset{Name: name, Path: path, opt: opt}
	if len(records) == 0 {
		return ds
	}
	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		if strings.TrimSpace(h) == "" {
			h = fmt.Sprintf("Column_%d", i+1)
		}
		header[i] = h
	}
	ds.Header = header
	ds.rows = records[1:]
	return ds
}

// Rows returns the number of data rows.
func (d *Dataset) Rows() int { return len(d.rows) }

// Index returns the position of the column whose header equals name exactly, or -1.
func (d *Dataset) Index(name string) int {
	for i, h := range d.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// NormalizeName trims and upper-cases a column name.
func NormalizeName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// IndexFold matches name against headers after NormalizeName on both sides, or -1.
func (d *Dataset) IndexFold(name string) int {
	want := NormalizeName(name)
	for i, h := range d.Header {
		if NormalizeName(h) == want {
			return i
		}
	}
	return -1
}

// Strings returns the raw cell text of column i, padding short rows with "".
func (d *Dataset) Strings(i int) []string {
	out := make([]string, len(d.rows))
	for r, rec := range d.rows {
		if i < len(rec) {
			out[r] = rec[i]
		}
	}
	return out
}

// Floats returns the column named exactly name as numbers. Missing cells
// become NaN; any other unparsable cell yields a *ParseError.
func (d *Dataset) Floats(name string) ([]float64, error) {
	i := d.Index(name)
	if i < 0 {
		return nil, fmt.Errorf("%q: %w", name, ErrColumnNotFound)
	}
	return d.FloatsAt(i)
}

// FloatsAt is Floats by column position.
func (d *Dataset) FloatsAt(i int) ([]float64, error) {
	if i < 0 || i >= len(d.Header) {
		return nil, fmt.Errorf("column index %d: %w", i, ErrColumnNotFound)
	}
	cells := d.Strings(i)
	out := make([]float64, len(cells))
	for r, s := range cells {
		if isMissing(s) {
			out[r] = math.NaN()
			continue
		}
		x, ok := parseNumeric(s, d.opt)
		if !ok {
			return nil, &ParseError{Column: d.Header[i], Row: r + 1, Value: s}
		}
		out[r] = x
	}
	return out, nil
}
