package dataset

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadCSV_MissingAndBOM(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "a.csv", "\ufeffX,Y\n1,2\n,3\nNA,4.5\n")
	ds, err := Load(p, DefaultOptions())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ds.Header[0] != "X" {
		t.Fatalf("BOM not stripped: %q", ds.Header[0])
	}
	xs, err := ds.Floats("X")
	if err != nil {
		t.Fatalf("floats X: %v", err)
	}
	if xs[0] != 1 || !math.IsNaN(xs[1]) || !math.IsNaN(xs[2]) {
		t.Fatalf("unexpected X: %v", xs)
	}
	ys, _ := ds.Floats("Y")
	if ys[2] != 4.5 {
		t.Fatalf("unexpected Y: %v", ys)
	}
}

func TestFloats_TextCellIsParseError(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "a.csv", "A\n1\nhello\n")
	ds, err := Load(p, DefaultOptions())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	_, err = ds.Floats("A")
	var pe *ParseError
	if !errors.As(err, &pe) || pe.Row != 2 || pe.Value != "hello" {
		t.Fatalf("expected ParseError at row 2, got %v", err)
	}
	if _, err := ds.Floats("a"); !errors.Is(err, ErrColumnNotFound) {
		t.Fatalf("lookup must be case-sensitive, got %v", err)
	}
}

func TestIndexFold(t *testing.T) {
	ds := newDataset("t", "t", [][]string{{" temp ", "Load"}}, DefaultOptions())
	if ds.IndexFold("TEMP") != 0 || ds.IndexFold(" load") != 1 {
		t.Fatalf("IndexFold failed on %q", ds.Header)
	}
	if ds.Index("TEMP") != -1 {
		t.Fatalf("Index must be exact")
	}
}

func TestParseNumeric_Locale(t *testing.T) {
	cases := map[string]float64{
		"1.000,5": 1000.5,
		"1,000.5": 1000.5,
		"0,25":    0.25,
		"12%":     12,
		"1,234":   1.234,
		"-3e2":    -300,
	}
	for in, want := range cases {
		got, ok := parseNumeric(in, Options{})
		if !ok || math.Abs(got-want) > 1e-12 {
			t.Fatalf("parseNumeric(%q) = %v,%v want %v", in, got, ok, want)
		}
	}
	got, ok := parseNumeric("1.234", Options{DecimalSeparator: ',', ThousandsSeparator: '.'})
	if !ok || got != 1234 {
		t.Fatalf("explicit locale: %v %v", got, ok)
	}
	got, ok = parseNumeric("1,234", Options{DecimalSeparator: '.'})
	if !ok || got != 1234 {
		t.Fatalf("explicit dot decimal: %v %v", got, ok)
	}
}

func TestLoadXLSX_RawValues(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "book.xlsx")
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	_ = f.SetSheetRow(sheet, "A1", &[]any{"A", "B"})
	_ = f.SetSheetRow(sheet, "A2", &[]any{1.25, 10})
	_ = f.SetSheetRow(sheet, "A3", &[]any{2.5})
	if err := f.SaveAs(p); err != nil {
		t.Fatalf("save: %v", err)
	}
	_ = f.Close()

	ds, err := Load(p, DefaultOptions())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ds.Rows() != 2 {
		t.Fatalf("rows = %d", ds.Rows())
	}
	bs, err := ds.Floats("B")
	if err != nil {
		t.Fatalf("floats B: %v", err)
	}
	if bs[0] != 10 || !math.IsNaN(bs[1]) {
		t.Fatalf("unexpected B: %v", bs)
	}
	if _, err := Load(p, Options{SheetName: "missing"}); err == nil {
		t.Fatalf("expected error for unknown sheet")
	}
}

func TestLoad_LegacyXLSUnsupported(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "old.xls", "not really a workbook")
	if _, err := Load(p, DefaultOptions()); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestResolve_SortedFilteredExcluded(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.csv", "A\n1\n")
	writeFile(t, dir, "a.CSV", "A\n1\n")
	writeFile(t, dir, "notes.txt", "x")
	out := writeFile(t, dir, "c.xlsx", "")

	strict := Filter{Extensions: []string{".xlsx", ".csv"}}
	files, err := Resolve(dir, strict, out)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "b.csv" {
		t.Fatalf("strict filter: %v", files)
	}

	files, err = Resolve(dir, AnyTabular)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(files) != 3 || filepath.Base(files[0]) != "a.CSV" {
		t.Fatalf("fold filter: %v", files)
	}

	empty := t.TempDir()
	if _, err := Resolve(empty, AnyTabular); !errors.Is(err, ErrNoSources) {
		t.Fatalf("expected ErrNoSources, got %v", err)
	}
}

func TestColumns_FirstFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.csv", "P,Q\n1,2\n")
	writeFile(t, dir, "a.csv", "X,Y,Z\n1,2,3\n")
	name, header, err := Columns(dir, DefaultOptions())
	if err != nil {
		t.Fatalf("columns: %v", err)
	}
	if name != "a.csv" || len(header) != 3 {
		t.Fatalf("got %s %v", name, header)
	}
}
