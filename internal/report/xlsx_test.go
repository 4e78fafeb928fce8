package report

import (
	"path/filepath"
	"testing"
)

func TestWriteXLSX_RoundTrip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out", "r.xlsx")
	rows := [][]any{
		{"File Name", "Cross_Entropy", "Reason"},
		{"a.csv", 1.5, "OK"},
		{"b.csv", nil, "Column 1 only has one unique value: [3]"},
	}
	if err := WriteXLSX(p, rows); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadXLSX(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("rows = %d", len(got))
	}
	if got[0][1] != "Cross_Entropy" || got[1][1] != "1.5" {
		t.Fatalf("unexpected content: %v", got)
	}
	if got[2][1] != "" || got[2][2] != "Column 1 only has one unique value: [3]" {
		t.Fatalf("empty cell not preserved: %v", got[2])
	}
}
