package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoSources is returned when a folder holds no matching tabular files.
var ErrNoSources = errors.New("no Excel/CSV files found")

// Filter selects source files by extension.
type Filter struct {
	Extensions []string
	// FoldCase matches extensions case-insensitively.
	FoldCase bool
}

// AnyTabular matches every supported extension regardless of case.
var AnyTabular = Filter{Extensions: []string{".csv", ".xls", ".xlsx"}, FoldCase: true}

// Match reports whether name carries one of the filter's extensions.
func (f Filter) Match(name string) bool {
	if f.FoldCase {
		name = strings.ToLower(name)
	}
	for _, ext := range f.Extensions {
		if f.FoldCase {
			ext = strings.ToLower(ext)
		}
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// ListSources returns matching regular files directly inside dir, sorted by name.
func ListSources(dir string, f Filter) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !f.Match(e.Name()) {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

// Resolve expands source into the files a batch should visit. A regular file
// is returned as-is; a directory is listed with f. Paths in exclude are skipped.
func Resolve(source string, f Filter, exclude ...string) ([]string, error) {
	info, err := os.Stat(source)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	if !info.IsDir() {
		return []string{source}, nil
	}
	files, err := ListSources(source, f)
	if err != nil {
		return nil, err
	}
	skip := make(map[string]struct{}, len(exclude))
	for _, p := range exclude {
		if p == "" {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			skip[abs] = struct{}{}
		}
	}
	kept := files[:0]
	for _, p := range files {
		if abs, err := filepath.Abs(p); err == nil {
			if _, ok := skip[abs]; ok {
				continue
			}
		}
		kept = append(kept, p)
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("%s: %w", source, ErrNoSources)
	}
	return kept, nil
}

// Columns loads the header of the first source file, the way a user would
// pick columns before starting a batch.
func Columns(source string, opt Options) (file string, header []string, err error) {
	files, err := Resolve(source, AnyTabular)
	if err != nil {
		return "", nil, err
	}
	ds, err := Load(files[0], opt)
	if err != nil {
		return "", nil, err
	}
	return ds.Name, ds.Header, nil
}
