package dataset

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupported indicates a file format that cannot be loaded.
var ErrUnsupported = errors.New("unsupported file format")

// Reader loads one tabular file format.
type Reader interface {
	CanRead(path string) bool
	Read(path string, opt Options) (*Dataset, error)
}

var registry []Reader

// Register adds a reader implementation to the registry.
func Register(r Reader) {
	registry = append(registry, r)
}

// Load selects a reader by file extension and loads the file.
func Load(path string, opt Options) (*Dataset, error) {
	for _, r := range registry {
		if r.CanRead(path) {
			return r.Read(path, opt)
		}
	}
	return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupported)
}

func hasExt(path string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// xlsReader claims legacy BIFF workbooks so they fail with a clear reason.
type xlsReader struct{}

func (xlsReader) CanRead(path string) bool { return hasExt(path, ".xls") }

func (xlsReader) Read(path string, _ Options) (*Dataset, error) {
	return nil, fmt.Errorf("%s: legacy .xls workbook: %w", filepath.Base(path), ErrUnsupported)
}

func init() {
	Register(csvReader{})
	Register(xlsxReader{})
	Register(xlsReader{})
}
