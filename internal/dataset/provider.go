// Package dataset loads the creature table from disk exactly once.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/verte-zerg/dexboard/internal/model"
	"github.com/verte-zerg/dexboard/internal/store"
)

// DataLoadError reports a table that could not be loaded. It is fatal: no
// partial table is ever returned alongside it.
type DataLoadError struct {
	Path   string
	Reason string
	Err    error
}

func (e *DataLoadError) Error() string {
	msg := fmt.Sprintf("failed to load dataset %s", e.Path)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DataLoadError) Unwrap() error {
	return e.Err
}

// ColumnMap maps each field to the header used for it in the source file.
type ColumnMap map[model.Field]string

// DefaultColumns uses the field names as headers.
func DefaultColumns() ColumnMap {
	cols := make(ColumnMap, len(model.Fields))
	for _, f := range model.Fields {
		cols[f] = string(f)
	}
	return cols
}

// ColumnsFrom applies header overrides keyed by field name on top of the
// defaults.
func ColumnsFrom(overrides map[string]string) (ColumnMap, error) {
	cols := DefaultColumns()
	for name, header := range overrides {
		f, err := model.ParseField(name)
		if err != nil {
			return nil, err
		}
		cols[f] = header
	}
	return cols, nil
}

// Header returns the header for f, falling back to the field name.
func (c ColumnMap) Header(f model.Field) string {
	if h := strings.TrimSpace(c[f]); h != "" {
		return h
	}
	return string(f)
}

// Provider memoizes a table loaded from a fixed path.
type Provider struct {
	path    string
	columns ColumnMap

	once  sync.Once
	table *model.Table
	err   error
	loads int
}

// NewProvider returns a provider for path. A nil column map means defaults.
func NewProvider(path string, columns ColumnMap) *Provider {
	if columns == nil {
		columns = DefaultColumns()
	}
	return &Provider{path: path, columns: columns}
}

// Load reads the table on first use and returns the same table afterwards.
// A failed first load is remembered as well.
func (p *Provider) Load(ctx context.Context) (*model.Table, error) {
	p.once.Do(func() {
		p.loads++
		p.table, p.err = p.read(ctx)
	})
	return p.table, p.err
}

func (p *Provider) read(ctx context.Context) (*model.Table, error) {
	if strings.TrimSpace(p.path) == "" {
		return nil, &DataLoadError{Path: p.path, Reason: "dataset path is empty"}
	}
	info, err := os.Stat(p.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &DataLoadError{Path: p.path, Reason: "file not found"}
		}
		return nil, &DataLoadError{Path: p.path, Err: err}
	}
	if info.IsDir() {
		return nil, &DataLoadError{Path: p.path, Reason: "path is a directory"}
	}

	var records []model.Record
	if IsSQLitePath(p.path) {
		records, err = p.readSQLite(ctx)
	} else {
		records, err = p.readCSV()
	}
	if err != nil {
		var loadErr *DataLoadError
		if errors.As(err, &loadErr) {
			return nil, err
		}
		return nil, &DataLoadError{Path: p.path, Err: err}
	}
	return model.NewTable(records), nil
}

func (p *Provider) readCSV() ([]model.Record, error) {
	file, err := os.Open(p.path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only dataset.
			_ = cerr
		}
	}()
	records, err := ParseCSV(file, p.columns)
	if err != nil {
		var loadErr *DataLoadError
		if errors.As(err, &loadErr) {
			loadErr.Path = p.path
		}
		return nil, err
	}
	return records, nil
}

func (p *Provider) readSQLite(ctx context.Context) ([]model.Record, error) {
	st, err := store.OpenReadOnly(p.path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			// Best-effort close for read-only dataset.
			_ = cerr
		}
	}()
	missing, err := st.MissingColumns(ctx)
	if err != nil {
		return nil, &DataLoadError{Path: p.path, Reason: "not a dataset database", Err: err}
	}
	if len(missing) > 0 {
		return nil, &DataLoadError{Path: p.path, Reason: fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", "))}
	}
	return st.ListRecords(ctx)
}

// IsSQLitePath reports whether path names a SQLite dataset by extension.
func IsSQLitePath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	default:
		return false
	}
}
