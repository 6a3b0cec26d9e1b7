// Package tableio reads relation tables and benchmark files from CSV or
// XLSX and writes row sets back out.
package tableio

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrMissingColumn is returned when a required column is absent.
	ErrMissingColumn = errors.New("geobench: missing column")

	// ErrUnsupportedFormat is returned for file extensions with no reader.
	ErrUnsupportedFormat = errors.New("geobench: unsupported table format")
)

// Sheet is a header plus data rows. Rows may be shorter than the header.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]string
	index  map[string]int
}

// NewSheet normalizes header names (trimmed, BOM stripped) and indexes them.
func NewSheet(name string, header []string, rows [][]string) *Sheet {
	s := &Sheet{Name: name, Rows: rows, index: make(map[string]int, len(header))}
	s.Header = make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		s.Header[i] = h
		if _, dup := s.index[h]; !dup {
			s.index[h] = i
		}
	}
	return s
}

// Has reports whether the sheet has column col.
func (s *Sheet) Has(col string) bool {
	_, ok := s.index[col]
	return ok
}

// Require fails with ErrMissingColumn naming every absent column.
func (s *Sheet) Require(cols ...string) error {
	var missing []string
	for _, c := range cols {
		if !s.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s in %s", ErrMissingColumn, strings.Join(missing, ", "), s.Name)
	}
	return nil
}

// Value returns row's cell for col, or "" when the column or cell is absent.
func (s *Sheet) Value(row []string, col string) string {
	i, ok := s.index[col]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// Reader loads a Sheet from one file format.
type Reader interface {
	Read(ctx context.Context, path string) (*Sheet, error)
	SupportedFormats() []string
}

// CSVReader reads comma-separated files with a header row.
type CSVReader struct{}

func (r *CSVReader) SupportedFormats() []string { return []string{"csv"} }

func (r *CSVReader) Read(ctx context.Context, path string) (*Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening CSV: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return NewSheet(filepath.Base(path), nil, nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV %s: %w", path, err)
		}
		rows = append(rows, rec)
		if len(rows)%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
	}
	return NewSheet(filepath.Base(path), header, rows), nil
}

// XLSXReader reads the first worksheet of a workbook.
type XLSXReader struct{}

func (r *XLSXReader) SupportedFormats() []string { return []string{"xlsx"} }

func (r *XLSXReader) Read(ctx context.Context, path string) (*Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening XLSX: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets in %s", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return NewSheet(sheets[0], nil, nil), nil
	}
	return NewSheet(sheets[0], rows[0], rows[1:]), nil
}

// Registry maps file extensions to readers.
type Registry struct {
	readers map[string]Reader
}

// NewRegistry registers the CSV and XLSX readers.
func NewRegistry() *Registry {
	r := &Registry{readers: make(map[string]Reader)}
	for _, rd := range []Reader{&CSVReader{}, &XLSXReader{}} {
		for _, f := range rd.SupportedFormats() {
			r.readers[f] = rd
		}
	}
	return r
}

// Get returns the reader for format (an extension without the dot).
func (r *Registry) Get(format string) (Reader, error) {
	rd, ok := r.readers[strings.ToLower(format)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return rd, nil
}

// Formats returns the registered extensions, CSV first.
func (r *Registry) Formats() []string {
	return []string{"csv", "xlsx"}
}

// ReadFile picks the reader by path extension.
func (r *Registry) ReadFile(ctx context.Context, path string) (*Sheet, error) {
	rd, err := r.Get(strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return nil, err
	}
	return rd.Read(ctx, path)
}
