package tableio

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// WriteCSV writes header and records to path, creating parent
// directories. Cells containing newlines are quoted.
func WriteCSV(path string, header []string, records [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating CSV: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("writing CSV header: %w", err)
	}
	if err := w.WriteAll(records); err != nil {
		f.Close()
		return fmt.Errorf("writing CSV %s: %w", path, err)
	}
	return f.Close()
}

// Workbook accumulates named sheets and saves them as one XLSX file.
type Workbook struct {
	sheets []*Sheet
}

// Add appends a sheet. Names longer than 31 characters are truncated.
func (wb *Workbook) Add(name string, header []string, records [][]string) {
	if len(name) > 31 {
		name = name[:31]
	}
	wb.sheets = append(wb.sheets, NewSheet(name, header, records))
}

// Len returns the number of sheets added.
func (wb *Workbook) Len() int { return len(wb.sheets) }

// Save writes every sheet with excelize's stream writer.
func (wb *Workbook) Save(path string) error {
	if len(wb.sheets) == 0 {
		return fmt.Errorf("workbook %s has no sheets", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, s := range wb.sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.Name); err != nil {
				return fmt.Errorf("naming sheet %s: %w", s.Name, err)
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			return fmt.Errorf("adding sheet %s: %w", s.Name, err)
		}
		if err := streamSheet(f, s); err != nil {
			return err
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving XLSX: %w", err)
	}
	return nil
}

func streamSheet(f *excelize.File, s *Sheet) error {
	sw, err := f.NewStreamWriter(s.Name)
	if err != nil {
		return fmt.Errorf("stream writer for %s: %w", s.Name, err)
	}
	write := func(n int, cells []string) error {
		cell, err := excelize.CoordinatesToCellName(1, n)
		if err != nil {
			return err
		}
		vals := make([]interface{}, len(cells))
		for i, c := range cells {
			vals[i] = c
		}
		return sw.SetRow(cell, vals)
	}
	if err := write(1, s.Header); err != nil {
		return fmt.Errorf("writing %s header: %w", s.Name, err)
	}
	for i, row := range s.Rows {
		if err := write(i+2, row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", s.Name, i+2, err)
		}
	}
	return sw.Flush()
}
