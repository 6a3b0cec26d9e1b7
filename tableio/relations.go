package tableio

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/brunobiangulo/geobench/relation"
)

// RelationFile returns the base name of a dimension's relation table
// without extension: dir, top or dis.
func RelationFile(d relation.Dimension) string { return d.String() }

// measureColumn names the optional numeric column of each table.
func measureColumn(d relation.Dimension) string {
	switch d {
	case relation.Direction:
		return "bearing"
	case relation.Distance:
		return "distance_m"
	}
	return ""
}

// FindRelationFile looks for dir/<name>.<ext> in the registry's format
// order and returns the first existing path.
func (r *Registry) FindRelationFile(dir string, d relation.Dimension) (string, bool) {
	for _, ext := range r.Formats() {
		p := filepath.Join(dir, RelationFile(d)+"."+ext)
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}

// LoadRelation reads one relation table. Rows whose token is outside the
// dimension's vocabulary are dropped.
func (r *Registry) LoadRelation(ctx context.Context, path string, d relation.Dimension) (*relation.Table, error) {
	sheet, err := r.ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return FactsFromSheet(sheet, d)
}

// FactsFromSheet converts a sheet with place1, place2 and relation
// columns into a table of dimension d.
func FactsFromSheet(sheet *Sheet, d relation.Dimension) (*relation.Table, error) {
	if err := sheet.Require("place1", "place2", "relation"); err != nil {
		return nil, err
	}
	mcol := measureColumn(d)

	facts := make([]relation.Fact, 0, len(sheet.Rows))
	skipped := 0
	for i, row := range sheet.Rows {
		tok := relation.Token(strings.ToLower(strings.TrimSpace(sheet.Value(row, "relation"))))
		if !tok.In(d) {
			skipped++
			continue
		}
		f := relation.Fact{
			Subject:  strings.TrimSpace(sheet.Value(row, "place1")),
			Object:   strings.TrimSpace(sheet.Value(row, "place2")),
			Relation: tok,
		}
		if mcol != "" {
			if v := strings.TrimSpace(sheet.Value(row, mcol)); v != "" {
				m, err := strconv.ParseFloat(v, 64)
				if err != nil {
					return nil, fmt.Errorf("%s row %d: parsing %s: %w", sheet.Name, i+2, mcol, err)
				}
				f.Measure = m
			}
		}
		facts = append(facts, f)
	}
	if skipped > 0 {
		slog.Debug("tableio: dropped rows with foreign tokens", "sheet", sheet.Name, "dimension", d.Name(), "rows", skipped)
	}
	return relation.NewTable(d, facts), nil
}

// LoadRelations reads the three relation tables from dir. A missing
// table is logged and loaded empty.
func (r *Registry) LoadRelations(ctx context.Context, dir string) (map[relation.Dimension]*relation.Table, error) {
	out := make(map[relation.Dimension]*relation.Table, len(relation.Dimensions))
	for _, d := range relation.Dimensions {
		path, ok := r.FindRelationFile(dir, d)
		if !ok {
			slog.Warn("relation table missing, using empty table", "dir", dir, "dimension", d.Name())
			out[d] = relation.NewTable(d, nil)
			continue
		}
		tbl, err := r.LoadRelation(ctx, path, d)
		if errors.Is(err, fs.ErrNotExist) {
			slog.Warn("relation table missing, using empty table", "path", path)
			out[d] = relation.NewTable(d, nil)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
		slog.Info("relation table loaded", "path", path, "facts", tbl.Len())
		out[d] = tbl
	}
	return out, nil
}
