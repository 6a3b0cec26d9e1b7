// Package merge concatenates the per-driver benchmark files into the
// unified yes/no and multiple-choice tables.
package merge

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

	"github.com/brunobiangulo/geobench/generator"
	"github.com/brunobiangulo/geobench/relation"
	"github.com/brunobiangulo/geobench/tableio"
)

// Merged output file names.
const (
	MCQFile   = "geobenchmark_all_mcq.csv"
	YesNoFile = "geoBenchmark_all_yesno.csv"
)

// Unknown fills optional columns absent from a source file.
const Unknown = "unknown"

// Flags mark which dimensions a question exercises.
type Flags struct {
	Dir int `json:"dir"`
	Dis int `json:"dis"`
	Top int `json:"top"`
}

// FlagsFor returns the flags for a set of dimensions.
func FlagsFor(dims ...relation.Dimension) Flags {
	var f Flags
	for _, d := range dims {
		switch d {
		case relation.Direction:
			f.Dir = 1
		case relation.Distance:
			f.Dis = 1
		case relation.Topology:
			f.Top = 1
		}
	}
	return f
}

// Source describes one per-driver file pair. A nil Flags means the flags
// are derived per row from the relation column.
type Source struct {
	Driver  string
	Concept int
	Flags   *Flags
}

func fixedFlags(dims ...relation.Dimension) *Flags {
	f := FlagsFor(dims...)
	return &f
}

// Sources lists the per-driver files in concatenation order.
var Sources = []Source{
	{Driver: generator.Atomic, Concept: 1},
	{Driver: generator.DisDir, Concept: 2, Flags: fixedFlags(relation.Direction, relation.Distance)},
	{Driver: generator.DirTop, Concept: 2, Flags: fixedFlags(relation.Direction, relation.Topology)},
	{Driver: generator.TopDis, Concept: 2, Flags: fixedFlags(relation.Distance, relation.Topology)},
	{Driver: generator.ThreeConcept, Concept: 3, Flags: fixedFlags(relation.Direction, relation.Distance, relation.Topology)},
}

func (s Source) flags(sheet *tableio.Sheet, row []string) Flags {
	if s.Flags != nil {
		return *s.Flags
	}
	tok, err := relation.ParseToken(sheet.Value(row, "relation"))
	if err != nil {
		return Flags{}
	}
	d, _ := tok.Dimension()
	return FlagsFor(d)
}

// YesNoRow is one row of the unified yes/no table.
type YesNoRow struct {
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Transition string `json:"transition"`
	Concept    int    `json:"concept"`
	Flags
}

// MCQRow is one row of the unified multiple-choice table.
type MCQRow struct {
	Question      string `json:"question"`
	Options       string `json:"options"`
	OptionSources string `json:"option_sources"`
	Answer        string `json:"answer"`
	Concept       int    `json:"concept"`
	Flags
}

// Benchmark is the merged result.
type Benchmark struct {
	YesNo   []YesNoRow
	MCQ     []MCQRow
	Missing []string // per-driver files that were not found
}

// Merger reads per-driver files from a results directory laid out as
// <dir>/binary and <dir>/mcqs.
type Merger struct {
	Dir     string
	Sources []Source
	Reader  *tableio.Registry
}

// New returns a merger over the default sources.
func New(dir string) *Merger {
	return &Merger{Dir: dir, Sources: Sources, Reader: tableio.NewRegistry()}
}

// Merge reads every source in order. Missing files are skipped with a
// warning; a file without question or answer columns is fatal.
func (m *Merger) Merge(ctx context.Context) (*Benchmark, error) {
	b := &Benchmark{}
	for _, src := range m.Sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		mcqPath := filepath.Join(m.Dir, generator.MCQDir, generator.MCQFile(src.Driver))
		sheet, err := m.read(ctx, mcqPath)
		if err != nil {
			return nil, err
		}
		if sheet == nil {
			b.Missing = append(b.Missing, mcqPath)
		} else if err := b.addMCQ(src, sheet); err != nil {
			return nil, err
		}

		ynPath := filepath.Join(m.Dir, generator.YesNoDir, generator.YesNoFile(src.Driver))
		sheet, err = m.read(ctx, ynPath)
		if err != nil {
			return nil, err
		}
		if sheet == nil {
			b.Missing = append(b.Missing, ynPath)
		} else if err := b.addYesNo(src, sheet); err != nil {
			return nil, err
		}
	}
	slog.Info("merge: complete", "yesno_rows", len(b.YesNo), "mcq_rows", len(b.MCQ), "missing_files", len(b.Missing))
	return b, nil
}

// read returns nil, nil for a missing file.
func (m *Merger) read(ctx context.Context, path string) (*tableio.Sheet, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		slog.Warn("merge: missing file", "path", path)
		return nil, nil
	}
	sheet, err := m.Reader.ReadFile(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return sheet, nil
}

func valueOr(sheet *tableio.Sheet, row []string, col string) string {
	if !sheet.Has(col) {
		return Unknown
	}
	return sheet.Value(row, col)
}

func (b *Benchmark) addMCQ(src Source, sheet *tableio.Sheet) error {
	if err := sheet.Require("question", "options", "answer"); err != nil {
		return err
	}
	for _, row := range sheet.Rows {
		b.MCQ = append(b.MCQ, MCQRow{
			Question:      sheet.Value(row, "question"),
			Options:       sheet.Value(row, "options"),
			OptionSources: valueOr(sheet, row, "option_sources"),
			Answer:        sheet.Value(row, "answer"),
			Concept:       src.Concept,
			Flags:         src.flags(sheet, row),
		})
	}
	return nil
}

func (b *Benchmark) addYesNo(src Source, sheet *tableio.Sheet) error {
	if err := sheet.Require("question", "answer"); err != nil {
		return err
	}
	for _, row := range sheet.Rows {
		b.YesNo = append(b.YesNo, YesNoRow{
			Question:   sheet.Value(row, "question"),
			Answer:     sheet.Value(row, "answer"),
			Transition: valueOr(sheet, row, "transition"),
			Concept:    src.Concept,
			Flags:      src.flags(sheet, row),
		})
	}
	return nil
}

// MCQHeader is the unified multiple-choice schema.
var MCQHeader = []string{"question", "options", "option_sources", "answer", "concept", "dir", "dis", "top"}

// YesNoHeader is the unified yes/no schema.
var YesNoHeader = []string{"question", "answer", "transition", "concept", "dir", "dis", "top"}

func (f Flags) cells() []string {
	return []string{strconv.Itoa(f.Dir), strconv.Itoa(f.Dis), strconv.Itoa(f.Top)}
}

// MCQRecords projects the multiple-choice rows onto MCQHeader.
func (b *Benchmark) MCQRecords() [][]string {
	out := make([][]string, len(b.MCQ))
	for i, r := range b.MCQ {
		out[i] = append([]string{r.Question, r.Options, r.OptionSources, r.Answer, strconv.Itoa(r.Concept)}, r.Flags.cells()...)
	}
	return out
}

// YesNoRecords projects the yes/no rows onto YesNoHeader.
func (b *Benchmark) YesNoRecords() [][]string {
	out := make([][]string, len(b.YesNo))
	for i, r := range b.YesNo {
		out[i] = append([]string{r.Question, r.Answer, r.Transition, strconv.Itoa(r.Concept)}, r.Flags.cells()...)
	}
	return out
}

// Paths returns the merged output paths under dir.
func Paths(dir string) (mcq, yesno string) {
	return filepath.Join(dir, generator.MCQDir, MCQFile), filepath.Join(dir, generator.YesNoDir, YesNoFile)
}

// Write saves both merged tables under dir.
func (b *Benchmark) Write(dir string) error {
	mcqPath, ynPath := Paths(dir)
	if err := tableio.WriteCSV(mcqPath, MCQHeader, b.MCQRecords()); err != nil {
		return err
	}
	if err := tableio.WriteCSV(ynPath, YesNoHeader, b.YesNoRecords()); err != nil {
		return err
	}
	slog.Info("merge: wrote benchmark", "mcq", mcqPath, "yesno", ynPath)
	return nil
}

// ConceptKey renders a concept label such as "2:dir+top" for reports.
func ConceptKey(concept int, f Flags) string {
	var dims []string
	if f.Dir == 1 {
		dims = append(dims, "dir")
	}
	if f.Dis == 1 {
		dims = append(dims, "dis")
	}
	if f.Top == 1 {
		dims = append(dims, "top")
	}
	return strconv.Itoa(concept) + ":" + strings.Join(dims, "+")
}
