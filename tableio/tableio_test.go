package tableio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/brunobiangulo/geobench/relation"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadRelationsCSV(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "dir.csv"),
		"place1,place2,bearing,relation\nLondon,Manchester,340.5,north\nLeeds,York,12,northeast\n")
	writeFile(t, filepath.Join(dir, "top.csv"),
		"\ufeffplace1,place2,relation\nCamden,London,within\n")

	tables, err := NewRegistry().LoadRelations(context.Background(), dir)
	if err != nil {
		t.Fatalf("LoadRelations: %v", err)
	}

	want := []relation.Fact{{Subject: "London", Object: "Manchester", Relation: relation.North, Measure: 340.5}}
	if diff := cmp.Diff(want, tables[relation.Direction].Facts); diff != "" {
		t.Errorf("direction facts (-want +got):\n%s", diff)
	}
	if got := tables[relation.Topology].Len(); got != 1 {
		t.Errorf("topology facts: got %d, want 1", got)
	}
	// dis.csv is absent: loaded empty, not an error.
	if tbl := tables[relation.Distance]; tbl == nil || tbl.Len() != 0 {
		t.Errorf("distance table: got %+v, want empty", tbl)
	}
}

func TestLoadRelationMissingColumn(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "dis.csv"), "place1,relation,distance_m\nA,near,10\n")

	_, err := NewRegistry().LoadRelations(context.Background(), dir)
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("got %v, want ErrMissingColumn", err)
	}
}

func TestLoadRelationBadMeasure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dis.csv")
	writeFile(t, path, "place1,place2,relation,distance_m\nA,B,near,ten\n")

	if _, err := NewRegistry().LoadRelation(context.Background(), path, relation.Distance); err == nil {
		t.Fatal("expected parse error for non-numeric distance")
	}
}

func TestCSVRoundTripMultiline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcqs", "atomic_mcq.csv")
	header := []string{"question", "options", "answer"}
	records := [][]string{
		{"Which city is near to Leeds?", "A. York\nB. Bradford\nC. Hull", "B. Bradford"},
	}
	if err := WriteCSV(path, header, records); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	sheet, err := NewRegistry().ReadFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if diff := cmp.Diff(header, sheet.Header); diff != "" {
		t.Errorf("header (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(records, sheet.Rows); diff != "" {
		t.Errorf("rows (-want +got):\n%s", diff)
	}
	if got := sheet.Value(sheet.Rows[0], "transition"); got != "" {
		t.Errorf("absent column: got %q, want empty", got)
	}
}

func TestWorkbookRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.xlsx")
	var wb Workbook
	wb.Add("dir", []string{"place1", "place2", "bearing", "relation"}, [][]string{
		{"London", "Manchester", "340.5", "north"},
	})
	wb.Add("top", []string{"place1", "place2", "relation"}, nil)
	if err := wb.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	tbl, err := NewRegistry().LoadRelation(context.Background(), path, relation.Direction)
	if err != nil {
		t.Fatalf("LoadRelation: %v", err)
	}
	want := []relation.Fact{{Subject: "London", Object: "Manchester", Relation: relation.North, Measure: 340.5}}
	if diff := cmp.Diff(want, tbl.Facts); diff != "" {
		t.Errorf("facts (-want +got):\n%s", diff)
	}
}

func TestRegistryUnsupported(t *testing.T) {
	reg := NewRegistry()
	for _, format := range []string{"csv", "XLSX"} {
		if _, err := reg.Get(format); err != nil {
			t.Errorf("Get(%q): %v", format, err)
		}
	}
	if _, err := reg.Get("json"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Get(json): got %v, want ErrUnsupportedFormat", err)
	}
}
