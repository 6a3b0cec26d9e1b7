package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/brunobiangulo/geobench"
)

func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"dir.csv": "place1,place2,bearing,relation\nLondon,Manchester,160,north\nCamden,Leeds,170,south\n",
		"top.csv": "place1,place2,relation\nCamden,London,within\nLeeds,York,borders\n",
		"dis.csv": "place1,place2,distance_m,relation\nCamden,Leeds,280000,far\nLeeds,York,35000,near\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

// execute runs the root command in-process and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRunCommand(t *testing.T) {
	rel, results := writeFixture(t), t.TempDir()
	out, err := execute(t, "run", "--relations", rel, "--results", results, "--seed", "7")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "=== Benchmark Report:") {
		t.Errorf("report not printed:\n%s", out)
	}

	for _, name := range []string{MetadataFile, LogFile, "geobenchmark_all_mcq.csv", "geoBenchmark_all_yesno.csv"} {
		if _, err := os.Stat(filepath.Join(results, name)); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(results, MetadataFile))
	if err != nil {
		t.Fatal(err)
	}
	var meta map[string]interface{}
	if err := json.Unmarshal(data, &meta); err != nil {
		t.Fatalf("metadata: %v", err)
	}
	if meta["status"] != geobench.StatusCompleted {
		t.Errorf("status: got %v", meta["status"])
	}
	if meta["seed"] != float64(7) {
		t.Errorf("seed: got %v, want 7", meta["seed"])
	}
	if id, _ := meta["run_id"].(string); id == "" {
		t.Error("run_id missing")
	}
}

func TestInspectCommandJSON(t *testing.T) {
	out, err := execute(t, "inspect", "--json", "--relations", writeFixture(t), "--results", t.TempDir())
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	var got []geobench.Inspection
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decoding %q: %v", out, err)
	}
	if len(got) != 5 {
		t.Fatalf("got %d drivers, want 5", len(got))
	}
	if got[0].Driver != "atomic" || got[0].Combinations == 0 {
		t.Errorf("atomic inspection: %+v", got[0])
	}
}

func TestUnknownDriverRejected(t *testing.T) {
	_, err := execute(t, "generate", "--drivers", "four_concept", "--results", t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "unknown driver") {
		t.Fatalf("expected unknown driver error, got %v", err)
	}
	rootFlags.drivers = nil
	rootCmd.PersistentFlags().Lookup("drivers").Changed = false
}

func TestSimilarNeedsDatabase(t *testing.T) {
	_, err := execute(t, "similar", "--place", "London")
	if err != geobench.ErrNoStore {
		t.Fatalf("got %v, want ErrNoStore", err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]string{
		"debug":   "DEBUG",
		"WARN":    "WARN",
		"warning": "WARN",
		"error":   "ERROR",
		"":        "INFO",
		"verbose": "INFO",
	}
	for in, want := range tests {
		if got := parseLevel(in).String(); got != want {
			t.Errorf("parseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}
