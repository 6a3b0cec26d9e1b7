package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/brunobiangulo/geobench"
	"github.com/brunobiangulo/geobench/report"
)

// MetadataFile records how a run was produced.
const MetadataFile = "metadata.json"

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate every driver's files, merge them and report",
	RunE:  runRun,
}

func runRun(cmd *cobra.Command, _ []string) error {
	logFile, err := setupLogTee(cfg, cmd.ErrOrStderr(), cfg.ResultsDir)
	if err != nil {
		return err
	}
	defer logFile.Close()

	engine, err := geobench.New(cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	started := time.Now()
	rr, runErr := engine.Run(cmd.Context())
	if rr == nil {
		return runErr
	}

	meta := map[string]interface{}{
		"run_id":     rr.RunID,
		"status":     rr.Status,
		"seed":       rr.Seed,
		"git_commit": geobench.GitCommit(),
		"go_version": runtime.Version(),
		"started_at": started.UTC().Format(time.RFC3339),
		"elapsed_ms": rr.Elapsed.Milliseconds(),
		"drivers":    rr.Drivers,
		"counts":     rr.Counts,
		"files":      rr.Files,
		"config":     cfg,
	}
	if err := writeJSON(filepath.Join(cfg.ResultsDir, MetadataFile), meta); err != nil {
		return err
	}

	if rr.Report != nil {
		fmt.Fprint(cmd.OutOrStdout(), report.FormatReport(rr.Report))
	}
	return runErr
}

// writeJSON marshals v to indented JSON and writes it to path.
func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
