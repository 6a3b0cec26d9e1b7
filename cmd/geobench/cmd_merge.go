package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brunobiangulo/geobench"
	"github.com/brunobiangulo/geobench/merge"
	"github.com/brunobiangulo/geobench/report"
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge existing per-driver files into the unified benchmark",
	RunE:  runMerge,
}

func runMerge(cmd *cobra.Command, _ []string) error {
	engine, err := geobench.New(cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	b, err := engine.Merge(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	mcqPath, yesnoPath := merge.Paths(cfg.ResultsDir)
	fmt.Fprintf(out, "%s: %d rows\n", mcqPath, len(b.MCQ))
	fmt.Fprintf(out, "%s: %d rows\n", yesnoPath, len(b.YesNo))
	for _, m := range b.Missing {
		fmt.Fprintf(out, "missing: %s\n", m)
	}
	fmt.Fprint(out, report.FormatReport(report.Build(cfg.ResultsDir, b)))
	return nil
}
