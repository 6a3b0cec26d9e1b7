package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/brunobiangulo/geobench"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run the selected drivers and write their per-driver files",
	RunE:  runGenerate,
}

func runGenerate(cmd *cobra.Command, _ []string) error {
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

	gen, genErr := engine.Generate(cmd.Context())
	if gen == nil {
		return genErr
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DRIVER\tYES/NO\tMCQ\tELAPSED\tERROR")
	for _, d := range gen.Drivers {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\n", d.Driver, d.YesNo, d.MCQ, d.Elapsed.Round(time.Millisecond), d.Error)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return genErr
}
