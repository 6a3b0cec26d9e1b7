package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/brunobiangulo/geobench"
)

var runsFlags struct {
	delete string
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded runs, or delete one",
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().StringVar(&runsFlags.delete, "delete", "", "Delete the run with this ID and its rows")
}

func runRuns(cmd *cobra.Command, _ []string) error {
	if cfg.DBPath == "" {
		return geobench.ErrNoStore
	}
	engine, err := geobench.New(cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	s := engine.Store()
	if runsFlags.delete != "" {
		if err := s.DeleteRun(ctx, runsFlags.delete); err != nil {
			return err
		}
		fmt.Fprintf(out, "deleted run %s\n", runsFlags.delete)
		return nil
	}

	runs, err := s.ListRuns(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTATUS\tSEED\tCOMMIT\tSTARTED\tELAPSED_MS")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%d\n", r.ID, r.Status, r.Seed, r.GitCommit, r.StartedAt, r.ElapsedMs)
	}
	return tw.Flush()
}
