package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/brunobiangulo/geobench"
)

var inspectFlags struct {
	json bool
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show how many viable token combinations each driver can sample",
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectFlags.json, "json", false, "Print JSON instead of a table")
}

func runInspect(cmd *cobra.Command, _ []string) error {
	engine, err := geobench.New(cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	ins, err := engine.Inspect(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if inspectFlags.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(ins)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DRIVER\tDIMENSIONS\tCOMBINATIONS\tWITNESSES\tPLACES")
	for _, in := range ins {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\n",
			in.Driver, strings.Join(in.Dimensions, "+"), in.Combinations, in.Witnesses, in.Places)
	}
	return tw.Flush()
}
