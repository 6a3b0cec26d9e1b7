package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brunobiangulo/geobench"
)

var similarFlags struct {
	place string
	k     int
}

var similarCmd = &cobra.Command{
	Use:   "similar",
	Short: "List places whose relation profiles resemble a place's",
	Long: "similar looks up the stored relation profile of --place and lists the\n" +
		"nearest profiles. Profiles are refreshed by every run with --db set.",
	RunE: runSimilar,
}

func init() {
	f := similarCmd.Flags()
	f.StringVar(&similarFlags.place, "place", "", "Place name (required)")
	f.IntVarP(&similarFlags.k, "k", "k", 5, "Number of neighbors")

	_ = similarCmd.MarkFlagRequired("place")
}

func runSimilar(cmd *cobra.Command, _ []string) error {
	if cfg.DBPath == "" {
		return geobench.ErrNoStore
	}
	engine, err := geobench.New(cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	neighbors, err := engine.SimilarPlaces(cmd.Context(), similarFlags.place, similarFlags.k)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for i, n := range neighbors {
		fmt.Fprintf(out, "%2d. %-30s %.4f\n", i+1, n.Place, n.Distance)
	}
	return nil
}
