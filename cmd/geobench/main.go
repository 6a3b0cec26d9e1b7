// geobench generates the geographic spatial-relation QA benchmark.
//
// Usage:
//
//	geobench run [--config geobench.yaml] [--relations dir] [--results dir] [--seed n] [--db path] [--xlsx path]
//	geobench generate [--drivers atomic,dis_dir,...]
//	geobench merge
//	geobench inspect
//	geobench similar --place London [--k 5] --db path
//	geobench runs --db path
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/brunobiangulo/geobench"
	"github.com/brunobiangulo/geobench/generator"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	config       string
	relationsDir string
	resultsDir   string
	seed         uint64
	drivers      []string
	dbPath       string
	xlsxPath     string
	concurrency  int
	distinct     bool
	logLevel     string
	logFormat    string
}

// cfg is resolved before every command runs.
var cfg geobench.Config

var rootCmd = &cobra.Command{
	Use:   "geobench",
	Short: "Generate a geographic spatial-relation QA benchmark",
	Long: "geobench turns direction, topology and distance relation tables into\n" +
		"yes/no and multiple-choice questions, one file pair per generator,\n" +
		"and merges them into a unified benchmark.",
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE: resolveConfig,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVarP(&rootFlags.config, "config", "c", "", "YAML config file")
	f.StringVar(&rootFlags.relationsDir, "relations", "", "Directory holding dir, top and dis tables")
	f.StringVar(&rootFlags.resultsDir, "results", "", "Output directory")
	f.Uint64Var(&rootFlags.seed, "seed", 0, "Random seed")
	f.StringSliceVar(&rootFlags.drivers, "drivers", nil, "Generators to run: "+strings.Join(generator.Names, ","))
	f.StringVar(&rootFlags.dbPath, "db", "", "SQLite database for run history and place profiles")
	f.StringVar(&rootFlags.xlsxPath, "xlsx", "", "Also export every table to this XLSX workbook")
	f.IntVar(&rootFlags.concurrency, "concurrency", 0, "Maximum generators running at once")
	f.BoolVar(&rootFlags.distinct, "distinct-options", false, "Never repeat a place among MCQ options")
	f.StringVar(&rootFlags.logLevel, "log-level", "", "debug, info, warn or error")
	f.StringVar(&rootFlags.logFormat, "log-format", "", "text or json")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(similarCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.Version = version
}

// resolveConfig loads --config (or the defaults) and applies explicitly set
// flags on top.
func resolveConfig(cmd *cobra.Command, _ []string) error {
	if rootFlags.config != "" {
		c, err := geobench.LoadConfig(rootFlags.config)
		if err != nil {
			return err
		}
		cfg = c
	} else {
		cfg = geobench.DefaultConfig()
	}

	f := cmd.Flags()
	if f.Changed("relations") {
		cfg.RelationsDir = rootFlags.relationsDir
	}
	if f.Changed("results") {
		cfg.ResultsDir = rootFlags.resultsDir
	}
	if f.Changed("seed") {
		cfg.Seed = rootFlags.seed
	}
	if f.Changed("drivers") {
		cfg.Drivers = rootFlags.drivers
	}
	if f.Changed("db") {
		cfg.DBPath = rootFlags.dbPath
	}
	if f.Changed("xlsx") {
		cfg.XLSXPath = rootFlags.xlsxPath
	}
	if f.Changed("concurrency") {
		cfg.Concurrency = rootFlags.concurrency
	}
	if f.Changed("distinct-options") {
		cfg.DistinctOptions = rootFlags.distinct
	}
	if f.Changed("log-level") {
		cfg.LogLevel = rootFlags.logLevel
	}
	if f.Changed("log-format") {
		cfg.LogFormat = rootFlags.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	setupLogging(cfg, cmd.ErrOrStderr())
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
