package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/gibbs-motif/internal/config"
	"github.com/inodb/gibbs-motif/internal/duckdb"
	"github.com/inodb/gibbs-motif/internal/gibbs"
	"github.com/inodb/gibbs-motif/internal/motif"
	"github.com/inodb/gibbs-motif/internal/output"
	"github.com/inodb/gibbs-motif/internal/seqio"
)

type scanFlags struct {
	motifs  string
	runID   string
	output  string
	hitsTSV string
}

func newScanCmd() *cobra.Command {
	var f scanFlags

	cmd := &cobra.Command{
		Use:   "scan <input-file>",
		Short: "Rescan sequences with a known motif set",
		Long: `Build a profile from a motif set and report every window on both strands
scoring at least as well as the weakest member of the set. The motif set is
given with --motifs, or taken from a stored run with --run.`,
		Example: `  gibbs-motif scan --motifs CGTA,TCAC,CGTC genome.txt
  gibbs-motif scan --run 3f1c... --hits-tsv hits.tsv genome.txt`,
		Args: exactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if flagChanged(cmd.Flags(), "motifs") == flagChanged(cmd.Flags(), "run") {
				return usageError{fmt.Errorf("exactly one of --motifs or --run is required")}
			}
			return bindFlags(cmd, map[string]string{
				"format": "output.format",
				"db":     "history.path",
			})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(args[0], f)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&f.motifs, "motifs", "", "Comma-separated motif set")
	fs.StringVar(&f.runID, "run", "", "Use the best motif set of a stored run")
	fs.StringP("format", "f", output.FormatJSON, "Report format: json or yaml")
	fs.String("db", config.DefaultHistoryPath(), "DuckDB history file")
	fs.StringVarP(&f.output, "output", "o", "", "Report file (default: stdout)")
	fs.StringVar(&f.hitsTSV, "hits-tsv", "", "Also write hits as a tab-delimited file")

	return cmd
}

func runScan(inputPath string, f scanFlags) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return usageError{err}
	}

	logger, err := newLogger(cfg.Verbose)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	var motifs []string
	if f.runID != "" {
		store, err := duckdb.Open(cfg.History.Path)
		if err != nil {
			return err
		}
		run, err := store.LoadRun(f.runID)
		store.Close()
		if err != nil {
			return err
		}
		motifs = run.BestMotifs
		logger.Info("loaded motif set", zap.String("run_id", run.ID), zap.Int("k", run.BestK))
	} else {
		motifs = parseMotifs(f.motifs)
	}

	profile, err := motif.BuildProfile(motifs)
	if err != nil {
		return usageError{err}
	}

	seqs, err := seqio.ReadAll(inputPath)
	if err != nil {
		return err
	}

	searcher := gibbs.NewSearcher()
	searcher.SetLogger(logger)
	scan, err := searcher.Scan(profile, motifs, seqs)
	if err != nil {
		return err
	}

	report := output.NewReport(profile, motifs, scan)
	report.RunID = f.runID
	if err := writeReport(f.output, report, cfg.Output.Format); err != nil {
		return err
	}
	if f.hitsTSV != "" {
		return writeHitsTSV(f.hitsTSV, scan.Hits)
	}
	return nil
}

// parseMotifs splits a comma-separated motif list, upper-casing each entry.
func parseMotifs(s string) []string {
	var motifs []string
	for _, m := range strings.Split(s, ",") {
		m = strings.ToUpper(strings.TrimSpace(m))
		if m != "" {
			motifs = append(motifs, m)
		}
	}
	return motifs
}
