package main

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/gibbs-motif/internal/config"
	"github.com/inodb/gibbs-motif/internal/duckdb"
	"github.com/inodb/gibbs-motif/internal/gibbs"
	"github.com/inodb/gibbs-motif/internal/output"
	"github.com/inodb/gibbs-motif/internal/seqio"
)

type searchFlags struct {
	output     string
	hitsTSV    string
	noProgress bool
}

func newSearchCmd() *cobra.Command {
	var f searchFlags

	cmd := &cobra.Command{
		Use:   "search <input-file>",
		Short: "Search sequences for the best motif and rescan for its occurrences",
		Long: `Search a file of DNA sequences (one per line, optionally gzipped, '-' for
stdin) for the motif with the highest relative entropy across a range of
motif lengths, then rescan both strands for all windows scoring at least as
well as the weakest member of the best motif set.`,
		Example: `  gibbs-motif search TraR.txt
  gibbs-motif search --k-min 10 --k-max 20 --trials 500 --seed 7 TraR.txt
  gibbs-motif search -f yaml -o result.yaml --hits-tsv hits.tsv TraR.txt
  gibbs-motif search --history TraR.txt`,
		Args: exactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(cmd, map[string]string{
				"k-min":        "search.k-min",
				"k-max":        "search.k-max",
				"trials":       "search.trials",
				"iterations":   "search.iterations",
				"workers":      "search.workers",
				"seed":         "search.seed",
				"strategy":     "search.strategy",
				"format":       "output.format",
				"trial-scores": "output.trial-scores",
				"history":      "history.enabled",
				"db":           "history.path",
			})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), args[0], f)
		},
	}

	d := gibbs.DefaultOptions()
	fs := cmd.Flags()
	fs.Int("k-min", d.KMin, "Shortest motif length to try")
	fs.Int("k-max", d.KMax, "Longest motif length to try")
	fs.Int("trials", d.TrialsPerK, "Independent trials per motif length")
	fs.Int("iterations", d.Iterations, "Restarts (or resampling rounds) per trial")
	fs.Int("workers", 0, "Worker goroutines (0 = one per CPU)")
	fs.Uint64("seed", 0, "Random seed (0 = pick one and report it)")
	fs.String("strategy", string(d.Strategy), "Trial strategy: restart or resample")
	fs.StringP("format", "f", output.FormatJSON, "Report format: json or yaml")
	fs.Bool("trial-scores", true, "Include every trial's score in the report")
	fs.Bool("history", false, "Save the run to the DuckDB history")
	fs.String("db", config.DefaultHistoryPath(), "DuckDB history file")
	fs.StringVarP(&f.output, "output", "o", "", "Report file (default: stdout)")
	fs.StringVar(&f.hitsTSV, "hits-tsv", "", "Also write hits as a tab-delimited file")
	fs.BoolVar(&f.noProgress, "no-progress", false, "Do not show the progress bar")

	return cmd
}

func runSearch(ctx context.Context, inputPath string, f searchFlags) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return usageError{err}
	}
	opts, err := cfg.Search.Options()
	if err != nil {
		return usageError{err}
	}

	logger, err := newLogger(cfg.Verbose)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	if opts.Seed == 0 {
		opts.Seed = rand.Uint64()
		logger.Info("picked random seed", zap.Uint64("seed", opts.Seed))
	}

	seqs, err := seqio.ReadAll(inputPath)
	if err != nil {
		return err
	}
	if len(seqs) == 0 {
		return fmt.Errorf("no sequences in %s", inputPath)
	}
	logger.Info("loaded sequences", zap.String("input", inputPath), zap.Int("count", len(seqs)))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var bar *progressBar
	if !f.noProgress {
		bar = newProgressBar(opts.TotalTrials())
		opts.Progress = bar.Update
	}

	searcher := gibbs.NewSearcher()
	searcher.SetLogger(logger)

	res, err := searcher.Search(ctx, seqs, opts)
	if bar != nil {
		bar.Close()
	}
	if err != nil {
		return err
	}
	if res.Failed > 0 {
		logger.Warn("some trials failed and were ignored",
			zap.Int("failed", res.Failed),
			zap.Int("succeeded", len(res.Trials)))
	}

	scan, err := searcher.Scan(res.Profile, res.Best.Motifs, seqs)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	report := output.NewReport(res.Profile, res.Best.Motifs, scan)
	report.SetSearch(res, opts)
	report.RunID = runID
	if !cfg.Output.TrialScores {
		report.TrialScores = nil
	}

	if err := writeReport(f.output, report, cfg.Output.Format); err != nil {
		return err
	}
	if f.hitsTSV != "" {
		if err := writeHitsTSV(f.hitsTSV, scan.Hits); err != nil {
			return err
		}
	}

	if cfg.History.Enabled {
		fp, err := duckdb.StatFile(inputPath)
		if err != nil {
			return fmt.Errorf("stat input: %w", err)
		}
		store, err := duckdb.Open(cfg.History.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		run := duckdb.NewRun(runID, fp, len(seqs), opts, res, scan)
		if err := store.SaveRun(run, res.Trials, scan.Hits); err != nil {
			return fmt.Errorf("save run: %w", err)
		}
		logger.Info("saved run", zap.String("run_id", runID), zap.String("db", cfg.History.Path))
	}

	fmt.Fprintf(os.Stderr, "Best motif length %d (relative entropy %.4f), %d hits, seed %d\n",
		res.Best.K, res.Best.Score, len(scan.Hits), opts.Seed)
	return nil
}

// createOutput opens path for writing, or returns stdout for "" and "-".
func createOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	out, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	return out, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func writeReport(path string, report *output.Report, format string) error {
	out, err := createOutput(path)
	if err != nil {
		return err
	}
	if err := output.WriteReport(out, report, format); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func writeHitsTSV(path string, hits []gibbs.Hit) error {
	out, err := createOutput(path)
	if err != nil {
		return err
	}
	if err := output.NewHitTabWriter(out).WriteAll(hits); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
