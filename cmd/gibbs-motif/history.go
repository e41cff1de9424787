package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inodb/gibbs-motif/internal/config"
	"github.com/inodb/gibbs-motif/internal/duckdb"
	"github.com/inodb/gibbs-motif/internal/output"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored search runs",
		Long:  "List, show or delete runs saved with 'search --history'.",
		Example: `  gibbs-motif history
  gibbs-motif history show <run-id>
  gibbs-motif history delete <run-id>`,
		Args: cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cmd.Root().PersistentPreRunE(cmd, args); err != nil {
				return err
			}
			return bindFlags(cmd, map[string]string{"db": "history.path"})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(s *duckdb.Store) error {
				return runHistoryList(s, limit)
			})
		},
	}

	cmd.PersistentFlags().String("db", config.DefaultHistoryPath(), "DuckDB history file")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to list (0 = all)")

	cmd.AddCommand(newHistoryShowCmd())
	cmd.AddCommand(newHistoryDeleteCmd())

	return cmd
}

func newHistoryShowCmd() *cobra.Command {
	var hitsOnly bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show a stored run and its hits",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(s *duckdb.Store) error {
				return runHistoryShow(s, args[0], hitsOnly)
			})
		},
	}
	cmd.Flags().BoolVar(&hitsOnly, "hits-only", false, "Only print the hit table")
	return cmd
}

func newHistoryDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <run-id>",
		Short: "Delete a stored run",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(s *duckdb.Store) error {
				if _, err := s.LoadRun(args[0]); err != nil {
					return err
				}
				if err := s.DeleteRun(args[0]); err != nil {
					return err
				}
				fmt.Printf("Deleted run %s\n", args[0])
				return nil
			})
		},
	}
}

// withStore opens the configured history database for the duration of fn.
func withStore(fn func(*duckdb.Store) error) error {
	path := viper.GetString("history.path")
	if path == "" {
		return usageError{fmt.Errorf("no history database configured (--db)")}
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("history database %s: %w", path, err)
	}
	s, err := duckdb.Open(path)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

func runHistoryList(s *duckdb.Store, limit int) error {
	runs, err := s.ListRuns(limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("# No runs stored.")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN ID\tCREATED\tINPUT\tK\tSCORE\tSTRATEGY\tSEED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.4f\t%s\t%d\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Input.Path,
			r.BestK, r.BestScore, r.Strategy, r.Seed)
	}
	return tw.Flush()
}

func runHistoryShow(s *duckdb.Store, runID string, hitsOnly bool) error {
	run, err := s.LoadRun(runID)
	if err != nil {
		return err
	}
	hits, err := s.LoadHits(runID)
	if err != nil {
		return err
	}

	if !hitsOnly {
		fmt.Printf("Run:        %s\n", run.ID)
		fmt.Printf("Created:    %s\n", run.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("Input:      %s (%d sequences)\n", run.Input.Path, run.Sequences)
		fmt.Printf("Search:     k=%d..%d, %d trials x %d iterations, %s, seed %d\n",
			run.KMin, run.KMax, run.TrialsPerK, run.Iterations, run.Strategy, run.Seed)
		fmt.Printf("Best:       k=%d, relative entropy %.4f\n", run.BestK, run.BestScore)
		fmt.Printf("Motifs:     %s\n", strings.Join(run.BestMotifs, ","))
		fmt.Printf("Threshold:  %s (%.6g)\n", run.WorstMotif, run.Threshold)
		if run.FailedTrials > 0 {
			fmt.Printf("Failed:     %d trials\n", run.FailedTrials)
		}
		fmt.Println()
	}

	return output.NewHitTabWriter(os.Stdout).WriteAll(hits)
}
