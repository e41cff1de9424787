package gibbs

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync/atomic"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/inodb/gibbs-motif/internal/motif"
)

// Options controls a motif search.
type Options struct {
	KMin       int
	KMax       int
	TrialsPerK int
	Iterations int // restarts (or resampling rounds) per trial
	Workers    int // 0 means runtime.NumCPU()
	Seed       uint64
	Strategy   Strategy

	// Progress, if set, is called after each finished trial. It may be
	// called from several goroutines at once.
	Progress func(done, total int)
}

// DefaultOptions returns the settings of a full search: lengths 4 to 29,
// 2000 trials per length and 200 restarts per trial.
func DefaultOptions() Options {
	return Options{
		KMin:       4,
		KMax:       29,
		TrialsPerK: 2000,
		Iterations: 200,
		Strategy:   StrategyRestart,
	}
}

// Validate reports the first invalid setting.
func (o Options) Validate() error {
	switch {
	case o.KMin < 1:
		return fmt.Errorf("minimum motif length must be positive, got %d", o.KMin)
	case o.KMax < o.KMin:
		return fmt.Errorf("maximum motif length %d is below minimum %d", o.KMax, o.KMin)
	case o.TrialsPerK < 1:
		return fmt.Errorf("trials per length must be positive, got %d", o.TrialsPerK)
	case o.Iterations < 1:
		return fmt.Errorf("iterations must be positive, got %d", o.Iterations)
	}
	if _, err := ParseStrategy(string(o.Strategy)); err != nil {
		return err
	}
	return nil
}

// TotalTrials returns the number of trials the search will run.
func (o Options) TotalTrials() int {
	return (o.KMax - o.KMin + 1) * o.TrialsPerK
}

// TrialRand returns the random source for one trial. Each (seed, k, trial)
// triple gets an independent stream, so results do not depend on scheduling.
func TrialRand(seed uint64, k, trial int) *rand.Rand {
	return rand.New(rand.NewPCG(seed, uint64(k)<<32|uint64(uint32(trial))))
}

// SearchResult is the outcome of a search.
type SearchResult struct {
	Best       TrialResult
	Profile    motif.Profile
	Background motif.Background
	Trials     []TrialResult // successful trials in (k, trial) order
	Failed     int

	// TrialErrors combines the errors of failed trials, if any.
	TrialErrors error
}

// Searcher runs motif searches.
type Searcher struct {
	logger *zap.Logger
}

// NewSearcher creates a searcher that logs nothing.
func NewSearcher() *Searcher {
	return &Searcher{logger: zap.NewNop()}
}

// SetLogger sets the logger for warning and info messages.
func (s *Searcher) SetLogger(l *zap.Logger) {
	s.logger = l
}

// Search runs opts.TrialsPerK trials for every motif length from opts.KMin
// to opts.KMax and returns the trial with the highest relative entropy.
// Ties go to the smaller k, then the smaller trial index.
//
// A failing trial is logged and left out of the comparison; Search only
// fails when no trial succeeds or ctx is cancelled.
func (s *Searcher) Search(ctx context.Context, seqs []string, opts Options) (*SearchResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	bg, err := motif.BackgroundFrequencies(seqs)
	if err != nil {
		return nil, fmt.Errorf("background frequencies: %w", err)
	}

	run := RunTrial
	if opts.Strategy == StrategyResample {
		run = RunResampleTrial
	}

	total := opts.TotalTrials()
	s.logger.Info("starting motif search",
		zap.Int("sequences", len(seqs)),
		zap.Int("k_min", opts.KMin),
		zap.Int("k_max", opts.KMax),
		zap.Int("trials", total),
		zap.Int("iterations", opts.Iterations),
		zap.String("strategy", string(opts.Strategy)),
		zap.Uint64("seed", opts.Seed))

	items := make(chan TrialItem, 2*max(opts.Workers, 1))
	go func() {
		defer close(items)
		seq := 0
		for k := opts.KMin; k <= opts.KMax; k++ {
			for trial := 0; trial < opts.TrialsPerK; trial++ {
				select {
				case items <- TrialItem{Seq: seq, K: k, Trial: trial}:
				case <-ctx.Done():
					return
				}
				seq++
			}
		}
	}()

	var done atomic.Int64
	results := ParallelTrials(ctx, items, opts.Workers, func(item TrialItem) TrialResult {
		r, err := run(TrialRand(opts.Seed, item.K, item.Trial), seqs, bg, item.K, opts.Iterations)
		r.Err = err
		if opts.Progress != nil {
			opts.Progress(int(done.Add(1)), total)
		}
		return r
	})

	res := &SearchResult{Background: bg, Trials: make([]TrialResult, 0, total)}
	found := false
	if err := OrderedCollect(results, func(r TrialResult) error {
		if r.Err != nil {
			res.Failed++
			res.TrialErrors = multierr.Append(res.TrialErrors,
				fmt.Errorf("k=%d trial=%d: %w", r.K, r.Trial, r.Err))
			s.logger.Warn("trial failed",
				zap.Int("k", r.K),
				zap.Int("trial", r.Trial),
				zap.Error(r.Err))
			return nil
		}
		res.Trials = append(res.Trials, r)
		if !found || r.Score > res.Best.Score {
			res.Best = r
			found = true
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("search cancelled: %w", err)
	}
	if !found {
		if res.TrialErrors == nil {
			return nil, errors.New("no trials were run")
		}
		return nil, fmt.Errorf("all %d trials failed: %w", res.Failed, res.TrialErrors)
	}

	res.Profile, err = motif.BuildProfile(res.Best.Motifs)
	if err != nil {
		return nil, fmt.Errorf("best profile: %w", err)
	}

	s.logger.Info("motif search finished",
		zap.Int("best_k", res.Best.K),
		zap.Int("best_trial", res.Best.Trial),
		zap.Float64("best_score", res.Best.Score),
		zap.Int("failed_trials", res.Failed))

	return res, nil
}
