// Package gibbs searches for over-represented motifs with randomized trials
// and rescans sequences for occurrences of the best motif found.
package gibbs

import (
	"fmt"
	"math/rand/v2"

	"github.com/inodb/gibbs-motif/internal/motif"
)

// Strategy selects how a trial explores motif positions.
type Strategy string

const (
	// StrategyRestart draws fresh uniform start positions every iteration
	// and keeps the best-scoring draw.
	StrategyRestart Strategy = "restart"
	// StrategyResample starts from uniform positions and then, each
	// iteration, resamples one sequence's motif from a profile built on
	// the others.
	StrategyResample Strategy = "resample"
)

// ParseStrategy converts a strategy name to a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch s := Strategy(name); s {
	case StrategyRestart, StrategyResample:
		return s, nil
	case "":
		return StrategyRestart, nil
	}
	return "", fmt.Errorf("unknown strategy %q (want %s or %s)", name, StrategyRestart, StrategyResample)
}

// TrialResult is the best motif set found by one trial.
type TrialResult struct {
	Seq    int // position in the (k, trial) enumeration
	K      int
	Trial  int
	Motifs []string
	Score  float64 // relative entropy of the motif set's profile
	Err    error
}

// RandomStarts draws a uniform start offset in [0, len(seq)-k] for each
// sequence. Sequences shorter than k get -1.
func RandomStarts(r *rand.Rand, seqs []string, k int) []int {
	starts := make([]int, len(seqs))
	for i, s := range seqs {
		if len(s) < k {
			starts[i] = -1
			continue
		}
		starts[i] = r.IntN(len(s) - k + 1)
	}
	return starts
}

// ExtractMotifs returns the k-mer at starts[i] of each sequence, or "" where
// starts[i] is -1.
func ExtractMotifs(seqs []string, starts []int, k int) []string {
	motifs := make([]string, len(seqs))
	for i, s := range seqs {
		if starts[i] < 0 {
			continue
		}
		motifs[i] = s[starts[i] : starts[i]+k]
	}
	return motifs
}

// hostable counts the sequences long enough to hold a k-mer.
func hostable(seqs []string, k int) int {
	n := 0
	for _, s := range seqs {
		if len(s) >= k {
			n++
		}
	}
	return n
}

func checkTrial(seqs []string, k, iterations int) error {
	if k < 1 {
		return fmt.Errorf("motif length must be positive, got %d", k)
	}
	if iterations < 1 {
		return fmt.Errorf("iterations must be positive, got %d", iterations)
	}
	if hostable(seqs, k) == 0 {
		return fmt.Errorf("%w: no sequence can hold a %d-mer", motif.ErrSequenceTooShort, k)
	}
	return nil
}

// scoreMotifs builds the profile of a motif set and scores it against the
// background.
func scoreMotifs(motifs []string, bg motif.Background) (float64, error) {
	profile, err := motif.BuildProfile(motifs)
	if err != nil {
		return 0, err
	}
	return motif.RelativeEntropy(profile, bg)
}

// RunTrial runs iterations independent uniform restarts for motif length k
// and returns the motif set with the highest relative entropy. Earlier
// iterations win ties.
func RunTrial(r *rand.Rand, seqs []string, bg motif.Background, k, iterations int) (TrialResult, error) {
	if err := checkTrial(seqs, k, iterations); err != nil {
		return TrialResult{}, err
	}

	best := TrialResult{K: k}
	for i := 0; i < iterations; i++ {
		motifs := ExtractMotifs(seqs, RandomStarts(r, seqs, k), k)
		score, err := scoreMotifs(motifs, bg)
		if err != nil {
			return TrialResult{}, fmt.Errorf("iteration %d: %w", i, err)
		}
		if best.Motifs == nil || score > best.Score {
			best.Motifs = motifs
			best.Score = score
		}
	}
	return best, nil
}

// RunResampleTrial refines a single uniform draw in place: each iteration
// picks one sequence, builds a profile from the remaining motifs and draws a
// new start for the picked sequence weighted by the profile's window scores.
func RunResampleTrial(r *rand.Rand, seqs []string, bg motif.Background, k, iterations int) (TrialResult, error) {
	if err := checkTrial(seqs, k, iterations); err != nil {
		return TrialResult{}, err
	}

	var candidates []int
	for i, s := range seqs {
		if len(s) >= k {
			candidates = append(candidates, i)
		}
	}

	starts := RandomStarts(r, seqs, k)
	motifs := ExtractMotifs(seqs, starts, k)
	score, err := scoreMotifs(motifs, bg)
	if err != nil {
		return TrialResult{}, err
	}
	best := TrialResult{K: k, Motifs: motifs, Score: score}

	if len(candidates) < 2 {
		return best, nil
	}

	for i := 0; i < iterations; i++ {
		pick := candidates[r.IntN(len(candidates))]

		others := make([]string, len(motifs))
		copy(others, motifs)
		others[pick] = ""
		profile, err := motif.BuildProfile(others)
		if err != nil {
			return TrialResult{}, fmt.Errorf("iteration %d: %w", i, err)
		}

		weights, err := motif.Slide(profile, seqs[pick])
		if err != nil {
			return TrialResult{}, fmt.Errorf("iteration %d: %w", i, err)
		}
		start, err := motif.WeightedChoice(r, weights)
		if err != nil {
			return TrialResult{}, fmt.Errorf("iteration %d: %w", i, err)
		}

		starts[pick] = start
		motifs = ExtractMotifs(seqs, starts, k)
		score, err := scoreMotifs(motifs, bg)
		if err != nil {
			return TrialResult{}, fmt.Errorf("iteration %d: %w", i, err)
		}
		if score > best.Score {
			best.Motifs = motifs
			best.Score = score
		}
	}
	return best, nil
}
