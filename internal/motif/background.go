package motif

import (
	"fmt"
	"math"
)

// Background holds the relative frequency of each nucleotide across a
// sequence collection, indexed in Nucleotides order.
type Background [4]float64

// Freq returns the background frequency of nucleotide b.
func (bg Background) Freq(b byte) float64 {
	i := baseIndex[b]
	if i < 0 {
		return 0
	}
	return bg[i]
}

// BackgroundFrequencies counts each nucleotide across all sequences and
// divides by their combined length. Symbols outside the alphabet count
// towards the length but not towards any nucleotide.
func BackgroundFrequencies(seqs []string) (Background, error) {
	var counts [4]int
	total := 0
	for _, s := range seqs {
		total += len(s)
		for i := 0; i < len(s); i++ {
			if j := baseIndex[s[i]]; j >= 0 {
				counts[j]++
			}
		}
	}
	if total == 0 {
		return Background{}, fmt.Errorf("%w: no nucleotides in %d sequences", ErrEmptyInput, len(seqs))
	}

	var bg Background
	for i, c := range counts {
		bg[i] = float64(c) / float64(total)
	}
	return bg, nil
}

// RelativeEntropy returns the Kullback-Leibler divergence, in bits, of the
// profile from the background. Larger values mean the profile is further from
// chance; unlike raw likelihoods it is comparable across motif lengths.
func RelativeEntropy(p Profile, bg Background) (float64, error) {
	var entropy float64
	for pos, col := range p {
		for i, prob := range col {
			if prob == 0 {
				continue
			}
			if bg[i] == 0 {
				return 0, fmt.Errorf("%w: background frequency of %c is zero at position %d", ErrDegenerateDistribution, Nucleotides[i], pos)
			}
			entropy += prob * math.Log2(prob/bg[i])
		}
	}
	return entropy, nil
}
