package motif

import (
	"fmt"
	"math"
)

// Score returns the likelihood of kmer under the profile: the product of the
// per-position probabilities of the observed symbols.
func Score(p Profile, kmer string) (float64, error) {
	if len(kmer) != len(p) {
		return 0, fmt.Errorf("%w: k-mer %q has length %d, profile has %d", ErrLengthMismatch, kmer, len(kmer), len(p))
	}
	score := 1.0
	for i := 0; i < len(kmer); i++ {
		score *= p[i].Prob(kmer[i])
	}
	return score, nil
}

// LogScore returns log2 of Score. It orders k-mers the same way as Score but
// does not underflow for long motifs.
func LogScore(p Profile, kmer string) (float64, error) {
	if len(kmer) != len(p) {
		return 0, fmt.Errorf("%w: k-mer %q has length %d, profile has %d", ErrLengthMismatch, kmer, len(kmer), len(p))
	}
	var score float64
	for i := 0; i < len(kmer); i++ {
		score += math.Log2(p[i].Prob(kmer[i]))
	}
	return score, nil
}

// Slide scores every window of length p.Len() in seq, in offset order.
func Slide(p Profile, seq string) ([]float64, error) {
	k := len(p)
	n := len(seq) - k + 1
	if k == 0 || n <= 0 {
		return nil, fmt.Errorf("%w: sequence of length %d cannot hold a %d-mer", ErrSequenceTooShort, len(seq), k)
	}
	scores := make([]float64, n)
	for i := 0; i < n; i++ {
		// lengths match by construction
		scores[i], _ = Score(p, seq[i:i+k])
	}
	return scores, nil
}
