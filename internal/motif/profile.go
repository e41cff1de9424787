// Package motif provides position weight matrices and the scoring primitives
// used by the motif search.
package motif

import (
	"fmt"
	"strings"
)

// Column holds the probability of each nucleotide at one motif position,
// indexed in Nucleotides order.
type Column [4]float64

// Prob returns the probability of nucleotide b, or 0 for symbols outside
// the alphabet.
func (c Column) Prob(b byte) float64 {
	i := baseIndex[b]
	if i < 0 {
		return 0
	}
	return c[i]
}

// Profile is a position weight matrix: one Column per motif position.
type Profile []Column

// Len returns the motif length the profile was built for.
func (p Profile) Len() int {
	return len(p)
}

// String renders the profile as one line per position.
func (p Profile) String() string {
	var sb strings.Builder
	for i, col := range p {
		fmt.Fprintf(&sb, "%d\tA:%.6f\tC:%.6f\tG:%.6f\tT:%.6f\n", i, col[0], col[1], col[2], col[3])
	}
	return sb.String()
}

// BuildProfile builds a profile from a motif set using Laplace pseudocounts.
//
// Every count starts at 1. Empty strings mark sequences that could not host a
// motif and are skipped. All columns are normalized by the pseudocount-inflated
// total of the first column.
func BuildProfile(motifs []string) (Profile, error) {
	k := -1
	present := 0
	for i, m := range motifs {
		if m == "" {
			continue
		}
		if k == -1 {
			k = len(m)
		} else if len(m) != k {
			return nil, fmt.Errorf("%w: motif %d has length %d, expected %d", ErrInvalidMotifSet, i, len(m), k)
		}
		if !IsValid(m) {
			return nil, fmt.Errorf("%w: motif %d (%q) contains a symbol outside %s", ErrInvalidMotifSet, i, m, Nucleotides)
		}
		present++
	}
	if present == 0 {
		return nil, fmt.Errorf("%w: no motifs", ErrInvalidMotifSet)
	}

	profile := make(Profile, k)
	var divisor float64
	for pos := 0; pos < k; pos++ {
		counts := [4]int{1, 1, 1, 1}
		for _, m := range motifs {
			if m == "" {
				continue
			}
			counts[baseIndex[m[pos]]]++
		}
		if pos == 0 {
			divisor = float64(counts[0] + counts[1] + counts[2] + counts[3])
		}
		for i, c := range counts {
			profile[pos][i] = float64(c) / divisor
		}
	}
	return profile, nil
}
