package motif

import "github.com/bebop/poly/transform"

// Nucleotides is the alphabet in column order.
const Nucleotides = "ACGT"

// StartCodon is the literal used as a proxy for the start of a coding gene.
const StartCodon = "ATG"

// baseIndex maps a nucleotide to its column index, or -1.
var baseIndex [256]int8

func init() {
	for i := range baseIndex {
		baseIndex[i] = -1
	}
	baseIndex['A'] = 0
	baseIndex['C'] = 1
	baseIndex['G'] = 2
	baseIndex['T'] = 3
}

// BaseIndex returns the column index of b in Nucleotides, or -1 if b is not
// one of A, C, G, T.
func BaseIndex(b byte) int {
	return int(baseIndex[b])
}

// IsValid reports whether s consists only of A, C, G and T.
func IsValid(s string) bool {
	for i := 0; i < len(s); i++ {
		if baseIndex[s[i]] < 0 {
			return false
		}
	}
	return true
}

// ReverseComplement returns the complementary strand of s read 5' to 3'.
// s is expected to hold only A, C, G and T.
func ReverseComplement(s string) string {
	return transform.ReverseComplement(s)
}
