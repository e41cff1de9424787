package gibbs

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/gibbs-motif/internal/motif"
)

func TestWorstMotif(t *testing.T) {
	motifs := []string{"CGTA", "", "TCAC", "CGTC"}
	p, err := motif.BuildProfile(motifs)
	require.NoError(t, err)

	worst, err := WorstMotif(p, motifs)
	require.NoError(t, err)
	assert.Equal(t, "TCAC", worst.Motif)

	for _, m := range motifs {
		if m == "" {
			continue
		}
		score, err := motif.Score(p, m)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, score, worst.Score, m)
	}

	_, err = WorstMotif(p, []string{"", ""})
	assert.ErrorIs(t, err, motif.ErrInvalidMotifSet)

	_, err = WorstMotif(p, []string{"CGT"})
	assert.ErrorIs(t, err, motif.ErrLengthMismatch)
}

func TestNearestStartCodon(t *testing.T) {
	tests := []struct {
		name   string
		seq    string
		offset int
		k      int
		want   int
		ok     bool
	}{
		{"before closer", "ATGCCCCATG", 3, 4, 0, true},
		{"after closer", "ATGTTAAAATG", 5, 1, 8, true},
		{"tie", "ATGTCCTTATG", 4, 2, 0, false},
		{"none", "CCCCCCCC", 2, 3, 0, false},
		{"only before", "ATGCC", 3, 2, 0, true},
		{"only after", "CCATG", 0, 2, 2, true},
		{"overlapping hit ignored", "CATGC", 1, 3, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NearestStartCodon(tt.seq, tt.offset, tt.k)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestScanSequence(t *testing.T) {
	p, err := motif.BuildProfile([]string{"CCCC"})
	require.NoError(t, err)
	threshold, err := motif.Score(p, "CCCC")
	require.NoError(t, err)
	assert.InDelta(t, math.Pow(0.4, 4), threshold, 1e-15)

	hits, err := ScanSequence(p, threshold, "ATGCCCCATG", 7, StrandForward)
	require.NoError(t, err)
	require.Len(t, hits, 1)

	h := hits[0]
	assert.Equal(t, "CCCC", h.Match)
	assert.Equal(t, 3, h.Position)
	assert.Equal(t, "CCCATG", h.Window)
	assert.Equal(t, 7, h.SequenceIndex)
	assert.Equal(t, StrandForward, h.Strand)
	assert.InDelta(t, threshold, h.Score, 1e-15)
	require.NotNil(t, h.ClosestStartCodon)
	assert.Equal(t, 0, *h.ClosestStartCodon)

	_, err = ScanSequence(p, threshold, "CCC", 0, StrandForward)
	assert.ErrorIs(t, err, motif.ErrSequenceTooShort)
}

func TestScanSequence_WindowClipped(t *testing.T) {
	p, err := motif.BuildProfile([]string{"AC"})
	require.NoError(t, err)

	seq := ""
	for range 40 {
		seq += "AC"
	}
	threshold, err := motif.Score(p, "AC")
	require.NoError(t, err)
	hits, err := ScanSequence(p, threshold, seq, 0, StrandForward)
	require.NoError(t, err)
	require.Len(t, hits, 40)
	assert.Len(t, hits[0].Window, WindowSize)
	assert.Len(t, hits[39].Window, 2)
	for _, h := range hits {
		assert.Nil(t, h.ClosestStartCodon)
	}
}

func TestScan_BothStrands(t *testing.T) {
	s := NewSearcher()
	motifs := []string{"GATTACA"}
	p, err := motif.BuildProfile(motifs)
	require.NoError(t, err)

	seqs := []string{
		"CCGATTACACC",
		"TTTGTAATCTT", // reverse complement holds GATTACA
		"GAT",
	}
	res, err := s.Scan(p, motifs, seqs)
	require.NoError(t, err)
	assert.Equal(t, "GATTACA", res.Threshold.Motif)

	require.Len(t, res.Hits, 2)
	assert.Equal(t, 0, res.Hits[0].SequenceIndex)
	assert.Equal(t, StrandForward, res.Hits[0].Strand)
	assert.Equal(t, 2, res.Hits[0].Position)

	assert.Equal(t, 1, res.Hits[1].SequenceIndex)
	assert.Equal(t, StrandReverse, res.Hits[1].Strand)
	assert.Equal(t, "GATTACA", res.Hits[1].Match)
	assert.Equal(t, 2, res.Hits[1].Position)
}

func TestScan_BestMotifsMeetThreshold(t *testing.T) {
	s := NewSearcher()
	res, err := s.Search(context.Background(), testSeqs, smallOptions())
	require.NoError(t, err)

	scan, err := s.Scan(res.Profile, res.Best.Motifs, testSeqs)
	require.NoError(t, err)

	for i, m := range res.Best.Motifs {
		score, err := motif.Score(res.Profile, m)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, score, scan.Threshold.Score)

		// each member occurs in its own sequence, so it is found again
		found := false
		for _, h := range scan.Hits {
			if h.SequenceIndex == i && h.Strand == StrandForward && h.Match == m {
				found = true
			}
		}
		assert.True(t, found, "motif %s of sequence %d not rescanned", m, i)
	}
}

func TestSearchAndScan_EmptySequenceKeepsIndex(t *testing.T) {
	s := NewSearcher()
	seqs := []string{"CCGATTACACC", "", "TTTGTAATCTT"}

	opts := smallOptions()
	opts.KMin, opts.KMax = 7, 7
	res, err := s.Search(context.Background(), seqs, opts)
	require.NoError(t, err)
	require.Len(t, res.Best.Motifs, 3)
	assert.Equal(t, "", res.Best.Motifs[1])

	motifs := []string{"GATTACA", "", "GATTACA"}
	p, err := motif.BuildProfile(motifs)
	require.NoError(t, err)
	scan, err := s.Scan(p, motifs, seqs)
	require.NoError(t, err)

	require.Len(t, scan.Hits, 2)
	assert.Equal(t, 0, scan.Hits[0].SequenceIndex)
	assert.Equal(t, 2, scan.Hits[1].SequenceIndex)
	assert.Equal(t, StrandReverse, scan.Hits[1].Strand)
}
