package gibbs

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/gibbs-motif/internal/motif"
)

// WindowSize is the length of the sequence window reported with each hit.
const WindowSize = 50

// Strand identifies which strand a hit was found on.
type Strand int

const (
	StrandForward Strand = 1
	StrandReverse Strand = 2
)

func (s Strand) String() string {
	switch s {
	case StrandForward:
		return "forward"
	case StrandReverse:
		return "reverse"
	}
	return "unknown"
}

// Threshold is the weakest member of a motif set under its own profile.
type Threshold struct {
	Motif string
	Score float64
}

// Hit is a window whose score reaches the threshold.
type Hit struct {
	Match         string // the matched k-mer
	Window        string // up to WindowSize symbols starting at Position
	Position      int    // offset on the scanned strand
	Score         float64
	SequenceIndex int
	Strand        Strand

	// ClosestStartCodon is the offset of the nearest ATG, or nil when there
	// is none or the nearest ones on both sides are equally far.
	ClosestStartCodon *int
}

// ScanResult holds the rescan threshold and every accepted hit.
type ScanResult struct {
	Threshold Threshold
	Hits      []Hit
}

// WorstMotif returns the lowest-scoring present member of motifs under p.
func WorstMotif(p motif.Profile, motifs []string) (Threshold, error) {
	worst := Threshold{}
	found := false
	for _, m := range motifs {
		if m == "" {
			continue
		}
		score, err := motif.Score(p, m)
		if err != nil {
			return Threshold{}, err
		}
		if !found || score < worst.Score {
			worst = Threshold{Motif: m, Score: score}
			found = true
		}
	}
	if !found {
		return Threshold{}, fmt.Errorf("%w: no motifs", motif.ErrInvalidMotifSet)
	}
	return worst, nil
}

// NearestStartCodon looks for the rightmost ATG ending before offset and the
// leftmost ATG starting at or after offset+k, and returns the closer of the
// two. It reports false when neither exists or both are equally far away.
func NearestStartCodon(seq string, offset, k int) (int, bool) {
	before := strings.LastIndex(seq[:offset], motif.StartCodon)

	after := -1
	if end := offset + k; end <= len(seq) {
		if i := strings.Index(seq[end:], motif.StartCodon); i >= 0 {
			after = end + i
		}
	}

	switch {
	case before < 0 && after < 0:
		return 0, false
	case after < 0:
		return before, true
	case before < 0:
		return after, true
	}

	dBefore, dAfter := offset-before, after-offset
	switch {
	case dBefore < dAfter:
		return before, true
	case dAfter < dBefore:
		return after, true
	}
	return 0, false
}

// window returns up to WindowSize symbols of seq starting at offset.
func window(seq string, offset int) string {
	end := min(offset+WindowSize, len(seq))
	return seq[offset:end]
}

// ScanSequence slides p over seq and returns every window scoring at least
// threshold.
func ScanSequence(p motif.Profile, threshold float64, seq string, index int, strand Strand) ([]Hit, error) {
	scores, err := motif.Slide(p, seq)
	if err != nil {
		return nil, err
	}
	k := p.Len()

	var hits []Hit
	for i, score := range scores {
		if score < threshold {
			continue
		}
		h := Hit{
			Match:         seq[i : i+k],
			Window:        window(seq, i),
			Position:      i,
			Score:         score,
			SequenceIndex: index,
			Strand:        strand,
		}
		if pos, ok := NearestStartCodon(seq, i, k); ok {
			h.ClosestStartCodon = &pos
		}
		hits = append(hits, h)
	}
	return hits, nil
}

// Scan rescans every sequence and its reverse complement with the profile of
// motifs, accepting windows that score at least as well as the weakest
// member of motifs. Sequences shorter than the motif are skipped.
func (s *Searcher) Scan(p motif.Profile, motifs []string, seqs []string) (*ScanResult, error) {
	threshold, err := WorstMotif(p, motifs)
	if err != nil {
		return nil, fmt.Errorf("worst motif: %w", err)
	}

	res := &ScanResult{Threshold: threshold}
	for i, seq := range seqs {
		for _, strand := range []Strand{StrandForward, StrandReverse} {
			target := seq
			if strand == StrandReverse {
				target = motif.ReverseComplement(seq)
			}
			hits, err := ScanSequence(p, threshold.Score, target, i, strand)
			if errors.Is(err, motif.ErrSequenceTooShort) {
				s.logger.Warn("skipping sequence shorter than motif",
					zap.Int("sequence", i),
					zap.Int("length", len(seq)),
					zap.Int("k", p.Len()))
				break
			}
			if err != nil {
				return nil, fmt.Errorf("scan sequence %d: %w", i, err)
			}
			res.Hits = append(res.Hits, hits...)
		}
	}

	s.logger.Info("rescan finished",
		zap.Float64("threshold", threshold.Score),
		zap.String("worst_motif", threshold.Motif),
		zap.Int("hits", len(res.Hits)))

	return res, nil
}
