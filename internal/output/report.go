// Package output renders search results.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/inodb/gibbs-motif/internal/gibbs"
	"github.com/inodb/gibbs-motif/internal/motif"
)

// Report formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// NoStartCodon is reported when no start codon is closest to a hit.
const NoStartCodon = "none"

// Report is the persisted result of a search and rescan. Field names are
// relied on by downstream tooling.
type Report struct {
	RunID       string          `json:"Run-ID,omitempty" yaml:"Run-ID,omitempty"`
	Seed        uint64          `json:"Seed" yaml:"Seed"`
	Strategy    string          `json:"Strategy,omitempty" yaml:"Strategy,omitempty"`
	BestK       int             `json:"Best-K" yaml:"Best-K"`
	BestScore   float64         `json:"Best-Score" yaml:"Best-Score"`
	BestMotifs  []string        `json:"Best-Motifs" yaml:"Best-Motifs"`
	Profile     []ProfileColumn `json:"Profile" yaml:"Profile"`
	WorstMotif  WorstMotif      `json:"Worst-Motif" yaml:"Worst-Motif"`
	TrialScores []TrialScore    `json:"Trial-Scores,omitempty" yaml:"Trial-Scores,omitempty"`
	Hits        []HitRecord     `json:"Hits" yaml:"Hits"`
}

// ProfileColumn is one position of the best profile.
type ProfileColumn struct {
	A float64 `json:"A" yaml:"A"`
	C float64 `json:"C" yaml:"C"`
	G float64 `json:"G" yaml:"G"`
	T float64 `json:"T" yaml:"T"`
}

// WorstMotif is the rescan acceptance threshold.
type WorstMotif struct {
	Motif string  `json:"Motif" yaml:"Motif"`
	Score float64 `json:"Score" yaml:"Score"`
}

// TrialScore is the fitness of one trial.
type TrialScore struct {
	K     int     `json:"K" yaml:"K"`
	Trial int     `json:"Trial" yaml:"Trial"`
	Score float64 `json:"Score" yaml:"Score"`
}

// HitRecord is one rescan hit.
type HitRecord struct {
	Score         float64 `json:"Score" yaml:"Score"`
	Position      int     `json:"Position" yaml:"Position"`
	Sequence      string  `json:"50mer-Sequence" yaml:"50mer-Sequence"`
	ClosestGene   string  `json:"Closest-Protein-Coding-Gene" yaml:"Closest-Protein-Coding-Gene"`
	SequenceIndex int     `json:"DNASequence#" yaml:"DNASequence#"`
	Strand        int     `json:"Strand #" yaml:"Strand #"`
}

// NewReport builds a report for a profile, the motif set it was built from
// and the rescan that used it.
func NewReport(p motif.Profile, motifs []string, scan *gibbs.ScanResult) *Report {
	r := &Report{
		BestK:      p.Len(),
		BestMotifs: motifs,
		Profile:    make([]ProfileColumn, len(p)),
		WorstMotif: WorstMotif{Motif: scan.Threshold.Motif, Score: scan.Threshold.Score},
		Hits:       make([]HitRecord, len(scan.Hits)),
	}
	for i, col := range p {
		r.Profile[i] = ProfileColumn{A: col[0], C: col[1], G: col[2], T: col[3]}
	}
	for i, h := range scan.Hits {
		r.Hits[i] = NewHitRecord(h)
	}
	return r
}

// SetSearch records the search that produced the report's motif set.
func (r *Report) SetSearch(res *gibbs.SearchResult, opts gibbs.Options) {
	r.Seed = opts.Seed
	r.Strategy = string(opts.Strategy)
	r.BestK = res.Best.K
	r.BestScore = res.Best.Score
	r.TrialScores = make([]TrialScore, len(res.Trials))
	for i, t := range res.Trials {
		r.TrialScores[i] = TrialScore{K: t.K, Trial: t.Trial, Score: t.Score}
	}
}

// NewHitRecord converts a hit to its report form.
func NewHitRecord(h gibbs.Hit) HitRecord {
	return HitRecord{
		Score:         h.Score,
		Position:      h.Position,
		Sequence:      h.Window,
		ClosestGene:   FormatStartCodon(h.ClosestStartCodon),
		SequenceIndex: h.SequenceIndex,
		Strand:        int(h.Strand),
	}
}

// FormatStartCodon renders a start codon offset, or NoStartCodon.
func FormatStartCodon(pos *int) string {
	if pos == nil {
		return NoStartCodon
	}
	return strconv.Itoa(*pos)
}

// ValidFormat reports whether format is a supported report format.
func ValidFormat(format string) bool {
	return format == FormatJSON || format == FormatYAML
}

// WriteReport writes the report to w in the given format.
func WriteReport(w io.Writer, r *Report, format string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encode json report: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encode yaml report: %w", err)
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown report format %q", format)
}
