package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/inodb/gibbs-motif/internal/gibbs"
	"github.com/inodb/gibbs-motif/internal/motif"
)

func testReport(t *testing.T) *Report {
	t.Helper()
	motifs := []string{"CGTA", "TCAC", "CGTC"}
	p, err := motif.BuildProfile(motifs)
	require.NoError(t, err)

	pos := 12
	scan := &gibbs.ScanResult{
		Threshold: gibbs.Threshold{Motif: "TCAC", Score: 0.001},
		Hits: []gibbs.Hit{
			{Match: "CGTA", Window: "CGTAC", Position: 3, Score: 0.01, SequenceIndex: 0, Strand: gibbs.StrandForward, ClosestStartCodon: &pos},
			{Match: "TCAC", Window: "TCACA", Position: 5, Score: 0.001, SequenceIndex: 1, Strand: gibbs.StrandReverse},
		},
	}

	r := NewReport(p, motifs, scan)
	r.SetSearch(&gibbs.SearchResult{
		Best: gibbs.TrialResult{K: 4, Trial: 1, Motifs: motifs, Score: 1.25},
		Trials: []gibbs.TrialResult{
			{K: 4, Trial: 0, Score: 0.5},
			{K: 4, Trial: 1, Score: 1.25},
		},
	}, gibbs.Options{Seed: 42, Strategy: gibbs.StrategyRestart})
	return r
}

func TestNewReport(t *testing.T) {
	r := testReport(t)

	assert.Equal(t, 4, r.BestK)
	assert.Equal(t, 1.25, r.BestScore)
	assert.Equal(t, uint64(42), r.Seed)
	require.Len(t, r.Profile, 4)
	assert.InDelta(t, 3.0/7, r.Profile[0].C, 1e-12)
	assert.Equal(t, WorstMotif{Motif: "TCAC", Score: 0.001}, r.WorstMotif)
	require.Len(t, r.TrialScores, 2)
	assert.Equal(t, TrialScore{K: 4, Trial: 1, Score: 1.25}, r.TrialScores[1])

	require.Len(t, r.Hits, 2)
	assert.Equal(t, HitRecord{Score: 0.01, Position: 3, Sequence: "CGTAC", ClosestGene: "12", SequenceIndex: 0, Strand: 1}, r.Hits[0])
	assert.Equal(t, NoStartCodon, r.Hits[1].ClosestGene)
	assert.Equal(t, 2, r.Hits[1].Strand)
}

func TestWriteReport_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, testReport(t), FormatJSON))

	var raw map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	assert.EqualValues(t, 4, raw["Best-K"])

	hits := raw["Hits"].([]any)
	require.Len(t, hits, 2)
	hit := hits[0].(map[string]any)
	for _, key := range []string{"Score", "Position", "50mer-Sequence", "Closest-Protein-Coding-Gene", "DNASequence#", "Strand #"} {
		assert.Contains(t, hit, key)
	}
	assert.Equal(t, "12", hit["Closest-Protein-Coding-Gene"])
}

func TestWriteReport_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, testReport(t), FormatYAML))

	var raw map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &raw))
	assert.Equal(t, 4, raw["Best-K"])

	hits := raw["Hits"].([]any)
	require.Len(t, hits, 2)
	hit := hits[1].(map[string]any)
	assert.Equal(t, 2, hit["Strand #"])
	assert.Equal(t, 1, hit["DNASequence#"])
	assert.Equal(t, "none", hit["Closest-Protein-Coding-Gene"])
	assert.Equal(t, "12", hits[0].(map[string]any)["Closest-Protein-Coding-Gene"])
}

func TestWriteReport_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, WriteReport(&buf, testReport(t), "xml"))
	assert.False(t, ValidFormat("xml"))
	assert.True(t, ValidFormat(FormatYAML))
}
