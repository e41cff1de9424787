package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/gibbs-motif/internal/duckdb"
	"github.com/inodb/gibbs-motif/internal/output"
)

// setup isolates viper and the home directory, and writes a sequence file.
func setup(t *testing.T) (dir, input string) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir = t.TempDir()
	t.Setenv("HOME", dir)

	input = filepath.Join(dir, "seqs.txt")
	require.NoError(t, os.WriteFile(input, []byte("ACACGTAC\nCCACGTCACA\nTTCGTCGTACG\n"), 0644))
	return dir, input
}

func readReport(t *testing.T, path string) output.Report {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var r output.Report
	require.NoError(t, json.Unmarshal(data, &r))
	return r
}

func searchArgs(input, out string, extra ...string) []string {
	args := []string{"search", "--k-min", "4", "--k-max", "5", "--trials", "20",
		"--iterations", "10", "--seed", "7", "--no-progress", "-o", out}
	args = append(args, extra...)
	return append(args, input)
}

func TestRunSearch_Reproducible(t *testing.T) {
	dir, input := setup(t)
	outA := filepath.Join(dir, "a.json")
	outB := filepath.Join(dir, "b.json")

	require.Equal(t, ExitSuccess, run(searchArgs(input, outA)))
	viper.Reset()
	require.Equal(t, ExitSuccess, run(searchArgs(input, outB)))

	a, b := readReport(t, outA), readReport(t, outB)
	assert.Equal(t, uint64(7), a.Seed)
	assert.Contains(t, []int{4, 5}, a.BestK)
	assert.Len(t, a.BestMotifs, 3)
	assert.Len(t, a.Profile, a.BestK)
	assert.Len(t, a.TrialScores, 40)
	assert.NotEmpty(t, a.Hits)
	assert.NotEmpty(t, a.RunID)

	assert.Equal(t, a.BestMotifs, b.BestMotifs)
	assert.Equal(t, a.BestScore, b.BestScore)
	assert.Equal(t, a.Hits, b.Hits)
}

func TestRunSearch_HistoryAndTSV(t *testing.T) {
	dir, input := setup(t)
	out := filepath.Join(dir, "report.json")
	tsv := filepath.Join(dir, "hits.tsv")
	db := filepath.Join(dir, "history.duckdb")

	code := run(searchArgs(input, out, "--history", "--db", db, "--hits-tsv", tsv, "--trial-scores=false"))
	require.Equal(t, ExitSuccess, code)

	report := readReport(t, out)
	assert.Empty(t, report.TrialScores)

	data, err := os.ReadFile(tsv)
	require.NoError(t, err)
	assert.Contains(t, string(data), "50mer-Sequence")

	s, err := duckdb.Open(db)
	require.NoError(t, err)
	run1, err := s.LoadRun(report.RunID)
	require.NoError(t, err)
	assert.Equal(t, report.BestMotifs, run1.BestMotifs)
	hits, err := s.LoadHits(report.RunID)
	require.NoError(t, err)
	assert.Len(t, hits, len(report.Hits))
	require.NoError(t, s.Close())

	viper.Reset()
	assert.Equal(t, ExitSuccess, run([]string{"history", "--db", db}))
	viper.Reset()
	assert.Equal(t, ExitSuccess, run([]string{"history", "show", "--db", db, report.RunID}))

	// rescanning with the stored motif set finds the same hits
	viper.Reset()
	rescan := filepath.Join(dir, "rescan.json")
	require.Equal(t, ExitSuccess, run([]string{"scan", "--run", report.RunID, "--db", db, "-o", rescan, input}))
	assert.Equal(t, report.Hits, readReport(t, rescan).Hits)
}

func TestRunScan_Motifs(t *testing.T) {
	dir, input := setup(t)
	out := filepath.Join(dir, "scan.json")

	require.Equal(t, ExitSuccess, run([]string{"scan", "--motifs", "cgta, TCAC,CGTC", "-o", out, input}))

	r := readReport(t, out)
	assert.Equal(t, 4, r.BestK)
	assert.Equal(t, []string{"CGTA", "TCAC", "CGTC"}, r.BestMotifs)
	assert.Equal(t, "TCAC", r.WorstMotif.Motif)
	assert.NotEmpty(t, r.Hits)
}

func TestRun_ExitCodes(t *testing.T) {
	dir, input := setup(t)

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"unknown flag", []string{"search", "--bogus", input}, ExitUsage},
		{"missing input", []string{"search"}, ExitUsage},
		{"bad strategy", []string{"search", "--strategy", "anneal", input}, ExitUsage},
		{"bad format", []string{"search", "-f", "xml", input}, ExitUsage},
		{"scan needs motifs", []string{"scan", input}, ExitUsage},
		{"scan bad motifs", []string{"scan", "--motifs", "ACG,AC", input}, ExitUsage},
		{"missing file", []string{"search", "--no-progress", filepath.Join(dir, "missing.txt")}, ExitError},
		{"k too long", []string{"search", "--no-progress", "--k-min", "20", "--k-max", "20", "--trials", "2", input}, ExitError},
		{"no history", []string{"history", "--db", filepath.Join(dir, "none.duckdb")}, ExitError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			assert.Equal(t, tt.want, run(tt.args))
		})
	}
}

func TestConfigSetGet(t *testing.T) {
	dir, _ := setup(t)

	require.Equal(t, ExitSuccess, run([]string{"config", "set", "search.trials", "25"}))
	_, err := os.Stat(filepath.Join(dir, ".gibbs-motif.yaml"))
	require.NoError(t, err)

	viper.Reset()
	require.Equal(t, ExitSuccess, run([]string{"config", "set", "search.strategy", "resample"}))

	viper.Reset()
	require.Equal(t, ExitSuccess, run([]string{"config", "get", "search.trials"}))
	assert.Equal(t, 25, viper.GetInt("search.trials"))
	assert.Equal(t, "resample", viper.GetString("search.strategy"))

	viper.Reset()
	assert.Equal(t, ExitSuccess, run([]string{"config"}))
}

func TestConfigSet_Rejected(t *testing.T) {
	dir, _ := setup(t)

	tests := []struct {
		name string
		args []string
	}{
		{"unknown key", []string{"config", "set", "search.temperature", "3"}},
		{"not a number", []string{"config", "set", "search.trials", "many"}},
		{"bad strategy", []string{"config", "set", "search.strategy", "anneal"}},
		{"bad format", []string{"config", "set", "output.format", "xml"}},
		{"get unknown key", []string{"config", "get", "verbose"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			assert.Equal(t, ExitUsage, run(tt.args))
		})
	}

	_, err := os.Stat(filepath.Join(dir, ".gibbs-motif.yaml"))
	assert.True(t, os.IsNotExist(err))
}

func TestParseMotifs(t *testing.T) {
	assert.Equal(t, []string{"CGTA", "TCAC"}, parseMotifs(" cgta,,TCAC "))
	assert.Empty(t, parseMotifs(""))
}
