package seqio

import (
	"compress/gzip"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadAll(t *testing.T) {
	path := writeFile(t, "seqs.txt", "ACACGTAC\nCCACGTCACA\r\n\nttcgtcgtacg\n")

	seqs, err := ReadAll(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"ACACGTAC", "CCACGTCACA", "", "TTCGTCGTACG"}, seqs)
}

func TestReadAll_BlankLinesKeepIndex(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"inner blank", "ACGTACGT\n\nTTTTATGC\n", []string{"ACGTACGT", "", "TTTTATGC"}},
		{"leading blanks", "\n  \nACGT\n", []string{"", "", "ACGT"}},
		{"trailing blanks dropped", "ACGT\nGG\n\n\n", []string{"ACGT", "GG"}},
		{"trailing whitespace line", "ACGT\n\nGG\n \t", []string{"ACGT", "", "GG"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seqs, err := ReadAll(writeFile(t, "seqs.txt", tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.want, seqs)
		})
	}
}

func TestReadAll_InvalidSymbolAfterBlank(t *testing.T) {
	_, err := ReadAll(writeFile(t, "bad.txt", "ACGT\n\n\nACNT\n"))

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 4, perr.Line)
}

func TestReadAll_NoTrailingNewline(t *testing.T) {
	path := writeFile(t, "seqs.txt", "ACGT\nTTTT")

	seqs, err := ReadAll(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"ACGT", "TTTT"}, seqs)
}

func TestReadAll_Gzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seqs.txt.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte("ACGT\nGGCC\n"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	seqs, err := ReadAll(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"ACGT", "GGCC"}, seqs)
}

func TestReadAll_Empty(t *testing.T) {
	seqs, err := ReadAll(writeFile(t, "empty.txt", ""))
	require.NoError(t, err)
	assert.Empty(t, seqs)
}

func TestReadAll_InvalidSymbol(t *testing.T) {
	_, err := ReadAll(writeFile(t, "bad.txt", "ACGT\nACNT\n"))
	require.Error(t, err)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 2, perr.Line)
	assert.Contains(t, perr.Error(), "column 3")
}

func TestReadAll_MissingFile(t *testing.T) {
	_, err := ReadAll(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestReaderFromReader(t *testing.T) {
	r := NewReaderFromReader(strings.NewReader("acgt\n\nGG\n"))

	s, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "ACGT", s)
	assert.Equal(t, 1, r.LineNumber())

	s, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, "", s)
	assert.Equal(t, 2, r.LineNumber())

	s, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, "GG", s)
	assert.Equal(t, 3, r.LineNumber())

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
	require.NoError(t, r.Close())
}
