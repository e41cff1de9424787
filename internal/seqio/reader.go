// Package seqio reads nucleotide sequences, one per line.
package seqio

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/inodb/gibbs-motif/internal/motif"
)

// Reader reads sequences from a line-oriented text file.
type Reader struct {
	reader     *bufio.Reader
	file       *os.File
	gzipReader *gzip.Reader
	lineNumber int

	// read ahead past blank lines: blanks are emitted before held
	readLine int
	blanks   int
	held     string
	heldLine int
}

// NewReader opens a sequence file. Gzipped files are detected by their magic
// bytes; "-" reads from stdin.
func NewReader(path string) (*Reader, error) {
	if path == "-" {
		return NewReaderFromReader(os.Stdin), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sequence file: %w", err)
	}

	r := &Reader{file: file}

	buf := make([]byte, 2)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		file.Close()
		return nil, fmt.Errorf("read sequence file: %w", err)
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		return nil, fmt.Errorf("seek sequence file: %w", err)
	}

	// Check for gzip magic number (0x1f, 0x8b)
	if n == 2 && buf[0] == 0x1f && buf[1] == 0x8b {
		r.gzipReader, err = gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		r.reader = bufio.NewReader(r.gzipReader)
	} else {
		r.reader = bufio.NewReader(file)
	}

	return r, nil
}

// NewReaderFromReader creates a reader over an io.Reader (e.g., stdin).
func NewReaderFromReader(rd io.Reader) *Reader {
	return &Reader{reader: bufio.NewReader(rd)}
}

// Next returns the next sequence, upper-cased, with line separators removed.
// A blank line yields an empty sequence so that every sequence keeps the
// index of its line; blank lines at the end of the input are dropped.
// Returns "", io.EOF when there are no more sequences.
func (r *Reader) Next() (string, error) {
	if r.held != "" {
		if r.blanks > 0 {
			r.lineNumber = r.heldLine - r.blanks
			r.blanks--
			return "", nil
		}
		line := r.held
		r.held = ""
		r.lineNumber = r.heldLine
		return line, nil
	}

	for {
		line, err := r.reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return "", fmt.Errorf("read sequence line: %w", err)
		}
		if err == io.EOF && line == "" {
			return "", io.EOF
		}
		r.readLine++

		line = strings.ToUpper(strings.TrimSpace(line))
		if line == "" {
			if err == io.EOF {
				return "", io.EOF
			}
			r.blanks++
			continue
		}

		for i := 0; i < len(line); i++ {
			if motif.BaseIndex(line[i]) < 0 {
				r.lineNumber = r.readLine
				return "", &ParseError{
					Line:    r.readLine,
					Message: fmt.Sprintf("invalid nucleotide %q at column %d", line[i], i+1),
				}
			}
		}

		if r.blanks > 0 {
			r.held, r.heldLine = line, r.readLine
			return r.Next()
		}
		r.lineNumber = r.readLine
		return line, nil
	}
}

// LineNumber returns the line of the sequence last returned by Next.
func (r *Reader) LineNumber() int {
	return r.lineNumber
}

// Close closes the reader and releases resources.
func (r *Reader) Close() error {
	if r.gzipReader != nil {
		r.gzipReader.Close()
	}
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// ReadAll reads every sequence from path, preserving file order.
func ReadAll(path string) ([]string, error) {
	r, err := NewReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var seqs []string
	for {
		s, err := r.Next()
		if err == io.EOF {
			return seqs, nil
		}
		if err != nil {
			return nil, err
		}
		seqs = append(seqs, s)
	}
}

// ParseError represents an error while parsing a sequence file.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("sequence parse error at line %d: %s", e.Line, e.Message)
}
