package output

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/gibbs-motif/internal/gibbs"
)

// HitTabWriter writes rescan hits in tab-delimited format.
type HitTabWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewHitTabWriter creates a new tab-delimited hit writer.
func NewHitTabWriter(w io.Writer) *HitTabWriter {
	return &HitTabWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"DNASequence#",
			"Strand #",
			"Position",
			"Match",
			"Score",
			"50mer-Sequence",
			"Closest-Protein-Coding-Gene",
		},
	}
}

// WriteHeader writes the header line.
func (tw *HitTabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes a single hit.
func (tw *HitTabWriter) Write(h gibbs.Hit) error {
	values := []string{
		strconv.Itoa(h.SequenceIndex),
		strconv.Itoa(int(h.Strand)),
		strconv.Itoa(h.Position),
		h.Match,
		fmt.Sprintf("%.6g", h.Score),
		h.Window,
		FormatStartCodon(h.ClosestStartCodon),
	}

	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// WriteAll writes the header followed by every hit, then flushes.
func (tw *HitTabWriter) WriteAll(hits []gibbs.Hit) error {
	if err := tw.WriteHeader(); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, h := range hits {
		if err := tw.Write(h); err != nil {
			return fmt.Errorf("write hit: %w", err)
		}
	}
	return tw.Flush()
}

// Flush flushes any buffered data to the underlying writer.
func (tw *HitTabWriter) Flush() error {
	return tw.w.Flush()
}
