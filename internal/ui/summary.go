package ui

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// Summary renders per-file violation counts in aligned columns.
type Summary struct {
	w *tabwriter.Writer
}

// NewSummary creates a summary writer with its header already queued.
func NewSummary(out io.Writer) *Summary {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "FILE\tUNPINNED")
	return &Summary{w: tw}
}

// Add appends one file row.
func (s *Summary) Add(file string, count int) {
	_, _ = fmt.Fprintf(s.w, "%s\t%d\n", file, count)
}

// Flush writes the buffered output.
func (s *Summary) Flush() error {
	return s.w.Flush()
}
