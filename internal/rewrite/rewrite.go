// Package rewrite splices resolved commit identifiers back into
// workflow files. It operates on raw text lines rather than the parse
// tree, so everything it does not target survives byte for byte.
package rewrite

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/matthewhughes934/gha-enforce-sha/internal/errs"
	"github.com/matthewhughes934/gha-enforce-sha/internal/resolve"
	"github.com/matthewhughes934/gha-enforce-sha/internal/workflow"
)

// File rewrites every occurrence in a single document. The pinned
// reference is spliced in at each occurrence's recorded column; content
// before the column and the original line terminator are preserved.
// The write is atomic: the file either fully updates or stays
// untouched. A document with no occurrences is never opened.
func File(path string, occs []workflow.Occurrence, cache resolve.Cache) error {
	if len(occs) == 0 {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return errs.Internalf("reading %s for rewrite: %w", path, err)
	}
	lines := splitLines(data)

	for _, o := range occs {
		rt, ok := cache.Lookup(o.Ref)
		if !ok {
			return errs.Internalf("no resolution for %s (%s), refusing to rewrite", o.Ref, path)
		}
		if o.Line < 1 || o.Line > len(lines) {
			return errs.Internalf("%s: line %d out of range", path, o.Line)
		}

		body, terminator := splitTerminator(lines[o.Line-1])
		runes := []rune(body)
		if o.Column < 1 || o.Column-1 > len(runes) {
			return errs.Internalf("%s: column %d out of range on line %d", path, o.Column, o.Line)
		}
		lines[o.Line-1] = string(runes[:o.Column-1]) + pinnedReference(o.Ref, rt) + terminator
	}

	return writeAtomic(path, []byte(strings.Join(lines, "")))
}

// pinnedReference renders the replacement text: the full action path
// pinned to the commit, with the resolved tag kept as a comment so
// reviewers can still see what version is in use.
func pinnedReference(ref workflow.Reference, rt resolve.ResolvedTag) string {
	return fmt.Sprintf("%s@%s  # %s", ref.Path, rt.Commit, rt.Tag)
}

// splitLines splits data into lines, each retaining its terminator.
func splitLines(data []byte) []string {
	var lines []string
	start := 0
	for i, b := range data {
		if b == '\n' {
			lines = append(lines, string(data[start:i+1]))
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, string(data[start:]))
	}
	return lines
}

// splitTerminator separates a line from its terminator, handling both
// LF and CRLF endings and a final line with no terminator.
func splitTerminator(line string) (body, terminator string) {
	switch {
	case strings.HasSuffix(line, "\r\n"):
		return line[:len(line)-2], "\r\n"
	case strings.HasSuffix(line, "\n"):
		return line[:len(line)-1], "\n"
	default:
		return line, ""
	}
}

// writeAtomic replaces path via a temporary file in the same directory,
// preserving the original file mode.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return errs.Internalf("creating temporary file for %s: %w", path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return errs.Internalf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return errs.Internalf("writing %s: %w", path, err)
	}

	if info, err := os.Stat(path); err == nil {
		_ = os.Chmod(tmpName, info.Mode())
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return errs.Internalf("replacing %s: %w", path, err)
	}
	return nil
}
