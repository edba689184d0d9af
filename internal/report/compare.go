package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/fluxbase-eu/bundlescore/internal/bundlesize"
)

// Listing returns one "name size" line per file, sorted by name
func Listing(a *bundlesize.Analysis) []string {
	lines := make([]string, 0, len(a.Files))
	for _, f := range a.Files {
		lines = append(lines, fmt.Sprintf("%s %d\n", f.Name, f.Size))
	}
	sort.Strings(lines)
	return lines
}

// Diff returns a unified diff between two file listings, or "" when they match
func Diff(previous, current *bundlesize.Analysis) (string, error) {
	u := difflib.UnifiedDiff{
		A:        Listing(previous),
		B:        Listing(current),
		FromFile: "previous",
		ToFile:   "current",
		Context:  1,
	}
	return difflib.GetUnifiedDiffString(u)
}

// Compare writes the score change and the listing diff against a previous artifact
func Compare(w io.Writer, previous *Artifact, current *bundlesize.Analysis, score float64) error {
	diff, err := Diff(&previous.Analysis, current)
	if err != nil {
		return fmt.Errorf("failed to diff file listings: %w", err)
	}

	_, _ = fmt.Fprintln(w, "=== Changes since previous run ===")
	_, _ = fmt.Fprintf(w, "Score:      %.1f -> %.1f (%+.1f)\n", previous.Score, score, score-previous.Score)
	_, _ = fmt.Fprintf(w, "Total size: %s -> %s\n", FormatBytes(previous.TotalSize), FormatBytes(current.TotalSize))

	if diff == "" {
		_, _ = fmt.Fprintln(w, "No file changes")
	} else {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprint(w, diff)
	}
	_, _ = fmt.Fprintln(w)

	return nil
}
