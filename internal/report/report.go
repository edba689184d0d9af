// Package report renders bundle analyses for humans and persists them for tooling.
package report

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/fluxbase-eu/bundlescore/internal/bundlesize"
	"github.com/fluxbase-eu/bundlescore/internal/scoring"
)

// Options controls report rendering
type Options struct {
	// Target is the score a build needs to pass
	Target float64
	// Top limits the file listing; 0 lists every file
	Top int
}

// Recommendation thresholds
const (
	maxTotalBytes = 1 * bundlesize.MB
	maxJSBytes    = 1 * bundlesize.MB
	maxChunks     = 10
)

var kindTags = map[bundlesize.Kind]string{
	bundlesize.KindJS:    "[JS]",
	bundlesize.KindCSS:   "[CSS]",
	bundlesize.KindHTML:  "[HTML]",
	bundlesize.KindMap:   "[MAP]",
	bundlesize.KindImage: "[IMG]",
	bundlesize.KindFont:  "[FONT]",
	bundlesize.KindOther: "[FILE]",
}

// Tag returns the display tag for a file name
func Tag(name string) string {
	return kindTags[bundlesize.KindOf(name)]
}

// Render writes the human-readable report
func Render(w io.Writer, a *bundlesize.Analysis, score float64, opts Options) {
	_, _ = fmt.Fprintln(w, "\n=== Bundle Performance Report ===")
	_, _ = fmt.Fprintf(w, "Total size:  %s\n", FormatBytes(a.TotalSize))
	_, _ = fmt.Fprintf(w, "JavaScript:  %s\n", FormatBytes(a.JSSize))
	_, _ = fmt.Fprintf(w, "CSS:         %s\n", FormatBytes(a.CSSSize))
	_, _ = fmt.Fprintf(w, "Chunks:      %d\n", a.ChunkCount)

	files := a.NonEmptyBySize()
	if len(files) > 0 {
		_, _ = fmt.Fprintln(w, "\nFiles by size:")
		renderFiles(w, files, opts.Top)
	}

	_, _ = fmt.Fprintf(w, "\nScore: %.1f/10 (%s)\n", score, scoring.Rating(score))
	if score >= opts.Target {
		_, _ = fmt.Fprintf(w, "Target %.1f reached\n", opts.Target)
	} else {
		_, _ = fmt.Fprintf(w, "Target %.1f not reached (missing %.1f)\n", opts.Target, opts.Target-score)
	}

	if recs := Recommendations(a); len(recs) > 0 {
		_, _ = fmt.Fprintln(w, "\nRecommendations:")
		for _, rec := range recs {
			_, _ = fmt.Fprintf(w, "  - %s\n", rec)
		}
	}

	_, _ = fmt.Fprintln(w)
}

func renderFiles(w io.Writer, files []bundlesize.FileEntry, top int) {
	shown := files
	if top > 0 && len(files) > top {
		shown = files[:top]
	}

	table := tablewriter.NewWriter(w)
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetHeaderLine(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
	})

	for _, f := range shown {
		table.Append([]string{"  " + Tag(f.Name), f.Name, FormatBytes(f.Size)})
	}
	table.Render()

	if len(shown) < len(files) {
		_, _ = fmt.Fprintf(w, "  ... and %d more files\n", len(files)-len(shown))
	}
}

// Recommendations returns the advice lines triggered by the analysis
func Recommendations(a *bundlesize.Analysis) []string {
	var recs []string
	if a.TotalSize > maxTotalBytes {
		recs = append(recs, "Total bundle exceeds 1 MB: lazy-load routes and heavy views")
	}
	if a.JSSize > maxJSBytes {
		recs = append(recs, "JavaScript exceeds 1 MB: tree-shake and drop unused dependencies")
	}
	if a.ChunkCount > maxChunks {
		recs = append(recs, fmt.Sprintf("%d chunks: merge small chunks to cut request overhead", a.ChunkCount))
	}
	return recs
}

// FormatBytes formats bytes in human-readable format
func FormatBytes(bytes int64) string {
	switch {
	case bytes >= bundlesize.MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/bundlesize.MB)
	case bytes >= bundlesize.KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/bundlesize.KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
