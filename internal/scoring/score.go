package scoring

import (
	"github.com/fluxbase-eu/bundlescore/internal/bundlesize"
)

// DefaultTarget is the minimum score a build must reach to pass
const DefaultTarget = 8.5

// Score computes the heuristic score of an analysis
func Score(a *bundlesize.Analysis, rules Rules) float64 {
	score := rules.Base
	score += adjustment(rules.TotalSizeMB, float64(a.TotalSize)/bundlesize.MB)
	score += adjustment(rules.JSSizeMB, float64(a.JSSize)/bundlesize.MB)
	score += adjustment(rules.Chunks, float64(a.ChunkCount))
	score += adjustment(rules.CSSSizeKB, float64(a.CSSSize)/bundlesize.KB)

	return clamp(score, rules.Min, rules.Max)
}

func adjustment(brackets []Bracket, value float64) float64 {
	for _, b := range brackets {
		if b.Matches(value) {
			return b.Adjust
		}
	}
	return 0
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Rating buckets a score into a qualitative label
func Rating(score float64) string {
	switch {
	case score >= 9:
		return "Excellent"
	case score >= 8.5:
		return "Very good"
	case score >= 8:
		return "Good"
	case score >= 6:
		return "Medium"
	default:
		return "Low"
	}
}
