// Package scoring turns aggregate bundle sizes into a 0-10 heuristic score.
package scoring

import (
	"fmt"
	"math"
)

// Op is a comparison between a measured value and a bracket limit
type Op string

const (
	OpGreater      Op = ">"
	OpGreaterEqual Op = ">="
	OpLess         Op = "<"
	OpLessEqual    Op = "<="
)

// Bracket adjusts the score by Adjust when the measured value satisfies Op against Limit
type Bracket struct {
	Op     Op      `mapstructure:"op" yaml:"op" json:"op"`
	Limit  float64 `mapstructure:"limit" yaml:"limit" json:"limit"`
	Adjust float64 `mapstructure:"adjust" yaml:"adjust" json:"adjust"`
}

// Matches reports whether value satisfies the bracket
func (b Bracket) Matches(value float64) bool {
	switch b.Op {
	case OpGreater:
		return value > b.Limit
	case OpGreaterEqual:
		return value >= b.Limit
	case OpLess:
		return value < b.Limit
	case OpLessEqual:
		return value <= b.Limit
	default:
		return false
	}
}

// Rules holds the scoring heuristic. Within a dimension brackets are
// evaluated in order and only the first match applies.
type Rules struct {
	Base float64 `mapstructure:"base" yaml:"base" json:"base"`
	Min  float64 `mapstructure:"min" yaml:"min" json:"min"`
	Max  float64 `mapstructure:"max" yaml:"max" json:"max"`

	// TotalSizeMB and JSSizeMB are measured in megabytes
	TotalSizeMB []Bracket `mapstructure:"total_size_mb" yaml:"total_size_mb" json:"totalSizeMB"`
	JSSizeMB    []Bracket `mapstructure:"js_size_mb" yaml:"js_size_mb" json:"jsSizeMB"`

	Chunks []Bracket `mapstructure:"chunks" yaml:"chunks" json:"chunks"`

	// CSSSizeKB is measured in kilobytes
	CSSSizeKB []Bracket `mapstructure:"css_size_kb" yaml:"css_size_kb" json:"cssSizeKB"`
}

// DefaultRules returns the stock thresholds
func DefaultRules() Rules {
	return Rules{
		Base: 10,
		Min:  0,
		Max:  10,
		TotalSizeMB: []Bracket{
			{Op: OpGreater, Limit: 2, Adjust: -2},
			{Op: OpGreater, Limit: 1, Adjust: -1},
			{Op: OpGreater, Limit: 0.5, Adjust: -0.5},
		},
		JSSizeMB: []Bracket{
			{Op: OpGreater, Limit: 1.5, Adjust: -2},
			{Op: OpGreater, Limit: 1, Adjust: -1},
			{Op: OpGreater, Limit: 0.5, Adjust: -0.5},
		},
		Chunks: []Bracket{
			{Op: OpLessEqual, Limit: 5, Adjust: 0.5},
			{Op: OpGreater, Limit: 10, Adjust: -0.5},
		},
		CSSSizeKB: []Bracket{
			{Op: OpLess, Limit: 50, Adjust: 0.5},
			{Op: OpGreater, Limit: 100, Adjust: -0.5},
		},
	}
}

// Validate checks the rules for unusable values
func (r Rules) Validate() error {
	if math.IsNaN(r.Base) || math.IsNaN(r.Min) || math.IsNaN(r.Max) {
		return fmt.Errorf("scoring bounds must be numbers")
	}
	if r.Min > r.Max {
		return fmt.Errorf("scoring min (%g) must not exceed max (%g)", r.Min, r.Max)
	}

	dimensions := map[string][]Bracket{
		"total_size_mb": r.TotalSizeMB,
		"js_size_mb":    r.JSSizeMB,
		"chunks":        r.Chunks,
		"css_size_kb":   r.CSSSizeKB,
	}
	for name, brackets := range dimensions {
		for i, b := range brackets {
			switch b.Op {
			case OpGreater, OpGreaterEqual, OpLess, OpLessEqual:
			default:
				return fmt.Errorf("scoring.%s[%d]: invalid op %q (valid: >, >=, <, <=)", name, i, b.Op)
			}
		}
	}

	return nil
}

// IsZero reports whether no dimension has any bracket
func (r Rules) IsZero() bool {
	return len(r.TotalSizeMB) == 0 && len(r.JSSizeMB) == 0 &&
		len(r.Chunks) == 0 && len(r.CSSSizeKB) == 0
}
