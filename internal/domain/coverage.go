package domain

import "fmt"

// CoverageMetrics holds measured coverage percentages (0-100)
type CoverageMetrics struct {
	Lines      float64 `json:"lines"`
	Functions  float64 `json:"functions"`
	Branches   float64 `json:"branches"`
	Statements float64 `json:"statements"`
}

// CoverageThresholds holds minimum required percentages per metric
type CoverageThresholds struct {
	Lines      float64 `json:"lines"`
	Functions  float64 `json:"functions"`
	Branches   float64 `json:"branches"`
	Statements float64 `json:"statements"`
}

// Met returns true when every measured metric is at or above its threshold.
// A nil threshold set always passes.
func (m CoverageMetrics) Met(t *CoverageThresholds) bool {
	if t == nil {
		return true
	}
	return m.Lines >= t.Lines &&
		m.Functions >= t.Functions &&
		m.Branches >= t.Branches &&
		m.Statements >= t.Statements
}

// Violations returns one message per metric strictly below its threshold.
func (m CoverageMetrics) Violations(t *CoverageThresholds) []string {
	if t == nil {
		return nil
	}
	var out []string
	check := func(name string, measured, threshold float64) {
		if measured < threshold {
			out = append(out, fmt.Sprintf("%s coverage (%g%%) is below threshold (%g%%)", name, measured, threshold))
		}
	}
	check("Lines", m.Lines, t.Lines)
	check("Functions", m.Functions, t.Functions)
	check("Branches", m.Branches, t.Branches)
	check("Statements", m.Statements, t.Statements)
	return out
}

// CoverageResult is the payload returned by the analyze_coverage tool
type CoverageResult struct {
	RunResult
	Coverage           *CoverageMetrics    `json:"coverage,omitempty"`
	CoverageThresholds *CoverageThresholds `json:"coverageThresholds,omitempty"`
	ThresholdsMet      *bool               `json:"thresholdsMet,omitempty"`
	Violations         []string            `json:"violations,omitempty"`
}
