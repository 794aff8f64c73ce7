package coverage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"vmcp/internal/config"
	"vmcp/internal/domain"
)

// Runner config files inspected for a coverage thresholds block, in order.
var runnerConfigFiles = []string{
	"vitest.config.ts",
	"vitest.config.mts",
	"vitest.config.js",
	"vitest.config.mjs",
	"vite.config.ts",
	"vite.config.mts",
	"vite.config.js",
	"vite.config.mjs",
}

var (
	thresholdsBlockRe = regexp.MustCompile(`thresholds\s*:\s*\{([^}]*)\}`)
	metricRes         = map[string]*regexp.Regexp{
		"lines":      regexp.MustCompile(`\blines\s*:\s*([0-9]+(?:\.[0-9]+)?)`),
		"functions":  regexp.MustCompile(`\bfunctions\s*:\s*([0-9]+(?:\.[0-9]+)?)`),
		"branches":   regexp.MustCompile(`\bbranches\s*:\s*([0-9]+(?:\.[0-9]+)?)`),
		"statements": regexp.MustCompile(`\bstatements\s*:\s*([0-9]+(?:\.[0-9]+)?)`),
	}
)

// Evaluator reads runner coverage configuration and measured metrics
type Evaluator struct {
	cfg *config.Config
}

// NewEvaluator creates an Evaluator
func NewEvaluator(cfg *config.Config) *Evaluator {
	return &Evaluator{cfg: cfg}
}

// Thresholds returns the coverage thresholds configured for the project, or
// nil when none are configured. The runner's own config file is the source
// of truth; the blanket threshold from the environment applies only when the
// runner declares none.
func (e *Evaluator) Thresholds(projectRoot string) *domain.CoverageThresholds {
	for _, name := range runnerConfigFiles {
		data, err := os.ReadFile(filepath.Join(projectRoot, name))
		if err != nil {
			continue
		}
		if t := scrapeThresholds(string(data)); t != nil {
			return t
		}
	}
	if pct := e.cfg.CoverageDefaults.Threshold; pct > 0 {
		return &domain.CoverageThresholds{Lines: pct, Functions: pct, Branches: pct, Statements: pct}
	}
	return nil
}

// scrapeThresholds extracts metric floors from a thresholds block in the
// runner config source. The config is TS/JS we cannot execute, so this is a
// textual scrape of the standard literal form.
func scrapeThresholds(source string) *domain.CoverageThresholds {
	block := thresholdsBlockRe.FindStringSubmatch(source)
	if block == nil {
		return nil
	}

	var t domain.CoverageThresholds
	found := false
	read := func(metric string, dst *float64) {
		if m := metricRes[metric].FindStringSubmatch(block[1]); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				*dst = v
				found = true
			}
		}
	}
	read("lines", &t.Lines)
	read("functions", &t.Functions)
	read("branches", &t.Branches)
	read("statements", &t.Statements)

	if !found {
		return nil
	}
	return &t
}

// summaryFile is the json-summary reporter output relative to the project root
const summaryFile = "coverage/coverage-summary.json"

type summaryMetric struct {
	Pct float64 `json:"pct"`
}

type summaryTotals struct {
	Lines      summaryMetric `json:"lines"`
	Functions  summaryMetric `json:"functions"`
	Branches   summaryMetric `json:"branches"`
	Statements summaryMetric `json:"statements"`
}

// ReadSummary loads measured metrics from the coverage summary the runner
// wrote during a --coverage run.
func (e *Evaluator) ReadSummary(projectRoot string) (*domain.CoverageMetrics, error) {
	path := filepath.Join(projectRoot, filepath.FromSlash(summaryFile))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewRunnerError(
			fmt.Sprintf("Coverage summary not found at %s; did the coverage run complete?", path), err)
	}

	var summary struct {
		Total summaryTotals `json:"total"`
	}
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, domain.NewRunnerError("Failed to parse coverage summary", err)
	}

	return &domain.CoverageMetrics{
		Lines:      summary.Total.Lines.Pct,
		Functions:  summary.Total.Functions.Pct,
		Branches:   summary.Total.Branches.Pct,
		Statements: summary.Total.Statements.Pct,
	}, nil
}
