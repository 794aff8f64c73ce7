package ui

import (
	"fmt"

	"github.com/fatih/color"

	"vmcp/internal/config"
	"vmcp/internal/discovery"
	"vmcp/internal/domain"
)

// Formatter renders results for the CLI surface
type Formatter struct {
	cfg    *config.Config
	parser *discovery.Parser
}

// NewFormatter creates a Formatter
func NewFormatter(cfg *config.Config, parser *discovery.Parser) *Formatter {
	return &Formatter{cfg: cfg, parser: parser}
}

// PrintRunResult displays a normalized run result
func (f *Formatter) PrintRunResult(result *domain.RunResult) {
	fmt.Println()
	color.Cyan("Command: %s", result.Command)
	fmt.Println()

	s := result.TestSummary
	fmt.Printf("%-14s %d\n", "Total tests:", s.TotalTests)
	color.Green("%-14s %d", "Passed:", s.Passed)
	if s.Failed > 0 {
		color.Red("%-14s %d", "Failed:", s.Failed)
	} else {
		fmt.Printf("%-14s %d\n", "Failed:", s.Failed)
	}
	fmt.Printf("%-14s %dms\n", "Duration:", result.ExecutionTimeMs)

	if result.Success {
		fmt.Println()
		color.Green("✓ %s", result.Summary)
	} else {
		fmt.Println()
		color.Red("✗ %s", result.Summary)
	}

	if result.TestResults != nil {
		for _, file := range result.TestResults.FailedTests {
			fmt.Println()
			color.Yellow("%s", file.File)
			for _, tc := range file.Tests {
				color.Red("  ✗ %s", tc.TestName)
				if tc.Message != "" {
					fmt.Printf("    [%s] %s\n", tc.ErrorType, firstLine(tc.Message))
				}
			}
		}
	}

	if !result.Success && result.Stderr != "" && f.cfg.Server.Verbose {
		fmt.Println()
		color.Yellow("--- runner stderr ---")
		fmt.Println(result.Stderr)
	}
}

// PrintTestList displays discovered test files, optionally enumerating the
// test cases inside each one. Case enumeration reads every file, so it is
// capped at the configured maxFiles.
func (f *Formatter) PrintTestList(files []domain.TestFile, withCases bool) error {
	fmt.Println()
	color.Cyan("Found %d test file(s)", len(files))
	fmt.Println()

	if !withCases {
		for _, file := range files {
			fmt.Printf("  %s %s\n", typeTag(file.Type), file.RelativePath)
		}
		return nil
	}

	capped := files
	if max := f.cfg.Safety.MaxFiles; max > 0 && len(capped) > max {
		capped = capped[:max]
		color.Yellow("Enumerating cases for the first %d files only", max)
	}

	bar := NewProgressBar(len(capped), "Parsing test files: ")
	type parsed struct {
		file  domain.TestFile
		cases []string
	}
	var results []parsed
	for _, file := range capped {
		cases, err := f.parser.FindTestCases(file.Path)
		if err != nil {
			cases = nil
		}
		results = append(results, parsed{file: file, cases: cases})
		bar.Add(1)
	}
	bar.Finish()

	for _, r := range results {
		fmt.Printf("  %s %s\n", typeTag(r.file.Type), r.file.RelativePath)
		for _, name := range r.cases {
			fmt.Printf("      - %s\n", name)
		}
	}
	return nil
}

// PrintCoverage displays a coverage run with threshold verdicts
func (f *Formatter) PrintCoverage(result *domain.CoverageResult) {
	f.PrintRunResult(&result.RunResult)

	if result.Coverage == nil {
		fmt.Println()
		color.Yellow("No coverage data was produced")
		return
	}

	fmt.Println()
	color.Cyan("Coverage")
	printMetric := func(name string, measured float64, threshold float64, hasThreshold bool) {
		line := fmt.Sprintf("  %-12s %6.2f%%", name, measured)
		if !hasThreshold {
			fmt.Println(line)
			return
		}
		if measured >= threshold {
			color.Green("%s  (>= %g%%)", line, threshold)
		} else {
			color.Red("%s  (<  %g%%)", line, threshold)
		}
	}
	t := result.CoverageThresholds
	printMetric("Lines", result.Coverage.Lines, thresholdOf(t, func(t *domain.CoverageThresholds) float64 { return t.Lines }), t != nil)
	printMetric("Functions", result.Coverage.Functions, thresholdOf(t, func(t *domain.CoverageThresholds) float64 { return t.Functions }), t != nil)
	printMetric("Branches", result.Coverage.Branches, thresholdOf(t, func(t *domain.CoverageThresholds) float64 { return t.Branches }), t != nil)
	printMetric("Statements", result.Coverage.Statements, thresholdOf(t, func(t *domain.CoverageThresholds) float64 { return t.Statements }), t != nil)

	for _, violation := range result.Violations {
		color.Red("  ! %s", violation)
	}
}

// PrintCompatibility displays the doctor report
func (f *Formatter) PrintCompatibility(report *domain.CompatibilityReport) {
	fmt.Println()
	if report.Runner != nil {
		fmt.Printf("  %-24s %s\n", "vitest:", report.Runner.Version)
	}
	if report.Provider != nil {
		fmt.Printf("  %-24s %s\n", "@vitest/coverage-v8:", report.Provider.Version)
	}
	for _, warning := range report.Warnings {
		color.Yellow("  warning: %s", warning)
	}
	for _, e := range report.Errors {
		color.Red("  error: %s", e)
	}
	fmt.Println()
	if report.OK() {
		color.Green("✓ Environment is compatible")
	} else {
		color.Red("✗ Environment has compatibility problems")
	}
}

func thresholdOf(t *domain.CoverageThresholds, pick func(*domain.CoverageThresholds) float64) float64 {
	if t == nil {
		return 0
	}
	return pick(t)
}

func typeTag(t domain.TestType) string {
	switch t {
	case domain.TestTypeE2E:
		return color.MagentaString("[e2e]")
	case domain.TestTypeIntegration:
		return color.BlueString("[int]")
	default:
		return color.GreenString("[unit]")
	}
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
