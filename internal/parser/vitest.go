package parser

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"vmcp/internal/domain"
)

// Report is the jest-compatible JSON document Vitest emits with the json
// reporter.
type Report struct {
	NumTotalTests  int          `json:"numTotalTests"`
	NumPassedTests int          `json:"numPassedTests"`
	NumFailedTests int          `json:"numFailedTests"`
	Success        bool         `json:"success"`
	TestResults    []FileReport `json:"testResults"`
}

// FileReport is the per-file section of the report
type FileReport struct {
	Name             string      `json:"name"`
	Status           string      `json:"status"`
	Message          string      `json:"message"`
	AssertionResults []Assertion `json:"assertionResults"`
}

// Assertion is one test case outcome within a file
type Assertion struct {
	Title           string   `json:"title"`
	FullName        string   `json:"fullName"`
	Status          string   `json:"status"`
	FailureMessages []string `json:"failureMessages"`
}

// VitestParser parses and normalizes Vitest JSON reports
type VitestParser struct{}

// NewVitestParser creates a new VitestParser
func NewVitestParser() *VitestParser {
	return &VitestParser{}
}

// Parse decodes raw runner stdout into a validated Report. The payload is
// shape-checked on receipt so malformed reports surface as runner errors
// instead of breaking result processing downstream.
func (p *VitestParser) Parse(stdout []byte) (*Report, error) {
	raw := extractJSON(stdout)
	if len(raw) == 0 {
		return nil, domain.NewRunnerError("Runner produced no JSON report", nil)
	}

	var report Report
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, domain.NewRunnerError("Failed to parse runner JSON report", err)
	}
	if err := validate(&report); err != nil {
		return nil, domain.NewRunnerError("Runner report has invalid shape", err)
	}
	return &report, nil
}

// validate rejects structurally impossible reports
func validate(r *Report) error {
	if r.NumTotalTests < 0 || r.NumPassedTests < 0 || r.NumFailedTests < 0 {
		return fmt.Errorf("negative test counts")
	}
	if r.NumPassedTests+r.NumFailedTests > r.NumTotalTests {
		return fmt.Errorf("pass/fail counts exceed total")
	}
	for i, file := range r.TestResults {
		if file.Name == "" {
			return fmt.Errorf("testResults[%d] has no file name", i)
		}
	}
	return nil
}

// extractJSON slices the report document out of runner stdout, tolerating
// stray log lines around it.
func extractJSON(stdout []byte) []byte {
	start := strings.IndexByte(string(stdout), '{')
	end := strings.LastIndexByte(string(stdout), '}')
	if start < 0 || end < start {
		return nil
	}
	return stdout[start : end+1]
}

// Normalize transforms a report into the result shape for the requested
// format. Summary counts are always populated; per-failure detail is carried
// only in detailed format. Zero-test runs are valid outcomes.
func (p *VitestParser) Normalize(report *Report, format domain.OutputFormat, command, projectRoot string) *domain.RunResult {
	result := &domain.RunResult{
		Command: command,
		Success: report.Success,
		Format:  format,
		TestSummary: domain.TestSummary{
			TotalTests: report.NumTotalTests,
			Passed:     report.NumPassedTests,
			Failed:     report.NumFailedTests,
		},
	}
	result.Summary = summarize(result.TestSummary)

	if format == domain.FormatDetailed {
		result.TestResults = &domain.TestResults{
			FailedTests: p.collectFailures(report, projectRoot),
		}
	}
	return result
}

// collectFailures groups failed assertions by the file they belong to
func (p *VitestParser) collectFailures(report *Report, projectRoot string) []domain.FailedFile {
	failed := []domain.FailedFile{}
	for _, file := range report.TestResults {
		var cases []domain.FailedCase
		for _, assertion := range file.AssertionResults {
			if assertion.Status != "failed" {
				continue
			}
			message := firstFailureMessage(assertion.FailureMessages)
			cases = append(cases, domain.FailedCase{
				TestName:  testName(assertion),
				ErrorType: errorType(message),
				Message:   message,
			})
		}
		if len(cases) > 0 {
			failed = append(failed, domain.FailedFile{
				File:  relativeName(file.Name, projectRoot),
				Tests: cases,
			})
		}
	}
	return failed
}

func testName(a Assertion) string {
	if a.FullName != "" {
		return a.FullName
	}
	return a.Title
}

func firstFailureMessage(messages []string) string {
	if len(messages) == 0 {
		return ""
	}
	return strings.TrimSpace(messages[0])
}

// errorType extracts the error class from the head of a failure message,
// e.g. "AssertionError: expected 1 to be 2" yields "AssertionError".
func errorType(message string) string {
	if message == "" {
		return "Error"
	}
	head := message
	if idx := strings.IndexByte(head, '\n'); idx >= 0 {
		head = head[:idx]
	}
	if idx := strings.IndexByte(head, ':'); idx > 0 {
		candidate := strings.TrimSpace(head[:idx])
		if candidate != "" && !strings.ContainsAny(candidate, " \t") {
			return candidate
		}
	}
	return "Error"
}

func relativeName(name, projectRoot string) string {
	if projectRoot == "" {
		return name
	}
	if rel, err := filepath.Rel(projectRoot, name); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return name
}

func summarize(s domain.TestSummary) string {
	if s.TotalTests == 0 {
		return "No tests found"
	}
	if s.Failed == 0 {
		return fmt.Sprintf("%d tests passed", s.TotalTests)
	}
	return fmt.Sprintf("%d of %d tests failed", s.Failed, s.TotalTests)
}
