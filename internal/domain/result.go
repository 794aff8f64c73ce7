package domain

import "time"

// OutputFormat selects how much detail a run result carries
type OutputFormat string

const (
	FormatSummary  OutputFormat = "summary"
	FormatDetailed OutputFormat = "detailed"
)

// Valid reports whether the format is one of the recognized values.
func (f OutputFormat) Valid() bool {
	return f == FormatSummary || f == FormatDetailed
}

// TargetType distinguishes single-file from directory execution
type TargetType string

const (
	TargetFile      TargetType = "file"
	TargetDirectory TargetType = "directory"
)

// ExecutionContext describes the validated target of a test run
type ExecutionContext struct {
	IsMultiFile        bool       `json:"isMultiFile"`
	TargetType         TargetType `json:"targetType"`
	EstimatedTestCount int        `json:"estimatedTestCount,omitempty"`
}

// TestSummary holds aggregate test counts for a run
type TestSummary struct {
	TotalTests int `json:"totalTests"`
	Passed     int `json:"passed"`
	Failed     int `json:"failed"`
}

// FailedCase is one failed test case within a file
type FailedCase struct {
	TestName  string `json:"testName"`
	ErrorType string `json:"errorType"`
	Message   string `json:"message"`
}

// FailedFile groups failed cases by the file they belong to
type FailedFile struct {
	File  string       `json:"file"`
	Tests []FailedCase `json:"tests"`
}

// TestResults carries per-failure detail, present only in detailed format
type TestResults struct {
	FailedTests []FailedFile `json:"failedTests"`
}

// RunResult is the normalized outcome of one runner invocation
type RunResult struct {
	Command         string       `json:"command"`
	Success         bool         `json:"success"`
	Summary         string       `json:"summary,omitempty"`
	TestSummary     TestSummary  `json:"testSummary"`
	Format          OutputFormat `json:"format"`
	ExecutionTimeMs int64        `json:"executionTimeMs"`
	TestResults     *TestResults `json:"testResults,omitempty"`
	Stderr          string       `json:"stderr,omitempty"`
}

// LastRunMeta describes a persisted run for the failures viewer
type LastRunMeta struct {
	TotalTests int    `json:"totalTests"`
	Passed     int    `json:"passed"`
	Failed     int    `json:"failed"`
	Command    string `json:"command"`
	Duration   string `json:"duration"`
	Timestamp  string `json:"timestamp"`
}

// StoredFailure is one failed case as persisted to the last-run file
type StoredFailure struct {
	TestName  string `json:"testName"`
	FilePath  string `json:"filePath"`
	ErrorType string `json:"errorType"`
	Message   string `json:"message"`
	Resolved  bool   `json:"resolved,omitempty"`
}

// LastRunOutput is the on-disk shape of a persisted run
type LastRunOutput struct {
	Meta     LastRunMeta     `json:"meta"`
	Failures []StoredFailure `json:"failures"`
}

// NewLastRunOutput flattens a run result into its persisted form.
func NewLastRunOutput(result *RunResult, duration time.Duration, timestamp string) *LastRunOutput {
	out := &LastRunOutput{
		Meta: LastRunMeta{
			TotalTests: result.TestSummary.TotalTests,
			Passed:     result.TestSummary.Passed,
			Failed:     result.TestSummary.Failed,
			Command:    result.Command,
			Duration:   duration.String(),
			Timestamp:  timestamp,
		},
	}
	if result.TestResults != nil {
		for _, file := range result.TestResults.FailedTests {
			for _, tc := range file.Tests {
				out.Failures = append(out.Failures, StoredFailure{
					TestName:  tc.TestName,
					FilePath:  file.File,
					ErrorType: tc.ErrorType,
					Message:   tc.Message,
				})
			}
		}
	}
	return out
}
