package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vmcp/internal/domain"
)

const passingReport = `{
  "numTotalTests": 3,
  "numPassedTests": 3,
  "numFailedTests": 0,
  "success": true,
  "testResults": [
    {
      "name": "/app/src/auth/login.test.ts",
      "status": "passed",
      "message": "",
      "assertionResults": [
        {"title": "logs in", "fullName": "auth logs in", "status": "passed", "failureMessages": []},
        {"title": "logs out", "fullName": "auth logs out", "status": "passed", "failureMessages": []},
        {"title": "refreshes", "fullName": "auth refreshes", "status": "passed", "failureMessages": []}
      ]
    }
  ]
}`

const failingReport = `{
  "numTotalTests": 4,
  "numPassedTests": 2,
  "numFailedTests": 2,
  "success": false,
  "testResults": [
    {
      "name": "/app/src/auth/login.test.ts",
      "status": "failed",
      "message": "2 tests failed",
      "assertionResults": [
        {"title": "logs in", "fullName": "auth logs in", "status": "passed", "failureMessages": []},
        {
          "title": "rejects bad password",
          "fullName": "auth rejects bad password",
          "status": "failed",
          "failureMessages": ["AssertionError: expected 401 to be 200\n    at login.test.ts:14:5"]
        },
        {
          "title": "expires sessions",
          "fullName": "auth expires sessions",
          "status": "failed",
          "failureMessages": ["TypeError: session is undefined"]
        }
      ]
    },
    {
      "name": "/app/src/billing/invoice.test.ts",
      "status": "passed",
      "message": "",
      "assertionResults": [
        {"title": "totals", "fullName": "invoice totals", "status": "passed", "failureMessages": []}
      ]
    }
  ]
}`

func TestVitestParser_Parse(t *testing.T) {
	parser := NewVitestParser()

	t.Run("clean report", func(t *testing.T) {
		report, err := parser.Parse([]byte(passingReport))
		require.NoError(t, err)
		assert.Equal(t, 3, report.NumTotalTests)
		assert.True(t, report.Success)
		require.Len(t, report.TestResults, 1)
		assert.Len(t, report.TestResults[0].AssertionResults, 3)
	})

	t.Run("report wrapped in log noise", func(t *testing.T) {
		noisy := "Downloading vitest...\n" + passingReport + "\ndone in 1.2s\n"
		report, err := parser.Parse([]byte(noisy))
		require.NoError(t, err)
		assert.Equal(t, 3, report.NumTotalTests)
	})

	t.Run("no JSON at all", func(t *testing.T) {
		_, err := parser.Parse([]byte("command not found: vitest"))
		require.Error(t, err)
		assert.Equal(t, domain.ErrCodeRunner, domain.ErrorCode(err))
		assert.Contains(t, err.Error(), "no JSON report")
	})

	t.Run("truncated JSON", func(t *testing.T) {
		_, err := parser.Parse([]byte(`{"numTotalTests": 3, "testResults": [{"name"`))
		require.Error(t, err)
		assert.Equal(t, domain.ErrCodeRunner, domain.ErrorCode(err))
	})

	t.Run("negative counts rejected", func(t *testing.T) {
		_, err := parser.Parse([]byte(`{"numTotalTests": -1, "numPassedTests": 0, "numFailedTests": 0, "success": true, "testResults": []}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid shape")
	})

	t.Run("counts exceeding total rejected", func(t *testing.T) {
		_, err := parser.Parse([]byte(`{"numTotalTests": 1, "numPassedTests": 1, "numFailedTests": 1, "success": false, "testResults": []}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid shape")
	})

	t.Run("file entry without a name rejected", func(t *testing.T) {
		_, err := parser.Parse([]byte(`{"numTotalTests": 1, "numPassedTests": 1, "numFailedTests": 0, "success": true, "testResults": [{"name": "", "status": "passed"}]}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid shape")
	})
}

func TestVitestParser_Normalize(t *testing.T) {
	parser := NewVitestParser()

	t.Run("summary format carries counts only", func(t *testing.T) {
		report, err := parser.Parse([]byte(failingReport))
		require.NoError(t, err)

		result := parser.Normalize(report, domain.FormatSummary, "npx vitest run src --reporter=json", "/app")
		assert.False(t, result.Success)
		assert.Equal(t, "2 of 4 tests failed", result.Summary)
		assert.Equal(t, 4, result.TestSummary.TotalTests)
		assert.Equal(t, 2, result.TestSummary.Passed)
		assert.Equal(t, 2, result.TestSummary.Failed)
		assert.Nil(t, result.TestResults)
	})

	t.Run("detailed format groups failures by file", func(t *testing.T) {
		report, err := parser.Parse([]byte(failingReport))
		require.NoError(t, err)

		result := parser.Normalize(report, domain.FormatDetailed, "npx vitest run src --reporter=json", "/app")
		require.NotNil(t, result.TestResults)
		require.Len(t, result.TestResults.FailedTests, 1)

		file := result.TestResults.FailedTests[0]
		assert.Equal(t, "src/auth/login.test.ts", file.File)
		require.Len(t, file.Tests, 2)
		assert.Equal(t, "auth rejects bad password", file.Tests[0].TestName)
		assert.Equal(t, "AssertionError", file.Tests[0].ErrorType)
		assert.Contains(t, file.Tests[0].Message, "expected 401 to be 200")
		assert.Equal(t, "TypeError", file.Tests[1].ErrorType)
	})

	t.Run("passing run in detailed format has no failure entries", func(t *testing.T) {
		report, err := parser.Parse([]byte(passingReport))
		require.NoError(t, err)

		result := parser.Normalize(report, domain.FormatDetailed, "cmd", "/app")
		assert.True(t, result.Success)
		assert.Equal(t, "3 tests passed", result.Summary)
		require.NotNil(t, result.TestResults)
		assert.Empty(t, result.TestResults.FailedTests)
	})

	t.Run("zero tests is a valid outcome", func(t *testing.T) {
		report, err := parser.Parse([]byte(`{"numTotalTests": 0, "numPassedTests": 0, "numFailedTests": 0, "success": true, "testResults": []}`))
		require.NoError(t, err)

		result := parser.Normalize(report, domain.FormatSummary, "cmd", "/app")
		assert.True(t, result.Success)
		assert.Equal(t, "No tests found", result.Summary)
	})

	t.Run("file outside the root keeps its absolute name", func(t *testing.T) {
		report, err := parser.Parse([]byte(failingReport))
		require.NoError(t, err)

		result := parser.Normalize(report, domain.FormatDetailed, "cmd", "/somewhere/else")
		assert.Equal(t, "/app/src/auth/login.test.ts", result.TestResults.FailedTests[0].File)
	})
}

func TestErrorType(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"AssertionError: expected 1 to be 2", "AssertionError"},
		{"TypeError: x is not a function\n    at foo.ts:3", "TypeError"},
		{"expected something: but this head has spaces", "Error"},
		{"plain failure text", "Error"},
		{"", "Error"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, errorType(tt.message), tt.message)
	}
}
