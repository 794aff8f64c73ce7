package config

import "vmcp/internal/domain"

const (
	// DefaultFormat is the default test output format
	DefaultFormat = domain.FormatSummary
	// DefaultCoverageFormat is the default coverage output format
	DefaultCoverageFormat = domain.FormatDetailed
	// DefaultTimeoutMs is the default runner timeout in milliseconds
	DefaultTimeoutMs = 30000
	// DefaultMaxDepth is the default discovery recursion depth
	DefaultMaxDepth = 10
	// DefaultMaxFiles is the default cap on files per test run
	DefaultMaxFiles = 100
	// LastRunDir is the directory under the project root holding run artifacts
	LastRunDir = ".vmcp"
	// LastRunFile is the persisted last-run results file name
	LastRunFile = "last-run.json"
)

// DefaultTestPatterns are the basename markers that qualify a test file
var DefaultTestPatterns = []string{
	".test.js", ".test.ts", ".test.jsx", ".test.tsx",
	".spec.js", ".spec.ts", ".spec.jsx", ".spec.tsx",
}

// DefaultExcludeDirs are directory names skipped entirely during discovery
var DefaultExcludeDirs = []string{
	"node_modules",
	"dist",
	"build",
	".git",
	"coverage",
}

// DefaultCoverageExclude are safety exclusion globs always passed to the
// coverage run; user-supplied globs are unioned with these, never replace them.
var DefaultCoverageExclude = []string{
	"node_modules/**",
	"dist/**",
	"build/**",
	"coverage/**",
	"**/*.d.ts",
	"**/*.config.*",
}

// DefaultAllowedRunners are the package runners the invoker may spawn
var DefaultAllowedRunners = []string{"npx", "npm", "yarn", "pnpm"}
