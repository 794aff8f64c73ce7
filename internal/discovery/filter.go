package discovery

import (
	"path/filepath"
	"strings"

	"vmcp/internal/domain"
)

// Filter filters discovered test files by basename pattern
type Filter struct{}

// NewFilter creates a new Filter
func NewFilter() *Filter {
	return &Filter{}
}

// ByName keeps the test files whose basename matches the pattern. Wildcard
// patterns ("*.auth.test.ts", "*login*") use glob matching with a substring
// fallback; a bare pattern is a plain substring match.
func (f *Filter) ByName(files []domain.TestFile, pattern string) []domain.TestFile {
	if pattern == "" {
		return files
	}

	var filtered []domain.TestFile
	for _, file := range files {
		name := filepath.Base(file.Path)
		if matchesName(name, pattern) {
			filtered = append(filtered, file)
		}
	}
	return filtered
}

func matchesName(name, pattern string) bool {
	if !strings.ContainsAny(pattern, "*?") {
		return strings.Contains(name, pattern)
	}
	if ok, err := filepath.Match(pattern, name); err == nil && ok {
		return true
	}
	// Fallback for patterns like "*login*": every literal part must appear.
	parts := strings.Split(pattern, "*")
	hasLiteral := false
	for _, part := range parts {
		if part == "" {
			continue
		}
		hasLiteral = true
		if !strings.Contains(name, part) {
			return false
		}
	}
	return hasLiteral
}
