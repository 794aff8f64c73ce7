package discovery

import (
	"fmt"
	"os"
	"regexp"
	"sort"
)

// Parser extracts test case names from JavaScript/TypeScript test files
type Parser struct{}

// NewParser creates a new Parser
func NewParser() *Parser {
	return &Parser{}
}

// Test case declarations: it/test, optionally with a modifier chain like
// it.only / test.skip / it.concurrent, followed by a quoted name. Template
// literals are matched too since plain names are commonly written that way.
var testCasePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?m)\b(?:it|test)(?:\.\w+)*\s*\(\s*'((?:\\'|[^'\n])+)'`),
	regexp.MustCompile(`(?m)\b(?:it|test)(?:\.\w+)*\s*\(\s*"((?:\\"|[^"\n])+)"`),
	regexp.MustCompile("(?m)\\b(?:it|test)(?:\\.\\w+)*\\s*\\(\\s*`([^`\\n]+)`"),
}

// FindTestCases returns the sorted, deduplicated test case names declared in
// a test file.
func (p *Parser) FindTestCases(filePath string) ([]string, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading file %s: %w", filePath, err)
	}

	seen := make(map[string]bool)
	for _, pattern := range testCasePatterns {
		for _, match := range pattern.FindAllStringSubmatch(string(content), -1) {
			if len(match) > 1 {
				seen[match[1]] = true
			}
		}
	}

	cases := make([]string, 0, len(seen))
	for name := range seen {
		cases = append(cases, name)
	}
	sort.Strings(cases)
	return cases, nil
}
