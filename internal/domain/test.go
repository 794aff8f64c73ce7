package domain

// TestType classifies a test file by its location in the tree
type TestType string

const (
	TestTypeUnit        TestType = "unit"
	TestTypeIntegration TestType = "integration"
	TestTypeE2E         TestType = "e2e"
)

// TestFile represents a discovered test file
type TestFile struct {
	Path         string   `json:"path"`
	RelativePath string   `json:"relativePath"`
	Type         TestType `json:"type"`
}

// TestCase represents a single test case extracted from a test file
type TestCase struct {
	Name     string `json:"name"`
	FilePath string `json:"filePath"`
}

// ListResult is the payload returned by the list_tests tool
type ListResult struct {
	TestFiles   []TestFile `json:"testFiles"`
	TotalCount  int        `json:"totalCount"`
	SearchPath  string     `json:"searchPath"`
	ProjectRoot string     `json:"projectRoot"`
}
