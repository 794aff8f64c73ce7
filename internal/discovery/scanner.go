package discovery

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"vmcp/internal/config"
	"vmcp/internal/domain"
)

// Scanner finds and classifies test files under a directory
type Scanner struct {
	cfg      *config.Config
	skipDirs map[string]bool
}

// NewScanner creates a Scanner from the resolved discovery configuration
func NewScanner(cfg *config.Config) *Scanner {
	skip := make(map[string]bool, len(cfg.Discovery.ExcludePatterns))
	for _, dir := range cfg.Discovery.ExcludePatterns {
		skip[dir] = true
	}
	return &Scanner{cfg: cfg, skipDirs: skip}
}

// FindTestFiles walks root recursively up to the configured depth and
// returns every test file sorted by relative path. A read failure at the
// root yields an empty result; failures in nested directories drop that
// subtree silently.
func (s *Scanner) FindTestFiles(root string) []domain.TestFile {
	root = filepath.Clean(root)
	maxDepth := s.cfg.Discovery.MaxDepth

	var files []domain.TestFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			if s.skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			if maxDepth > 0 && pathDepth(rel) > maxDepth {
				return filepath.SkipDir
			}
			return nil
		}

		if !s.IsTestFile(d.Name()) {
			return nil
		}
		files = append(files, domain.TestFile{
			Path:         path,
			RelativePath: filepath.ToSlash(rel),
			Type:         classify(rel),
		})
		return nil
	})
	if err != nil {
		return nil
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].RelativePath < files[j].RelativePath
	})
	return files
}

// IsTestFile reports whether a basename matches one of the configured test
// patterns.
func (s *Scanner) IsTestFile(name string) bool {
	for _, pattern := range s.cfg.Discovery.TestPatterns {
		if strings.HasSuffix(name, pattern) {
			return true
		}
	}
	return false
}

// classify inspects ancestor directory segments; the first segment named
// e2e or integration wins, everything else is a unit test. The filename
// itself never participates.
func classify(rel string) domain.TestType {
	segments := strings.Split(filepath.ToSlash(rel), "/")
	for _, seg := range segments[:len(segments)-1] {
		switch seg {
		case "e2e":
			return domain.TestTypeE2E
		case "integration":
			return domain.TestTypeIntegration
		}
	}
	return domain.TestTypeUnit
}

// pathDepth counts directory levels below the walk root
func pathDepth(rel string) int {
	return strings.Count(filepath.ToSlash(rel), "/") + 1
}

// FindProjectRoot walks upward from start looking for a package.json and
// returns the first ancestor that has one. When none is found, or start is
// empty and the working directory is unavailable, start is returned
// unchanged. It never fails.
func FindProjectRoot(start string) string {
	if start == "" {
		wd, err := os.Getwd()
		if err != nil {
			return start
		}
		start = wd
	}

	dir, err := filepath.Abs(start)
	if err != nil {
		return start
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "package.json")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return start
		}
		dir = parent
	}
}
