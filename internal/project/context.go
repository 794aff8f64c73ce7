package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"vmcp/internal/config"
	"vmcp/internal/domain"
)

// SelfPackageName is the declared package name of this tool's own
// installation; setting the project root there is rejected outside dev mode.
const SelfPackageName = "vmcp"

// Root is the validated project root slot
type Root struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

// Context holds the currently active project root for one session. It is
// created at startup and injected into every consumer; overlapping sets are
// serialized and the last write wins.
type Context struct {
	mu   sync.RWMutex
	cfg  *config.Config
	root *Root
}

// NewContext creates a Context with no root set
func NewContext(cfg *config.Config) *Context {
	return &Context{cfg: cfg}
}

// SetRoot validates path and replaces the slot wholesale.
func (c *Context) SetRoot(path string) (*Root, error) {
	if strings.TrimSpace(path) == "" {
		return nil, domain.NewInvalidArgumentError("Path parameter is required")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, domain.NewInvalidArgumentError(fmt.Sprintf("Invalid path: %s", path))
	}
	abs = filepath.Clean(abs)

	info, err := os.Stat(abs)
	if err != nil {
		return nil, domain.NewNotFoundError(fmt.Sprintf("Directory does not exist: %s", abs))
	}
	if !info.IsDir() {
		return nil, domain.NewNotADirectoryError(fmt.Sprintf("Path is not a directory: %s", abs))
	}

	if !c.cfg.Server.DevMode && isSelfPackage(abs) {
		return nil, domain.NewAccessDeniedError(
			fmt.Sprintf("Cannot set project root to the %s package itself", SelfPackageName))
	}

	if len(c.cfg.Safety.AllowedPaths) > 0 && !insideAny(abs, c.cfg.Safety.AllowedPaths) {
		return nil, domain.NewAccessDeniedError(
			fmt.Sprintf("Access denied: %s is outside allowed directories", abs))
	}

	root := &Root{Path: abs, Name: filepath.Base(abs)}
	c.mu.Lock()
	c.root = root
	c.mu.Unlock()
	return root, nil
}

// Root returns the current project root, or a not-set error.
func (c *Context) Root() (*Root, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.root == nil {
		return nil, domain.NewNotSetError(
			"Project root has not been set. Call set_project_root before running tests.")
	}
	return c.root, nil
}

// Reset clears the slot. Used at session boundaries and in tests.
func (c *Context) Reset() {
	c.mu.Lock()
	c.root = nil
	c.mu.Unlock()
}

// isSelfPackage reports whether dir's manifest declares this tool's own
// package name.
func isSelfPackage(dir string) bool {
	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		return false
	}
	var manifest struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return false
	}
	return manifest.Name == SelfPackageName
}

// insideAny reports whether path equals or is nested under one of the roots.
func insideAny(path string, roots []string) bool {
	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			continue
		}
		if isWithin(abs, path) {
			return true
		}
	}
	return false
}

// isWithin reports whether child equals parent or is nested under it.
func isWithin(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
