package project

import (
	"fmt"
	"path/filepath"

	"vmcp/internal/config"
	"vmcp/internal/domain"
)

// Guard resolves arbitrary path arguments against the active project root
// and the optional allow-list.
type Guard struct {
	cfg *config.Config
	ctx *Context
}

// NewGuard creates a Guard bound to the given context
func NewGuard(cfg *config.Config, ctx *Context) *Guard {
	return &Guard{cfg: cfg, ctx: ctx}
}

// Resolve turns a path argument into an absolute path under the project
// root. An empty argument resolves to the root itself. Relative paths are
// resolved against the root; traversal outside the root or the allow-list is
// rejected when path validation is enabled.
func (g *Guard) Resolve(path string) (string, error) {
	root, err := g.ctx.Root()
	if err != nil {
		return "", err
	}

	if path == "" || path == "." {
		return root.Path, nil
	}

	resolved := path
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(root.Path, resolved)
	}
	resolved = filepath.Clean(resolved)

	if g.cfg.Server.ValidatePaths {
		if !isWithin(root.Path, resolved) {
			return "", domain.NewAccessDeniedError(
				fmt.Sprintf("Access denied: %s is outside the project root", resolved))
		}
		if len(g.cfg.Safety.AllowedPaths) > 0 && !insideAny(resolved, g.cfg.Safety.AllowedPaths) {
			return "", domain.NewAccessDeniedError(
				fmt.Sprintf("Access denied: %s is outside allowed directories", resolved))
		}
	}

	return resolved, nil
}
