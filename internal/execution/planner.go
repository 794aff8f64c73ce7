package execution

import (
	"fmt"
	"os"
	"strings"

	"vmcp/internal/config"
	"vmcp/internal/domain"
	"vmcp/internal/project"
)

// defaultRunner is the package runner used to launch vitest
const defaultRunner = "npx"

// Invocation is a fully built external runner call
type Invocation struct {
	Runner string
	Args   []string
	Dir    string
}

// Command renders the invocation as a display string
func (inv Invocation) Command() string {
	return inv.Runner + " " + strings.Join(inv.Args, " ")
}

// RunOptions are the caller-controlled knobs for one test run
type RunOptions struct {
	Format     domain.OutputFormat
	Project    string
	ConfigPath string
	Coverage   bool
}

// Planner validates targets and builds runner invocations
type Planner struct {
	cfg   *config.Config
	ctx   *project.Context
	guard *project.Guard
}

// NewPlanner creates a Planner bound to the session's project context
func NewPlanner(cfg *config.Config, ctx *project.Context, guard *project.Guard) *Planner {
	return &Planner{cfg: cfg, ctx: ctx, guard: guard}
}

// ValidateTarget resolves and checks a requested target, returning its
// absolute path.
func (p *Planner) ValidateTarget(target string) (string, error) {
	if strings.TrimSpace(target) == "" {
		return "", domain.NewInvalidArgumentError("Target parameter is required")
	}

	resolved, err := p.guard.Resolve(target)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(resolved); err != nil {
		return "", domain.NewNotFoundError(fmt.Sprintf("Target does not exist: %s", resolved))
	}

	root, err := p.ctx.Root()
	if err != nil {
		return "", err
	}
	if resolved == root.Path && !p.cfg.Server.AllowRootExecution {
		return "", domain.NewInvalidArgumentError(
			"Cannot run tests on entire project root. Target a specific file or directory.")
	}
	return resolved, nil
}

// CreateExecutionContext inspects the validated target. Test counts are not
// enumerated eagerly.
func (p *Planner) CreateExecutionContext(resolved string) (domain.ExecutionContext, error) {
	info, err := os.Stat(resolved)
	if err != nil {
		return domain.ExecutionContext{}, domain.NewNotFoundError(
			fmt.Sprintf("Target does not exist: %s", resolved))
	}
	if info.IsDir() {
		return domain.ExecutionContext{IsMultiFile: true, TargetType: domain.TargetDirectory}, nil
	}
	return domain.ExecutionContext{IsMultiFile: false, TargetType: domain.TargetFile}, nil
}

// DetermineFormat picks the output format. An explicit request always wins;
// otherwise failures or multi-file targets force detailed output so the
// ambiguous or bad cases carry maximal information, and the configured
// default applies to the rest.
func (p *Planner) DetermineFormat(requested domain.OutputFormat, ectx domain.ExecutionContext, hasFailures bool) domain.OutputFormat {
	if requested.Valid() {
		return requested
	}
	if hasFailures {
		return domain.FormatDetailed
	}
	if ectx.IsMultiFile {
		return domain.FormatDetailed
	}
	if p.cfg.TestDefaults.Format.Valid() {
		return p.cfg.TestDefaults.Format
	}
	return domain.FormatSummary
}

// BuildInvocation constructs the runner argument vector. The working
// directory is always the project root; stdin stays disconnected and stdio
// is captured by the invoker.
func (p *Planner) BuildInvocation(resolvedTarget string, opts RunOptions) (Invocation, error) {
	root, err := p.ctx.Root()
	if err != nil {
		return Invocation{}, err
	}

	if !p.cfg.RunnerAllowed(defaultRunner) {
		return Invocation{}, domain.NewAccessDeniedError(
			fmt.Sprintf("Runner %q is not on the allowed runners list", defaultRunner))
	}

	args := []string{"vitest", "run", resolvedTarget, "--reporter=json"}
	if opts.Project != "" {
		args = append(args, "--project", opts.Project)
	}
	if opts.ConfigPath != "" {
		args = append(args, "--config", opts.ConfigPath)
	}
	if opts.Coverage {
		args = append(args, "--coverage", "--coverage.reporter=json-summary")
		for _, glob := range p.cfg.CoverageDefaults.Exclude {
			args = append(args, fmt.Sprintf("--coverage.exclude=%s", glob))
		}
	}

	return Invocation{Runner: defaultRunner, Args: args, Dir: root.Path}, nil
}
