package execution

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"vmcp/internal/config"
	"vmcp/internal/coverage"
	"vmcp/internal/discovery"
	"vmcp/internal/domain"
	"vmcp/internal/parser"
	"vmcp/internal/project"
	"vmcp/internal/storage"
)

// Executor drives one test or coverage run end to end: validate the target,
// build and spawn the runner invocation, normalize the report, persist the
// outcome. Every call attempts its action exactly once.
type Executor struct {
	cfg      *config.Config
	ctx      *project.Context
	planner  *Planner
	invoker  *Invoker
	parser   *parser.VitestParser
	scanner  *discovery.Scanner
	coverage *coverage.Evaluator
	store    storage.Storage
}

// NewExecutor wires an Executor from its collaborators
func NewExecutor(
	cfg *config.Config,
	ctx *project.Context,
	planner *Planner,
	invoker *Invoker,
	vitestParser *parser.VitestParser,
	scanner *discovery.Scanner,
	evaluator *coverage.Evaluator,
	store storage.Storage,
) *Executor {
	return &Executor{
		cfg:      cfg,
		ctx:      ctx,
		planner:  planner,
		invoker:  invoker,
		parser:   vitestParser,
		scanner:  scanner,
		coverage: evaluator,
		store:    store,
	}
}

// RunTests executes the runner against target and returns the normalized
// result. Wall-clock time covers invocation and processing together.
func (e *Executor) RunTests(ctx context.Context, target string, opts RunOptions) (*domain.RunResult, error) {
	started := time.Now()

	resolved, err := e.planner.ValidateTarget(target)
	if err != nil {
		return nil, err
	}
	ectx, err := e.planner.CreateExecutionContext(resolved)
	if err != nil {
		return nil, err
	}
	invocation, err := e.planner.BuildInvocation(resolved, opts)
	if err != nil {
		return nil, err
	}

	outcome, err := e.invoker.Invoke(ctx, invocation)
	if err != nil {
		return nil, err
	}

	root, err := e.ctx.Root()
	if err != nil {
		return nil, err
	}

	report, parseErr := e.parser.Parse(outcome.Stdout)
	if parseErr != nil {
		// An unparsable report is a failed run, not a crash. Raw stderr is
		// kept for diagnostics.
		format := e.planner.DetermineFormat(opts.Format, ectx, true)
		result := &domain.RunResult{
			Command:         invocation.Command(),
			Success:         false,
			Summary:         parseErr.Error(),
			Format:          format,
			ExecutionTimeMs: time.Since(started).Milliseconds(),
			Stderr:          string(outcome.Stderr),
		}
		return result, nil
	}

	hasFailures := report.NumFailedTests > 0 || !report.Success
	format := e.planner.DetermineFormat(opts.Format, ectx, hasFailures)

	result := e.parser.Normalize(report, format, invocation.Command(), root.Path)
	if outcome.ExitCode != 0 {
		result.Success = false
	}
	if !result.Success {
		result.Stderr = string(outcome.Stderr)
	}
	result.ExecutionTimeMs = time.Since(started).Milliseconds()

	// The viewer always wants per-failure detail, independent of the
	// format the caller asked for.
	persisted := result
	if format != domain.FormatDetailed {
		persisted = e.parser.Normalize(report, domain.FormatDetailed, invocation.Command(), root.Path)
		persisted.Success = result.Success
	}
	e.persist(persisted, outcome.Duration)
	return result, nil
}

// AnalyzeCoverage runs the target with coverage instrumentation and
// evaluates the measured metrics against the configured thresholds.
func (e *Executor) AnalyzeCoverage(ctx context.Context, target string, opts RunOptions) (*domain.CoverageResult, error) {
	resolved, err := e.planner.ValidateTarget(target)
	if err != nil {
		return nil, err
	}

	if info, statErr := os.Stat(resolved); statErr == nil && !info.IsDir() {
		if e.scanner.IsTestFile(filepath.Base(resolved)) {
			return nil, domain.NewInvalidArgumentError(fmt.Sprintf(
				"%s is a test file. Coverage analysis targets the source under test; point it at a source file or directory instead.",
				filepath.Base(resolved)))
		}
	}

	opts.Coverage = true
	if !opts.Format.Valid() {
		opts.Format = e.cfg.CoverageDefaults.Format
	}
	run, err := e.RunTests(ctx, target, opts)
	if err != nil {
		return nil, err
	}

	result := &domain.CoverageResult{RunResult: *run}

	root, err := e.ctx.Root()
	if err != nil {
		return nil, err
	}
	metrics, err := e.coverage.ReadSummary(root.Path)
	if err != nil {
		// The run itself is still reported; coverage data degrades to absent.
		return result, nil
	}
	result.Coverage = metrics

	if thresholds := e.coverage.Thresholds(root.Path); thresholds != nil {
		met := metrics.Met(thresholds)
		result.CoverageThresholds = thresholds
		result.ThresholdsMet = &met
		result.Violations = metrics.Violations(thresholds)
	}
	return result, nil
}

// persist saves the run for the failures viewer; a write failure never
// fails the run itself.
func (e *Executor) persist(result *domain.RunResult, duration time.Duration) {
	if e.store == nil {
		return
	}
	output := domain.NewLastRunOutput(result, duration, time.Now().Format(time.RFC3339))
	if err := e.store.Save(output); err != nil && e.cfg.Server.Verbose {
		fmt.Fprintf(os.Stderr, "vmcp: failed to persist run results: %v\n", err)
	}
}
