package commands

import (
	"github.com/spf13/cobra"

	"vmcp/internal/cli"
	"vmcp/internal/config"
	"vmcp/internal/coverage"
	"vmcp/internal/discovery"
	"vmcp/internal/domain"
	"vmcp/internal/execution"
	"vmcp/internal/parser"
	"vmcp/internal/project"
	"vmcp/internal/server"
	"vmcp/internal/storage"
	"vmcp/internal/ui"
	"vmcp/internal/version"
)

// Commands holds all CLI commands
type Commands struct {
	Serve    *ServeCommand
	List     *ListCommand
	Run      *RunCommand
	Coverage *CoverageCommand
	Failures *FailuresCommand
	Doctor   *DoctorCommand
}

// NewCommands wires the dependency graph once and hands it to every command
func NewCommands(cfg *config.Config, flags *cli.Flags) *Commands {
	ctx := project.NewContext(cfg)
	guard := project.NewGuard(cfg, ctx)
	scanner := discovery.NewScanner(cfg)
	filter := discovery.NewFilter()
	caseParser := discovery.NewParser()
	vitestParser := parser.NewVitestParser()
	planner := execution.NewPlanner(cfg, ctx, guard)
	invoker := execution.NewInvoker(cfg)
	evaluator := coverage.NewEvaluator(cfg)
	store := storage.NewJSONStorage(cfg, ctx)
	executor := execution.NewExecutor(cfg, ctx, planner, invoker, vitestParser, scanner, evaluator, store)
	formatter := ui.NewFormatter(cfg, caseParser)
	viewer := ui.NewFailureViewer(store)
	checker := version.NewChecker()
	srv := server.New(cfg, ctx, guard, scanner, executor, checker)

	return &Commands{
		Serve:    NewServeCommand(srv),
		List:     NewListCommand(cfg, flags, ctx, guard, scanner, filter, formatter),
		Run:      NewRunCommand(cfg, flags, ctx, executor, formatter),
		Coverage: NewCoverageCommand(cfg, flags, ctx, executor, formatter),
		Failures: NewFailuresCommand(flags, ctx, store, viewer),
		Doctor:   NewDoctorCommand(flags, ctx, checker, formatter),
	}
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags) {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve MCP tools over stdio",
		Long:  "Expose set_project_root, list_tests, run_tests and analyze_coverage as MCP tools on stdin/stdout",
		RunE:  c.Serve.Execute,
	}
	rootCmd.AddCommand(serveCmd)

	listCmd := &cobra.Command{
		Use:   "list [path]",
		Short: "List discovered test files",
		Long:  "Scan the project for test files, classify them and print the result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  c.List.Execute,
	}
	listCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter test files by basename pattern (supports wildcards, e.g. '*auth*')")
	listCmd.Flags().BoolVarP(&flags.TestCases, "cases", "c", false, "Enumerate test cases inside each file")
	rootCmd.AddCommand(listCmd)

	runCmd := &cobra.Command{
		Use:   "run <target>",
		Short: "Run tests for a file or directory",
		Long:  "Execute vitest against the target and print the normalized result",
		Args:  cobra.ExactArgs(1),
		RunE:  c.Run.Execute,
	}
	runCmd.Flags().StringVar(&flags.Project, "project", "", "Vitest workspace project name")
	runCmd.Flags().BoolVar(&flags.ShowLogs, "show-logs", false, "Print runner stderr on failure")
	rootCmd.AddCommand(runCmd)

	coverageCmd := &cobra.Command{
		Use:   "coverage <target>",
		Short: "Run tests with coverage and evaluate thresholds",
		Args:  cobra.ExactArgs(1),
		RunE:  c.Coverage.Execute,
	}
	rootCmd.AddCommand(coverageCmd)

	failuresCmd := &cobra.Command{
		Use:   "failures",
		Short: "View the last run's failures interactively",
		RunE:  c.Failures.Execute,
	}
	rootCmd.AddCommand(failuresCmd)

	doctorCmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check runner and coverage provider compatibility",
		RunE:  c.Doctor.Execute,
	}
	rootCmd.AddCommand(doctorCmd)
}

// ensureRoot sets the project context for CLI use: the --root flag when
// given, otherwise the nearest ancestor with a package.json.
func ensureRoot(ctx *project.Context, flags *cli.Flags) error {
	if _, err := ctx.Root(); err == nil {
		return nil
	}
	start := flags.Root
	if start == "" {
		start = discovery.FindProjectRoot("")
	}
	_, err := ctx.SetRoot(start)
	return err
}

// requestedFormat turns the --format flag into a format, empty meaning
// "decide by context".
func requestedFormat(flags *cli.Flags) domain.OutputFormat {
	return domain.OutputFormat(flags.Format)
}
