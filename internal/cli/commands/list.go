package commands

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"vmcp/internal/cli"
	"vmcp/internal/config"
	"vmcp/internal/discovery"
	"vmcp/internal/project"
	"vmcp/internal/ui"
)

// ListCommand handles the list command
type ListCommand struct {
	cfg       *config.Config
	flags     *cli.Flags
	ctx       *project.Context
	guard     *project.Guard
	scanner   *discovery.Scanner
	filter    *discovery.Filter
	formatter *ui.Formatter
}

// NewListCommand creates a ListCommand
func NewListCommand(
	cfg *config.Config,
	flags *cli.Flags,
	ctx *project.Context,
	guard *project.Guard,
	scanner *discovery.Scanner,
	filter *discovery.Filter,
	formatter *ui.Formatter,
) *ListCommand {
	return &ListCommand{
		cfg:       cfg,
		flags:     flags,
		ctx:       ctx,
		guard:     guard,
		scanner:   scanner,
		filter:    filter,
		formatter: formatter,
	}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	if err := ensureRoot(lc.ctx, lc.flags); err != nil {
		return err
	}

	searchPath := ""
	if len(args) > 0 {
		searchPath = args[0]
	}
	resolved, err := lc.guard.Resolve(searchPath)
	if err != nil {
		return err
	}
	if info, statErr := os.Stat(resolved); statErr != nil || !info.IsDir() {
		return fmt.Errorf("Search path does not exist: %s", resolved)
	}

	files := lc.scanner.FindTestFiles(resolved)
	files = lc.filter.ByName(files, lc.flags.NameFilter)

	if len(files) == 0 {
		color.Yellow("No test files found")
		return nil
	}
	return lc.formatter.PrintTestList(files, lc.flags.TestCases)
}
