package commands

import (
	"github.com/spf13/cobra"

	"vmcp/internal/cli"
	"vmcp/internal/config"
	"vmcp/internal/execution"
	"vmcp/internal/project"
	"vmcp/internal/ui"
)

// CoverageCommand handles the coverage command
type CoverageCommand struct {
	cfg       *config.Config
	flags     *cli.Flags
	ctx       *project.Context
	executor  *execution.Executor
	formatter *ui.Formatter
}

// NewCoverageCommand creates a CoverageCommand
func NewCoverageCommand(
	cfg *config.Config,
	flags *cli.Flags,
	ctx *project.Context,
	executor *execution.Executor,
	formatter *ui.Formatter,
) *CoverageCommand {
	return &CoverageCommand{
		cfg:       cfg,
		flags:     flags,
		ctx:       ctx,
		executor:  executor,
		formatter: formatter,
	}
}

// Execute runs the command
func (cc *CoverageCommand) Execute(cmd *cobra.Command, args []string) error {
	if err := ensureRoot(cc.ctx, cc.flags); err != nil {
		return err
	}

	opts := execution.RunOptions{Format: requestedFormat(cc.flags)}
	result, err := cc.executor.AnalyzeCoverage(cmd.Context(), args[0], opts)
	if err != nil {
		return err
	}

	cc.formatter.PrintCoverage(result)
	return nil
}
