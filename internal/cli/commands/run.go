package commands

import (
	"github.com/spf13/cobra"

	"vmcp/internal/cli"
	"vmcp/internal/config"
	"vmcp/internal/execution"
	"vmcp/internal/project"
	"vmcp/internal/ui"
)

// RunCommand handles the run command
type RunCommand struct {
	cfg       *config.Config
	flags     *cli.Flags
	ctx       *project.Context
	executor  *execution.Executor
	formatter *ui.Formatter
}

// NewRunCommand creates a RunCommand
func NewRunCommand(
	cfg *config.Config,
	flags *cli.Flags,
	ctx *project.Context,
	executor *execution.Executor,
	formatter *ui.Formatter,
) *RunCommand {
	return &RunCommand{
		cfg:       cfg,
		flags:     flags,
		ctx:       ctx,
		executor:  executor,
		formatter: formatter,
	}
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	if err := ensureRoot(rc.ctx, rc.flags); err != nil {
		return err
	}

	opts := execution.RunOptions{
		Format:  requestedFormat(rc.flags),
		Project: rc.flags.Project,
	}
	result, err := rc.executor.RunTests(cmd.Context(), args[0], opts)
	if err != nil {
		return err
	}

	if !rc.flags.ShowLogs {
		result.Stderr = ""
	}
	rc.formatter.PrintRunResult(result)
	return nil
}
