package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"vmcp/internal/cli"
	"vmcp/internal/project"
	"vmcp/internal/storage"
	"vmcp/internal/ui"
)

// FailuresCommand handles the failures command
type FailuresCommand struct {
	flags  *cli.Flags
	ctx    *project.Context
	store  storage.Storage
	viewer *ui.FailureViewer
}

// NewFailuresCommand creates a FailuresCommand
func NewFailuresCommand(
	flags *cli.Flags,
	ctx *project.Context,
	store storage.Storage,
	viewer *ui.FailureViewer,
) *FailuresCommand {
	return &FailuresCommand{
		flags:  flags,
		ctx:    ctx,
		store:  store,
		viewer: viewer,
	}
}

// Execute runs the command
func (fc *FailuresCommand) Execute(cmd *cobra.Command, args []string) error {
	if err := ensureRoot(fc.ctx, fc.flags); err != nil {
		return err
	}

	results, err := fc.store.Load()
	if err != nil {
		return fmt.Errorf("no stored test results; run 'vmcp run' first: %w", err)
	}
	return fc.viewer.View(results)
}
