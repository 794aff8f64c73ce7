package commands

import (
	"github.com/spf13/cobra"

	"vmcp/internal/cli"
	"vmcp/internal/project"
	"vmcp/internal/ui"
	"vmcp/internal/version"
)

// DoctorCommand handles the doctor command
type DoctorCommand struct {
	flags     *cli.Flags
	ctx       *project.Context
	checker   *version.Checker
	formatter *ui.Formatter
}

// NewDoctorCommand creates a DoctorCommand
func NewDoctorCommand(
	flags *cli.Flags,
	ctx *project.Context,
	checker *version.Checker,
	formatter *ui.Formatter,
) *DoctorCommand {
	return &DoctorCommand{
		flags:     flags,
		ctx:       ctx,
		checker:   checker,
		formatter: formatter,
	}
}

// Execute runs the command
func (dc *DoctorCommand) Execute(cmd *cobra.Command, args []string) error {
	if err := ensureRoot(dc.ctx, dc.flags); err != nil {
		return err
	}
	root, err := dc.ctx.Root()
	if err != nil {
		return err
	}
	dc.formatter.PrintCompatibility(dc.checker.Check(root.Path))
	return nil
}
