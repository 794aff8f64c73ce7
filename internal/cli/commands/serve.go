package commands

import (
	"github.com/spf13/cobra"

	"vmcp/internal/server"
)

// ServeCommand runs the MCP stdio server
type ServeCommand struct {
	server *server.Server
}

// NewServeCommand creates a ServeCommand
func NewServeCommand(srv *server.Server) *ServeCommand {
	return &ServeCommand{server: srv}
}

// Execute serves until the transport closes
func (sc *ServeCommand) Execute(cmd *cobra.Command, args []string) error {
	return sc.server.ServeStdio()
}
