package server

import (
	"github.com/mark3labs/mcp-go/server"

	"vmcp/internal/config"
	"vmcp/internal/discovery"
	"vmcp/internal/execution"
	"vmcp/internal/project"
	"vmcp/internal/version"
)

// Version is stamped by the build
var Version = "dev"

// Server exposes the test orchestration core as MCP tools over stdio
type Server struct {
	cfg      *config.Config
	ctx      *project.Context
	guard    *project.Guard
	scanner  *discovery.Scanner
	executor *execution.Executor
	checker  *version.Checker

	mcp *server.MCPServer
}

// New wires a Server and registers its tools
func New(
	cfg *config.Config,
	ctx *project.Context,
	guard *project.Guard,
	scanner *discovery.Scanner,
	executor *execution.Executor,
	checker *version.Checker,
) *Server {
	s := &Server{
		cfg:      cfg,
		ctx:      ctx,
		guard:    guard,
		scanner:  scanner,
		executor: executor,
		checker:  checker,
	}

	s.mcp = server.NewMCPServer(
		"vmcp",
		Version,
		server.WithToolCapabilities(true),
	)
	s.registerTools()
	return s
}

// ServeStdio blocks serving the MCP protocol on stdin/stdout. Diagnostics
// must go to stderr; stdout belongs to the transport.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}
