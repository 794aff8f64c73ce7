package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"vmcp/internal/cli"
	"vmcp/internal/cli/commands"
	"vmcp/internal/config"
	"vmcp/internal/server"
)

var version = "dev"

func main() {
	// Pick up a local .env before the environment tier is read.
	godotenv.Load()

	server.Version = version

	rootCmd := &cobra.Command{
		Use:     "vmcp",
		Short:   "Vitest MCP server",
		Long:    "Expose a JavaScript test runner to agents as structured MCP tools: set a project root, discover test files, execute tests and analyze coverage.",
		Version: version,
	}

	var flags cli.Flags
	rootCmd.PersistentFlags().StringVar(&flags.ConfigPath, "config", "", "Path to a JSON configuration file")
	rootCmd.PersistentFlags().StringVar(&flags.Format, "format", "", "Test output format (summary|detailed)")
	rootCmd.PersistentFlags().IntVar(&flags.TimeoutMs, "timeout", 0, "Runner timeout in milliseconds")
	rootCmd.PersistentFlags().BoolVar(&flags.Verbose, "verbose", false, "Verbose diagnostics on stderr")
	rootCmd.PersistentFlags().StringVar(&flags.WorkDir, "workdir", "", "Working directory override")
	rootCmd.PersistentFlags().StringVar(&flags.Root, "root", "", "Project root (defaults to the nearest ancestor with a package.json)")

	// The resolver owns tier merging and caches per argument vector; the
	// cobra flags above exist so the same flags show up in --help.
	resolver := config.NewResolver()
	cfg := resolver.Load(os.Args[1:])

	cmds := commands.NewCommands(cfg, &flags)
	cmds.Register(rootCmd, &flags)

	// Serving MCP is the default when no subcommand is named.
	rootCmd.RunE = cmds.Serve.Execute

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
