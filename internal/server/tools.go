package server

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"

	"vmcp/internal/domain"
	"vmcp/internal/execution"
)

// registerTools declares the tool surface and binds handlers
func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool("set_project_root",
		mcp.WithDescription("Set the project directory that subsequent test operations run against"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Absolute or relative path to the project root"),
		),
	), s.handleSetProjectRoot)

	s.mcp.AddTool(mcp.NewTool("list_tests",
		mcp.WithDescription("Discover and classify test files under the project root"),
		mcp.WithString("path",
			mcp.Description("Directory to search, relative to the project root (defaults to the root)"),
		),
	), s.handleListTests)

	s.mcp.AddTool(mcp.NewTool("run_tests",
		mcp.WithDescription("Run tests for a file or directory and return structured results"),
		mcp.WithString("target",
			mcp.Required(),
			mcp.Description("Test file or directory to run, relative to the project root"),
		),
		mcp.WithString("format",
			mcp.Description("Output format: summary or detailed (defaults by context)"),
			mcp.Enum("summary", "detailed"),
		),
		mcp.WithString("project",
			mcp.Description("Vitest workspace project name to run"),
		),
		mcp.WithBoolean("showLogs",
			mcp.Description("Include runner stderr in the result"),
			mcp.DefaultBool(false),
		),
	), s.handleRunTests)

	s.mcp.AddTool(mcp.NewTool("analyze_coverage",
		mcp.WithDescription("Run tests with coverage and evaluate thresholds"),
		mcp.WithString("target",
			mcp.Required(),
			mcp.Description("Source file or directory to analyze, relative to the project root"),
		),
		mcp.WithString("format",
			mcp.Description("Output format: summary or detailed"),
			mcp.Enum("summary", "detailed"),
		),
	), s.handleAnalyzeCoverage)

	s.mcp.AddTool(mcp.NewTool("check_environment",
		mcp.WithDescription("Check installed vitest and coverage provider versions for compatibility"),
	), s.handleCheckEnvironment)
}

func (s *Server) handleSetProjectRoot(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return toolError(domain.NewInvalidArgumentError("Path parameter is required")), nil
	}

	root, err := s.ctx.SetRoot(path)
	if err != nil {
		return toolError(err), nil
	}

	return jsonResult(map[string]any{
		"success":     true,
		"message":     fmt.Sprintf("Project root set to %s", root.Path),
		"projectRoot": root.Path,
		"projectName": root.Name,
	})
}

func (s *Server) handleListTests(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := stringArg(req, "path")

	resolved, err := s.guard.Resolve(path)
	if err != nil {
		if domain.ErrorCode(err) == domain.ErrCodeNotSet {
			// Discovery without a root is a hard error so the caller is
			// forced to call set_project_root first.
			return nil, err
		}
		return toolError(err), nil
	}

	if info, statErr := os.Stat(resolved); statErr != nil || !info.IsDir() {
		return toolError(domain.NewNotFoundError(
			fmt.Sprintf("Search path does not exist: %s", resolved))), nil
	}

	root, err := s.ctx.Root()
	if err != nil {
		return nil, err
	}

	files := s.scanner.FindTestFiles(resolved)
	return jsonResult(domain.ListResult{
		TestFiles:   files,
		TotalCount:  len(files),
		SearchPath:  resolved,
		ProjectRoot: root.Path,
	})
}

func (s *Server) handleRunTests(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	target, err := req.RequireString("target")
	if err != nil {
		return toolError(domain.NewInvalidArgumentError("Target parameter is required")), nil
	}

	opts := execution.RunOptions{
		Format:  domain.OutputFormat(stringArg(req, "format")),
		Project: stringArg(req, "project"),
	}

	result, err := s.executor.RunTests(ctx, target, opts)
	if err != nil {
		return toolError(err), nil
	}
	if !boolArg(req, "showLogs") {
		result.Stderr = ""
	}
	return jsonResult(result)
}

func (s *Server) handleAnalyzeCoverage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	target, err := req.RequireString("target")
	if err != nil {
		return toolError(domain.NewInvalidArgumentError("Target parameter is required")), nil
	}

	opts := execution.RunOptions{
		Format: domain.OutputFormat(stringArg(req, "format")),
	}
	result, err := s.executor.AnalyzeCoverage(ctx, target, opts)
	if err != nil {
		return toolError(err), nil
	}
	result.Stderr = ""
	return jsonResult(result)
}

func (s *Server) handleCheckEnvironment(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root, err := s.ctx.Root()
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(s.checker.Check(root.Path))
}

// jsonResult marshals a payload into a text tool result
func jsonResult(payload any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// toolError converts a domain error into the structured failure shape the
// tool contract promises.
func toolError(err error) *mcp.CallToolResult {
	payload := map[string]any{
		"success": false,
		"message": err.Error(),
	}
	if code := domain.ErrorCode(err); code != "" {
		payload["code"] = code
	}
	data, marshalErr := json.Marshal(payload)
	if marshalErr != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultError(string(data))
}

func stringArg(req mcp.CallToolRequest, key string) string {
	if v, ok := req.GetArguments()[key].(string); ok {
		return v
	}
	return ""
}

func boolArg(req mcp.CallToolRequest, key string) bool {
	if v, ok := req.GetArguments()[key].(bool); ok {
		return v
	}
	return false
}
