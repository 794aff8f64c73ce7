package server

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vmcp/internal/config"
	"vmcp/internal/coverage"
	"vmcp/internal/discovery"
	"vmcp/internal/execution"
	"vmcp/internal/parser"
	"vmcp/internal/project"
	"vmcp/internal/storage"
	"vmcp/internal/version"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "login.test.ts"), []byte("it('x', () => {})"), 0644))

	cfg := config.New()
	ctx := project.NewContext(cfg)
	guard := project.NewGuard(cfg, ctx)
	scanner := discovery.NewScanner(cfg)
	planner := execution.NewPlanner(cfg, ctx, guard)
	executor := execution.NewExecutor(
		cfg, ctx, planner,
		execution.NewInvoker(cfg),
		parser.NewVitestParser(),
		scanner,
		coverage.NewEvaluator(cfg),
		storage.NewJSONStorage(cfg, ctx),
	)
	return New(cfg, ctx, guard, scanner, executor, version.NewChecker()), root
}

func toolRequest(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok, "expected text content")
	return text.Text
}

func decodeResult(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &payload))
	return payload
}

func TestHandleSetProjectRoot(t *testing.T) {
	t.Run("valid directory", func(t *testing.T) {
		srv, root := newTestServer(t)

		result, err := srv.handleSetProjectRoot(context.Background(),
			toolRequest("set_project_root", map[string]any{"path": root}))
		require.NoError(t, err)
		assert.False(t, result.IsError)

		payload := decodeResult(t, result)
		assert.Equal(t, true, payload["success"])
		assert.Equal(t, root, payload["projectRoot"])
		assert.Equal(t, filepath.Base(root), payload["projectName"])
	})

	t.Run("missing path argument", func(t *testing.T) {
		srv, _ := newTestServer(t)

		result, err := srv.handleSetProjectRoot(context.Background(),
			toolRequest("set_project_root", map[string]any{}))
		require.NoError(t, err)
		assert.True(t, result.IsError)

		payload := decodeResult(t, result)
		assert.Equal(t, false, payload["success"])
		assert.Equal(t, "INVALID_ARGUMENT", payload["code"])
	})

	t.Run("nonexistent directory is a tool error", func(t *testing.T) {
		srv, _ := newTestServer(t)

		result, err := srv.handleSetProjectRoot(context.Background(),
			toolRequest("set_project_root", map[string]any{"path": "/no/such/dir"}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Equal(t, "NOT_FOUND", decodeResult(t, result)["code"])
	})
}

func TestHandleListTests(t *testing.T) {
	t.Run("root unset is a protocol error", func(t *testing.T) {
		srv, _ := newTestServer(t)

		_, err := srv.handleListTests(context.Background(),
			toolRequest("list_tests", map[string]any{}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "has not been set")
	})

	t.Run("lists classified files", func(t *testing.T) {
		srv, root := newTestServer(t)
		_, err := srv.ctx.SetRoot(root)
		require.NoError(t, err)

		result, err := srv.handleListTests(context.Background(),
			toolRequest("list_tests", map[string]any{}))
		require.NoError(t, err)
		assert.False(t, result.IsError)

		payload := decodeResult(t, result)
		assert.Equal(t, float64(1), payload["totalCount"])
		files := payload["testFiles"].([]any)
		first := files[0].(map[string]any)
		assert.Equal(t, "src/login.test.ts", first["relativePath"])
		assert.Equal(t, "unit", first["type"])
	})

	t.Run("missing search path", func(t *testing.T) {
		srv, root := newTestServer(t)
		_, err := srv.ctx.SetRoot(root)
		require.NoError(t, err)

		result, err := srv.handleListTests(context.Background(),
			toolRequest("list_tests", map[string]any{"path": "nowhere"}))
		require.NoError(t, err)
		assert.True(t, result.IsError)

		payload := decodeResult(t, result)
		assert.Equal(t, "NOT_FOUND", payload["code"])
		assert.Contains(t, payload["message"], "Search path does not exist")
	})
}

func TestHandleRunTests_ValidationErrors(t *testing.T) {
	srv, root := newTestServer(t)
	_, err := srv.ctx.SetRoot(root)
	require.NoError(t, err)

	t.Run("missing target", func(t *testing.T) {
		result, err := srv.handleRunTests(context.Background(),
			toolRequest("run_tests", map[string]any{}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Equal(t, "INVALID_ARGUMENT", decodeResult(t, result)["code"])
	})

	t.Run("nonexistent target", func(t *testing.T) {
		result, err := srv.handleRunTests(context.Background(),
			toolRequest("run_tests", map[string]any{"target": "src/missing.test.ts"}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Equal(t, "NOT_FOUND", decodeResult(t, result)["code"])
	})

	t.Run("root target denied", func(t *testing.T) {
		result, err := srv.handleRunTests(context.Background(),
			toolRequest("run_tests", map[string]any{"target": "."}))
		require.NoError(t, err)
		assert.True(t, result.IsError)

		payload := decodeResult(t, result)
		assert.Equal(t, "INVALID_ARGUMENT", payload["code"])
		assert.Contains(t, payload["message"], "entire project root")
	})
}

func TestHandleAnalyzeCoverage_RejectsTestFile(t *testing.T) {
	srv, root := newTestServer(t)
	_, err := srv.ctx.SetRoot(root)
	require.NoError(t, err)

	result, err := srv.handleAnalyzeCoverage(context.Background(),
		toolRequest("analyze_coverage", map[string]any{"target": "src/login.test.ts"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	payload := decodeResult(t, result)
	assert.Equal(t, "INVALID_ARGUMENT", payload["code"])
	assert.Contains(t, payload["message"], "is a test file")
}

func TestHandleCheckEnvironment(t *testing.T) {
	t.Run("root unset is a tool error", func(t *testing.T) {
		srv, _ := newTestServer(t)

		result, err := srv.handleCheckEnvironment(context.Background(),
			toolRequest("check_environment", nil))
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Equal(t, "NOT_SET", decodeResult(t, result)["code"])
	})

	t.Run("reports missing runner", func(t *testing.T) {
		srv, root := newTestServer(t)
		_, err := srv.ctx.SetRoot(root)
		require.NoError(t, err)

		result, err := srv.handleCheckEnvironment(context.Background(),
			toolRequest("check_environment", nil))
		require.NoError(t, err)
		assert.False(t, result.IsError)

		payload := decodeResult(t, result)
		errs := payload["errors"].([]any)
		require.NotEmpty(t, errs)
		assert.Contains(t, errs[0], "vitest is not installed")
	})
}
