package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vmcp/internal/config"
	"vmcp/internal/domain"
	"vmcp/internal/project"
)

func newTestStorage(t *testing.T) (*JSONStorage, string) {
	t.Helper()
	root := t.TempDir()
	cfg := config.New()
	ctx := project.NewContext(cfg)
	_, err := ctx.SetRoot(root)
	require.NoError(t, err)
	return NewJSONStorage(cfg, ctx), root
}

func sampleOutput() *domain.LastRunOutput {
	result := &domain.RunResult{
		Command:     "npx vitest run src/auth --reporter=json",
		Success:     false,
		TestSummary: domain.TestSummary{TotalTests: 5, Passed: 4, Failed: 1},
		TestResults: &domain.TestResults{
			FailedTests: []domain.FailedFile{
				{
					File: "src/auth/login.test.ts",
					Tests: []domain.FailedCase{
						{TestName: "auth rejects bad password", ErrorType: "AssertionError", Message: "expected 401 to be 200"},
					},
				},
			},
		},
	}
	return domain.NewLastRunOutput(result, 1200*time.Millisecond, "2026-08-30T10:00:00Z")
}

func TestJSONStorage_SaveAndLoad(t *testing.T) {
	store, root := newTestStorage(t)
	saved := sampleOutput()

	require.NoError(t, store.Save(saved))

	path := filepath.Join(root, ".vmcp", "last-run.json")
	_, err := os.Stat(path)
	require.NoError(t, err, "expected results at %s", path)

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, saved.Meta, loaded.Meta)
	require.Len(t, loaded.Failures, 1)
	assert.Equal(t, "auth rejects bad password", loaded.Failures[0].TestName)
	assert.Equal(t, "src/auth/login.test.ts", loaded.Failures[0].FilePath)
	assert.False(t, loaded.Failures[0].Resolved)
}

func TestJSONStorage_OverwritesPreviousRun(t *testing.T) {
	store, _ := newTestStorage(t)

	first := sampleOutput()
	require.NoError(t, store.Save(first))

	second := sampleOutput()
	second.Meta.Command = "npx vitest run src/billing --reporter=json"
	second.Failures = nil
	require.NoError(t, store.Save(second))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, second.Meta.Command, loaded.Meta.Command)
	assert.Empty(t, loaded.Failures)
}

func TestJSONStorage_ResolvedFlagRoundTrips(t *testing.T) {
	store, _ := newTestStorage(t)
	saved := sampleOutput()
	saved.Failures[0].Resolved = true

	require.NoError(t, store.Save(saved))
	loaded, err := store.Load()
	require.NoError(t, err)
	assert.True(t, loaded.Failures[0].Resolved)
}

func TestJSONStorage_LoadWithoutSave(t *testing.T) {
	store, _ := newTestStorage(t)
	_, err := store.Load()
	assert.Error(t, err)
}

func TestJSONStorage_RootUnset(t *testing.T) {
	cfg := config.New()
	store := NewJSONStorage(cfg, project.NewContext(cfg))

	err := store.Save(sampleOutput())
	assert.Equal(t, domain.ErrCodeNotSet, domain.ErrorCode(err))

	_, err = store.Load()
	assert.Equal(t, domain.ErrCodeNotSet, domain.ErrorCode(err))
}
