package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vmcp/internal/domain"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vmcp.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestResolver_Defaults(t *testing.T) {
	cfg := NewResolver().Load(nil)

	assert.Equal(t, domain.FormatSummary, cfg.TestDefaults.Format)
	assert.Equal(t, DefaultTimeoutMs, cfg.TestDefaults.TimeoutMs)
	assert.False(t, cfg.TestDefaults.WatchMode)
	assert.Equal(t, domain.FormatDetailed, cfg.CoverageDefaults.Format)
	assert.Equal(t, DefaultCoverageExclude, cfg.CoverageDefaults.Exclude)
	assert.Equal(t, DefaultMaxDepth, cfg.Discovery.MaxDepth)
	assert.Equal(t, DefaultMaxFiles, cfg.Safety.MaxFiles)
	assert.Equal(t, DefaultAllowedRunners, cfg.Safety.AllowedRunners)
	assert.Empty(t, cfg.Safety.AllowedPaths)
	assert.True(t, cfg.Server.ValidatePaths)
}

func TestResolver_TierPrecedence(t *testing.T) {
	file := writeConfigFile(t, `{"testDefaults": {"timeout": 1000, "format": "detailed"}}`)

	t.Run("file overrides defaults", func(t *testing.T) {
		cfg := NewResolver().Load([]string{"--config", file})
		assert.Equal(t, 1000, cfg.TestDefaults.TimeoutMs)
		assert.Equal(t, domain.FormatDetailed, cfg.TestDefaults.Format)
	})

	t.Run("env overrides file", func(t *testing.T) {
		t.Setenv(EnvTimeout, "2000")
		cfg := NewResolver().Load([]string{"--config", file})
		assert.Equal(t, 2000, cfg.TestDefaults.TimeoutMs)
		// Untouched fields still come from the file tier.
		assert.Equal(t, domain.FormatDetailed, cfg.TestDefaults.Format)
	})

	t.Run("cli overrides env and file", func(t *testing.T) {
		t.Setenv(EnvTimeout, "2000")
		t.Setenv(EnvFormat, "detailed")
		cfg := NewResolver().Load([]string{"--config", file, "--timeout", "3000", "--format", "summary"})
		assert.Equal(t, 3000, cfg.TestDefaults.TimeoutMs)
		assert.Equal(t, domain.FormatSummary, cfg.TestDefaults.Format)
	})

	t.Run("config file path from environment", func(t *testing.T) {
		t.Setenv(EnvConfigPath, file)
		cfg := NewResolver().Load(nil)
		assert.Equal(t, 1000, cfg.TestDefaults.TimeoutMs)
	})
}

func TestResolver_NeverFails(t *testing.T) {
	tests := []struct {
		name string
		argv []string
	}{
		{name: "nil argv", argv: nil},
		{name: "garbage flags", argv: []string{"--format", "xml", "--timeout", "abc"}},
		{name: "missing config file", argv: []string{"--config", "/does/not/exist.json"}},
		{name: "malformed config file", argv: []string{"--config", writeConfigFile(t, "{not json")}},
		{name: "dangling flag value", argv: []string{"--config"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewResolver().Load(tt.argv)
			require.NotNil(t, cfg)
			// Unusable tiers degrade to defaults.
			assert.Equal(t, DefaultTimeoutMs, cfg.TestDefaults.TimeoutMs)
			assert.Equal(t, domain.FormatSummary, cfg.TestDefaults.Format)
		})
	}
}

func TestResolver_CachesByArgv(t *testing.T) {
	r := NewResolver()
	first := r.Load([]string{"--timeout", "5000"})
	second := r.Load([]string{"--timeout", "5000"})
	third := r.Load([]string{"--timeout", "6000"})

	assert.Same(t, first, second)
	assert.NotSame(t, first, third)
	assert.Equal(t, 6000, third.TestDefaults.TimeoutMs)
}

func TestApplyFileTier_UnionsSafetyExcludes(t *testing.T) {
	file := writeConfigFile(t, `{
		"coverageDefaults": {"exclude": ["src/generated/**", "dist/**"]},
		"discovery": {"excludePatterns": ["fixtures"]}
	}`)
	cfg := NewResolver().Load([]string{"--config", file})

	// Built-ins stay, user globs are appended, duplicates collapse.
	assert.Subset(t, cfg.CoverageDefaults.Exclude, DefaultCoverageExclude)
	assert.Contains(t, cfg.CoverageDefaults.Exclude, "src/generated/**")
	assert.Equal(t, 1, countOf(cfg.CoverageDefaults.Exclude, "dist/**"))

	assert.Subset(t, cfg.Discovery.ExcludePatterns, DefaultExcludeDirs)
	assert.Contains(t, cfg.Discovery.ExcludePatterns, "fixtures")
}

func TestApplyFileTier_AllowListsReplace(t *testing.T) {
	file := writeConfigFile(t, `{"safety": {"allowedRunners": ["pnpm"], "allowedPaths": ["/work"]}}`)
	cfg := NewResolver().Load([]string{"--config", file})

	assert.Equal(t, []string{"pnpm"}, cfg.Safety.AllowedRunners)
	assert.Equal(t, []string{"/work"}, cfg.Safety.AllowedPaths)
}

func TestApplyEnvTier(t *testing.T) {
	t.Setenv(EnvCoverageThreshold, "85")
	t.Setenv(EnvVerbose, "true")
	t.Setenv(EnvDevMode, "1")
	t.Setenv(EnvWorkDir, "/somewhere")

	cfg := NewResolver().Load(nil)
	assert.Equal(t, 85.0, cfg.CoverageDefaults.Threshold)
	assert.True(t, cfg.Server.Verbose)
	assert.True(t, cfg.Server.DevMode)
	assert.Equal(t, "/somewhere", cfg.Server.WorkingDirectory)
}

func TestConfig_RunnerAllowed(t *testing.T) {
	cfg := New()
	assert.True(t, cfg.RunnerAllowed("npx"))
	assert.False(t, cfg.RunnerAllowed("bash"))
}

func countOf(items []string, want string) int {
	n := 0
	for _, item := range items {
		if item == want {
			n++
		}
	}
	return n
}
