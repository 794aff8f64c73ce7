package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"vmcp/internal/domain"
)

// Environment variables recognized at the environment tier.
const (
	EnvConfigPath        = "VMCP_CONFIG"
	EnvFormat            = "VMCP_FORMAT"
	EnvTimeout           = "VMCP_TIMEOUT"
	EnvCoverageThreshold = "VMCP_COVERAGE_THRESHOLD"
	EnvVerbose           = "VMCP_VERBOSE"
	EnvWorkDir           = "VMCP_WORKDIR"
	EnvDevMode           = "VMCP_DEV_MODE"
)

// TestDefaults configures test execution behavior
type TestDefaults struct {
	Format    domain.OutputFormat `json:"format" mapstructure:"format"`
	TimeoutMs int                 `json:"timeout" mapstructure:"timeout"`
	WatchMode bool                `json:"watchMode" mapstructure:"watchMode"`
}

// CoverageDefaults configures coverage analysis behavior
type CoverageDefaults struct {
	Format  domain.OutputFormat `json:"format" mapstructure:"format"`
	Exclude []string            `json:"exclude" mapstructure:"exclude"`
	// Threshold is a blanket percentage applied to all four metrics when the
	// runner config declares none. Zero means unset.
	Threshold float64 `json:"threshold" mapstructure:"threshold"`
}

// Discovery configures test file discovery
type Discovery struct {
	TestPatterns    []string `json:"testPatterns" mapstructure:"testPatterns"`
	ExcludePatterns []string `json:"excludePatterns" mapstructure:"excludePatterns"`
	MaxDepth        int      `json:"maxDepth" mapstructure:"maxDepth"`
}

// Server configures the tool server itself
type Server struct {
	Verbose            bool   `json:"verbose" mapstructure:"verbose"`
	ValidatePaths      bool   `json:"validatePaths" mapstructure:"validatePaths"`
	AllowRootExecution bool   `json:"allowRootExecution" mapstructure:"allowRootExecution"`
	WorkingDirectory   string `json:"workingDirectory" mapstructure:"workingDirectory"`
	// DevMode disables the self-targeting guard so the tool can be pointed at
	// its own package during development.
	DevMode bool `json:"devMode" mapstructure:"devMode"`
}

// Safety configures execution guard rails
type Safety struct {
	MaxFiles            int      `json:"maxFiles" mapstructure:"maxFiles"`
	RequireConfirmation bool     `json:"requireConfirmation" mapstructure:"requireConfirmation"`
	AllowedRunners      []string `json:"allowedRunners" mapstructure:"allowedRunners"`
	AllowedPaths        []string `json:"allowedPaths" mapstructure:"allowedPaths"`
}

// Config is the fully resolved configuration. It is built once per distinct
// argument vector and must not be mutated after resolution.
type Config struct {
	TestDefaults     TestDefaults     `json:"testDefaults" mapstructure:"testDefaults"`
	CoverageDefaults CoverageDefaults `json:"coverageDefaults" mapstructure:"coverageDefaults"`
	Discovery        Discovery        `json:"discovery" mapstructure:"discovery"`
	Server           Server           `json:"server" mapstructure:"server"`
	Safety           Safety           `json:"safety" mapstructure:"safety"`
}

// New returns a Config populated with built-in defaults
func New() *Config {
	cfg := &Config{
		TestDefaults: TestDefaults{
			Format:    DefaultFormat,
			TimeoutMs: DefaultTimeoutMs,
		},
		CoverageDefaults: CoverageDefaults{
			Format: DefaultCoverageFormat,
		},
		Discovery: Discovery{
			MaxDepth: DefaultMaxDepth,
		},
		Server: Server{
			ValidatePaths: true,
		},
		Safety: Safety{
			MaxFiles: DefaultMaxFiles,
		},
	}
	cfg.CoverageDefaults.Exclude = append([]string(nil), DefaultCoverageExclude...)
	cfg.Discovery.TestPatterns = append([]string(nil), DefaultTestPatterns...)
	cfg.Discovery.ExcludePatterns = append([]string(nil), DefaultExcludeDirs...)
	cfg.Safety.AllowedRunners = append([]string(nil), DefaultAllowedRunners...)
	return cfg
}

// LastRunPath returns the absolute path of the persisted last-run file for
// the given project root.
func (c *Config) LastRunPath(projectRoot string) string {
	p := filepath.Join(projectRoot, LastRunDir, LastRunFile)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// RunnerAllowed reports whether the given executable is on the runner
// allow-list.
func (c *Config) RunnerAllowed(name string) bool {
	for _, allowed := range c.Safety.AllowedRunners {
		if allowed == name {
			return true
		}
	}
	return false
}

// Resolver merges the four configuration tiers (CLI > env > file > default)
// and memoizes the result per distinct argument vector.
type Resolver struct {
	mu    sync.Mutex
	cache map[string]*Config
}

// NewResolver creates an empty Resolver
func NewResolver() *Resolver {
	return &Resolver{cache: make(map[string]*Config)}
}

// Load resolves configuration for the given argument vector. It never fails:
// malformed files or unparsable values degrade to the next lower tier.
// Identical argument vectors return the same cached instance.
func (r *Resolver) Load(argv []string) *Config {
	key := strings.Join(argv, "\x00")

	r.mu.Lock()
	defer r.mu.Unlock()
	if cached, ok := r.cache[key]; ok {
		return cached
	}

	args := parseArgs(argv)
	cfg := New()

	// File tier: explicit --config flag wins over the environment variable.
	configPath := args.ConfigPath
	if configPath == "" {
		configPath = os.Getenv(EnvConfigPath)
	}
	if configPath != "" {
		if file, err := readConfigFile(configPath); err != nil {
			fmt.Fprintf(os.Stderr, "vmcp: ignoring config file %s: %v\n", configPath, err)
		} else {
			applyFileTier(cfg, file)
		}
	}

	applyEnvTier(cfg)
	applyArgsTier(cfg, args)

	r.cache[key] = cfg
	return cfg
}

// applyEnvTier overlays recognized environment variables. Unset or
// unparsable values fall through to the lower tiers.
func applyEnvTier(cfg *Config) {
	if v := os.Getenv(EnvFormat); v != "" {
		if f := domain.OutputFormat(v); f.Valid() {
			cfg.TestDefaults.Format = f
		}
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			cfg.TestDefaults.TimeoutMs = ms
		}
	}
	if v := os.Getenv(EnvCoverageThreshold); v != "" {
		if pct, err := strconv.ParseFloat(v, 64); err == nil && pct >= 0 && pct <= 100 {
			cfg.CoverageDefaults.Threshold = pct
		}
	}
	if v := os.Getenv(EnvVerbose); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Server.Verbose = b
		}
	}
	if v := os.Getenv(EnvWorkDir); v != "" {
		cfg.Server.WorkingDirectory = v
	}
	if v := os.Getenv(EnvDevMode); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Server.DevMode = b
		}
	}
}

// Args is the CLI tier of the configuration
type Args struct {
	ConfigPath string
	Format     string
	TimeoutMs  int
	Verbose    bool
	WorkDir    string
}

// parseArgs scans an argument vector for recognized configuration flags.
// Unrecognized arguments are ignored; they belong to the command layer.
func parseArgs(argv []string) Args {
	var args Args
	next := func(i int) string {
		if i+1 < len(argv) {
			return argv[i+1]
		}
		return ""
	}
	for i := 0; i < len(argv); i++ {
		switch argv[i] {
		case "--config":
			args.ConfigPath = next(i)
		case "--format":
			args.Format = next(i)
		case "--timeout":
			if ms, err := strconv.Atoi(next(i)); err == nil {
				args.TimeoutMs = ms
			}
		case "--verbose":
			args.Verbose = true
		case "--workdir":
			args.WorkDir = next(i)
		}
	}
	return args
}

// applyArgsTier overlays the CLI tier, the highest precedence.
func applyArgsTier(cfg *Config, args Args) {
	if f := domain.OutputFormat(args.Format); f.Valid() {
		cfg.TestDefaults.Format = f
	}
	if args.TimeoutMs > 0 {
		cfg.TestDefaults.TimeoutMs = args.TimeoutMs
	}
	if args.Verbose {
		cfg.Server.Verbose = true
	}
	if args.WorkDir != "" {
		cfg.Server.WorkingDirectory = args.WorkDir
	}
}

// unionStrings appends items from extra not already present in base,
// preserving order. Built-in safety exclusions stay first.
func unionStrings(base, extra []string) []string {
	seen := make(map[string]bool, len(base))
	out := append([]string(nil), base...)
	for _, s := range base {
		seen[s] = true
	}
	for _, s := range extra {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
