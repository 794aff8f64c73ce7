package config

import (
	"fmt"

	"github.com/spf13/viper"

	"vmcp/internal/domain"
)

// fileConfig mirrors Config with pointer fields so that absent keys fall
// through to the lower tiers instead of zeroing them.
type fileConfig struct {
	TestDefaults     *fileTestDefaults     `mapstructure:"testDefaults"`
	CoverageDefaults *fileCoverageDefaults `mapstructure:"coverageDefaults"`
	Discovery        *fileDiscovery        `mapstructure:"discovery"`
	Server           *fileServer           `mapstructure:"server"`
	Safety           *fileSafety           `mapstructure:"safety"`
}

type fileTestDefaults struct {
	Format    *string `mapstructure:"format"`
	TimeoutMs *int    `mapstructure:"timeout"`
	WatchMode *bool   `mapstructure:"watchMode"`
}

type fileCoverageDefaults struct {
	Format    *string  `mapstructure:"format"`
	Exclude   []string `mapstructure:"exclude"`
	Threshold *float64 `mapstructure:"threshold"`
}

type fileDiscovery struct {
	TestPatterns    []string `mapstructure:"testPatterns"`
	ExcludePatterns []string `mapstructure:"excludePatterns"`
	MaxDepth        *int     `mapstructure:"maxDepth"`
}

type fileServer struct {
	Verbose            *bool   `mapstructure:"verbose"`
	ValidatePaths      *bool   `mapstructure:"validatePaths"`
	AllowRootExecution *bool   `mapstructure:"allowRootExecution"`
	WorkingDirectory   *string `mapstructure:"workingDirectory"`
	DevMode            *bool   `mapstructure:"devMode"`
}

type fileSafety struct {
	MaxFiles            *int     `mapstructure:"maxFiles"`
	RequireConfirmation *bool    `mapstructure:"requireConfirmation"`
	AllowedRunners      []string `mapstructure:"allowedRunners"`
	AllowedPaths        []string `mapstructure:"allowedPaths"`
}

// readConfigFile parses a JSON configuration file into the pointer-field
// mirror. A fresh viper instance per call avoids shared state.
func readConfigFile(path string) (*fileConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var file fileConfig
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return &file, nil
}

// applyFileTier overlays file values onto cfg. Nil pointers fall through.
// Safety exclusion arrays are unioned with the built-ins; allow-list arrays
// replace them.
func applyFileTier(cfg *Config, file *fileConfig) {
	if file == nil {
		return
	}
	if td := file.TestDefaults; td != nil {
		if td.Format != nil {
			cfg.TestDefaults.Format = parseFormat(*td.Format, cfg.TestDefaults.Format)
		}
		if td.TimeoutMs != nil && *td.TimeoutMs > 0 {
			cfg.TestDefaults.TimeoutMs = *td.TimeoutMs
		}
		if td.WatchMode != nil {
			cfg.TestDefaults.WatchMode = *td.WatchMode
		}
	}
	if cd := file.CoverageDefaults; cd != nil {
		if cd.Format != nil {
			cfg.CoverageDefaults.Format = parseFormat(*cd.Format, cfg.CoverageDefaults.Format)
		}
		if len(cd.Exclude) > 0 {
			cfg.CoverageDefaults.Exclude = unionStrings(cfg.CoverageDefaults.Exclude, cd.Exclude)
		}
		if cd.Threshold != nil && *cd.Threshold >= 0 && *cd.Threshold <= 100 {
			cfg.CoverageDefaults.Threshold = *cd.Threshold
		}
	}
	if d := file.Discovery; d != nil {
		if len(d.TestPatterns) > 0 {
			cfg.Discovery.TestPatterns = append([]string(nil), d.TestPatterns...)
		}
		if len(d.ExcludePatterns) > 0 {
			cfg.Discovery.ExcludePatterns = unionStrings(cfg.Discovery.ExcludePatterns, d.ExcludePatterns)
		}
		if d.MaxDepth != nil && *d.MaxDepth > 0 {
			cfg.Discovery.MaxDepth = *d.MaxDepth
		}
	}
	if s := file.Server; s != nil {
		if s.Verbose != nil {
			cfg.Server.Verbose = *s.Verbose
		}
		if s.ValidatePaths != nil {
			cfg.Server.ValidatePaths = *s.ValidatePaths
		}
		if s.AllowRootExecution != nil {
			cfg.Server.AllowRootExecution = *s.AllowRootExecution
		}
		if s.WorkingDirectory != nil && *s.WorkingDirectory != "" {
			cfg.Server.WorkingDirectory = *s.WorkingDirectory
		}
		if s.DevMode != nil {
			cfg.Server.DevMode = *s.DevMode
		}
	}
	if sf := file.Safety; sf != nil {
		if sf.MaxFiles != nil && *sf.MaxFiles > 0 {
			cfg.Safety.MaxFiles = *sf.MaxFiles
		}
		if sf.RequireConfirmation != nil {
			cfg.Safety.RequireConfirmation = *sf.RequireConfirmation
		}
		if len(sf.AllowedRunners) > 0 {
			cfg.Safety.AllowedRunners = append([]string(nil), sf.AllowedRunners...)
		}
		if len(sf.AllowedPaths) > 0 {
			cfg.Safety.AllowedPaths = append([]string(nil), sf.AllowedPaths...)
		}
	}
}

func parseFormat(raw string, fallback domain.OutputFormat) domain.OutputFormat {
	if f := domain.OutputFormat(raw); f.Valid() {
		return f
	}
	return fallback
}
