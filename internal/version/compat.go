package version

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"

	"vmcp/internal/domain"
)

// Checked packages and supported floors.
const (
	RunnerPackage   = "vitest"
	ProviderPackage = "@vitest/coverage-v8"

	// supportedRunnerMajorMax is the newest vitest major line we understand
	supportedRunnerMajorMax = 3
)

var (
	minimumRunner     = semver.MustParse("1.0.0")
	recommendedRunner = semver.MustParse("2.0.0")
	minimumProvider   = semver.MustParse("1.0.0")
)

// Checker validates installed runner and coverage provider versions against
// the supported ranges.
type Checker struct{}

// NewChecker creates a Checker
func NewChecker() *Checker {
	return &Checker{}
}

// Check inspects the project's installed vitest and coverage provider and
// reports hard incompatibilities as errors, below-recommended versions as
// warnings. Version issues never abort a run by themselves.
func (c *Checker) Check(projectRoot string) *domain.CompatibilityReport {
	report := &domain.CompatibilityReport{
		Errors:   []string{},
		Warnings: []string{},
	}

	raw, err := installedVersion(projectRoot, RunnerPackage)
	if err != nil {
		report.Errors = append(report.Errors,
			fmt.Sprintf("%s is not installed in this project: %v", RunnerPackage, err))
	} else if info, v, perr := parseVersion(raw); perr != nil {
		report.Errors = append(report.Errors,
			fmt.Sprintf("cannot parse %s version %q: %v", RunnerPackage, raw, perr))
	} else {
		info.MeetsMinimum = !v.LessThan(minimumRunner)
		info.IsRecommended = !v.LessThan(recommendedRunner)
		info.Compatible = info.MeetsMinimum && info.Major <= supportedRunnerMajorMax
		report.Runner = info

		if !info.Compatible {
			report.Errors = append(report.Errors, fmt.Sprintf(
				"%s %s is outside the supported range (%s - %d.x)",
				RunnerPackage, info.Version, minimumRunner, supportedRunnerMajorMax))
		} else if !info.IsRecommended {
			report.Warnings = append(report.Warnings, fmt.Sprintf(
				"%s %s works but %s or newer is recommended",
				RunnerPackage, info.Version, recommendedRunner))
		}
	}

	raw, err = installedVersion(projectRoot, ProviderPackage)
	if err != nil {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("%s is not installed; coverage analysis will be unavailable", ProviderPackage))
		return report
	}
	info, v, perr := parseVersion(raw)
	if perr != nil {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("cannot parse %s version %q: %v", ProviderPackage, raw, perr))
		return report
	}
	info.MeetsMinimum = !v.LessThan(minimumProvider)
	info.Compatible = info.MeetsMinimum
	info.IsRecommended = info.MeetsMinimum
	report.Provider = info
	if !info.Compatible {
		report.Errors = append(report.Errors, fmt.Sprintf(
			"%s %s is below the minimum supported version %s",
			ProviderPackage, info.Version, minimumProvider))
	}
	return report
}

// installedVersion reads the version a package resolves to inside the
// project: node_modules first, the declared manifest range as fallback.
func installedVersion(projectRoot, pkg string) (string, error) {
	manifest := filepath.Join(projectRoot, "node_modules", filepath.FromSlash(pkg), "package.json")
	if data, err := os.ReadFile(manifest); err == nil {
		var decoded struct {
			Version string `json:"version"`
		}
		if json.Unmarshal(data, &decoded) == nil && decoded.Version != "" {
			return decoded.Version, nil
		}
	}

	data, err := os.ReadFile(filepath.Join(projectRoot, "package.json"))
	if err != nil {
		return "", fmt.Errorf("no package.json found")
	}
	var decoded struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return "", fmt.Errorf("unreadable package.json: %w", err)
	}
	if rng, ok := decoded.DevDependencies[pkg]; ok {
		return stripRangePrefix(rng), nil
	}
	if rng, ok := decoded.Dependencies[pkg]; ok {
		return stripRangePrefix(rng), nil
	}
	return "", fmt.Errorf("%s is not declared as a dependency", pkg)
}

func stripRangePrefix(rng string) string {
	return strings.TrimLeft(strings.TrimSpace(rng), "^~>=v ")
}

func parseVersion(raw string) (*domain.VersionInfo, *semver.Version, error) {
	v, err := semver.NewVersion(raw)
	if err != nil {
		return nil, nil, err
	}
	info := &domain.VersionInfo{
		Version: v.String(),
		Major:   int(v.Major()),
		Minor:   int(v.Minor()),
		Patch:   int(v.Patch()),
	}
	return info, v, nil
}
