package domain

// VersionInfo describes one installed package version and how it compares
// against the supported floors.
type VersionInfo struct {
	Version       string `json:"version"`
	Major         int    `json:"major"`
	Minor         int    `json:"minor"`
	Patch         int    `json:"patch"`
	Compatible    bool   `json:"compatible"`
	MeetsMinimum  bool   `json:"meetsMinimum"`
	IsRecommended bool   `json:"isRecommended"`
}

// CompatibilityReport aggregates runner and coverage provider version checks
type CompatibilityReport struct {
	Runner   *VersionInfo `json:"runner,omitempty"`
	Provider *VersionInfo `json:"provider,omitempty"`
	Errors   []string     `json:"errors"`
	Warnings []string     `json:"warnings"`
}

// OK reports whether no hard incompatibilities were found.
func (r *CompatibilityReport) OK() bool {
	return len(r.Errors) == 0
}
