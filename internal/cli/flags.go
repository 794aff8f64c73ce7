package cli

// Flags holds command-line flags shared across subcommands
type Flags struct {
	ConfigPath string
	Format     string
	TimeoutMs  int
	Verbose    bool
	WorkDir    string

	Root       string
	NameFilter string
	TestCases  bool
	Project    string
	ShowLogs   bool
}
