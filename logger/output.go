package logger

// OutputCategory is a kind of CLI output enabled from some verbosity on.
//
//	0 (default) - results, errors with hints, final status
//	1 (-v)      - + fetch progress, per-source and per-system summaries
//	2 (-vv)     - + skipped rows, excluded systems, cache hits, config
//	3 (-vvv)    - + SQL statements
//	4 (-vvvv)   - + full store dumps
type OutputCategory int

const (
	OutputResults OutputCategory = iota
	OutputErrors
	OutputUserStatus

	OutputProgress
	OutputSourceSummary

	OutputSkips
	OutputCache
	OutputConfig

	OutputSQLQueries

	OutputDataDump
)

var categoryLevels = map[OutputCategory]int{
	OutputResults:    VerbosityUser,
	OutputErrors:     VerbosityUser,
	OutputUserStatus: VerbosityUser,

	OutputProgress:      VerbosityInfo,
	OutputSourceSummary: VerbosityInfo,

	OutputSkips:  VerbosityDebug,
	OutputCache:  VerbosityDebug,
	OutputConfig: VerbosityDebug,

	OutputSQLQueries: VerbosityTrace,

	OutputDataDump: VerbosityAll,
}

// ShouldOutput returns true if the given category should be shown at the given verbosity
func ShouldOutput(verbosity int, category OutputCategory) bool {
	minLevel, ok := categoryLevels[category]
	if !ok {
		return verbosity >= VerbosityAll
	}
	return verbosity >= minLevel
}

var categoryNames = map[OutputCategory]string{
	OutputResults:       "results",
	OutputErrors:        "errors",
	OutputUserStatus:    "status",
	OutputProgress:      "progress",
	OutputSourceSummary: "source-summary",
	OutputSkips:         "skips",
	OutputCache:         "cache",
	OutputConfig:        "config",
	OutputSQLQueries:    "sql",
	OutputDataDump:      "data-dump",
}

// CategoryName returns the human-readable name for an output category
func CategoryName(category OutputCategory) string {
	if name, ok := categoryNames[category]; ok {
		return name
	}
	return "unknown"
}
