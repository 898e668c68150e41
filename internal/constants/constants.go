// Package constants provides centralized constant values used throughout remedy.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

import "time"

// Directory and file names used by remedy for organizing data.
const (
	// RemedyHome is the hidden directory name where remedy stores all its data.
	// This directory is created in the user's home directory.
	RemedyHome = ".remedy"

	// LogsDir is the directory name where log files are stored.
	LogsDir = "logs"

	// LogFileName is the name of the rotating log file.
	LogFileName = "remedy.log"

	// ConfigFileName is the name of the YAML configuration file.
	ConfigFileName = "config.yaml"

	// EnvPrefix is the prefix for environment variable overrides (REMEDY_*).
	EnvPrefix = "REMEDY"
)

// Log rotation settings for the global log file.
const (
	// LogMaxSizeMB is the maximum size of a log file before rotation.
	LogMaxSizeMB = 10

	// LogMaxBackups is how many rotated log files are kept.
	LogMaxBackups = 3

	// LogMaxAgeDays is how long rotated log files are retained.
	LogMaxAgeDays = 30

	// LogCompress enables gzip compression of rotated log files.
	LogCompress = true
)

// Concurrency governor defaults. All of these are read once at process start
// and are immutable afterwards.
const (
	// DefaultMaxConcurrentAgents is the default process-wide cap on
	// simultaneously running repair agents.
	DefaultMaxConcurrentAgents = 1

	// DefaultQueueTimeout is how long an admission request may wait for a
	// concurrency slot before being rejected.
	DefaultQueueTimeout = 300 * time.Second

	// DefaultHealthCheckInterval is the cadence at which resource snapshots
	// are polled.
	DefaultHealthCheckInterval = 30 * time.Second
)

// Resource threshold defaults for the concurrency governor, expressed as
// percentages (CPU, memory) and absolute counts (PIDs).
const (
	DefaultCPUWarningPercent     = 70.0
	DefaultCPUCriticalPercent    = 90.0
	DefaultMemoryWarningPercent  = 75.0
	DefaultMemoryCriticalPercent = 90.0
	DefaultPIDWarningCount       = 800
	DefaultPIDCriticalCount      = 1000
)

// Iteration limits for the refinement loop. AdaptiveLimit output is always
// clamped into [MinIterationLimit, MaxIterationLimit].
const (
	MinIterationLimit     = 3
	MaxIterationLimit     = 15
	DefaultIterationLimit = 5
)

// Complexity scale bounds. Failure complexity is estimated on a 1-10 scale;
// decomposition into sub-problems is only attempted above the threshold.
const (
	MinComplexity           = 1
	MaxComplexity           = 10
	DecompositionThreshold  = 8
	LowComplexityCutoff     = 4
	HighComplexityToolFloor = 6
)

// Model selection thresholds.
const (
	// LowBudgetThreshold is the remaining-budget fraction below which the
	// cheap tier is forced regardless of complexity.
	LowBudgetThreshold = 0.2

	// HighSuccessRateThreshold is the historical success rate above which
	// the cheap tier is preferred for a category.
	HighSuccessRateThreshold = 0.8
)

// Per-tier cost rates in dollars per 1000 tokens. The capable tier must
// always be more expensive than the fast tier.
const (
	FastTierCostPer1KTokens    = 0.003
	CapableTierCostPer1KTokens = 0.015
)

// Coordinator defaults.
const (
	// DefaultWorkersPerRole is the pool size per role when not configured.
	DefaultWorkersPerRole = 2

	// MaxToolsPerPlan bounds how many tools a single attempt's plan may contain.
	MaxToolsPerPlan = 5

	// MinBudgetForBroadTools is the minimum remaining budget (dollars)
	// required before expensive broad-search tools are considered.
	MinBudgetForBroadTools = 0.05
)
