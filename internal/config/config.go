// Package config provides configuration management for remedy with layered precedence.
//
// Configuration sources are loaded in the following order (highest precedence first):
//  1. Environment variables (REMEDY_* prefix)
//  2. Project config (.remedy/config.yaml)
//  3. Global config (~/.remedy/config.yaml)
//  4. Built-in defaults
//
// Each higher level completely overrides the lower level for the same key.
// The concurrency governor is the exception: it reads its process-wide
// settings directly from the environment once at startup (see internal/governor).
//
// IMPORTANT: This package may import internal/constants and internal/errors,
// but MUST NOT import internal/domain or other internal packages.
package config

// Config is the root configuration structure for remedy. It holds the
// tunable parameters of the orchestration core so tuning never requires
// redeploying calling code.
type Config struct {
	// Reward contains the reward function coefficients.
	Reward RewardConfig `yaml:"reward" mapstructure:"reward" json:"reward"`

	// Selector contains the model tier selection cutoffs.
	Selector SelectorConfig `yaml:"selector" mapstructure:"selector" json:"selector"`

	// Refiner contains refinement loop settings.
	Refiner RefinerConfig `yaml:"refiner" mapstructure:"refiner" json:"refiner"`

	// Coordinator contains the worker pool composition.
	Coordinator CoordinatorConfig `yaml:"coordinator" mapstructure:"coordinator" json:"coordinator"`
}

// RewardConfig mirrors reward.Weights as configuration. Zero values mean
// "use the built-in default" and are filled in by DefaultConfig.
type RewardConfig struct {
	// Success is added to the reward when an attempt succeeds.
	Success float64 `yaml:"success" mapstructure:"success" json:"success"`

	// FailurePenalty is subtracted when an attempt fails.
	FailurePenalty float64 `yaml:"failure_penalty" mapstructure:"failure_penalty" json:"failure_penalty"`

	// Cost is the (negative) weight per dollar spent.
	Cost float64 `yaml:"cost" mapstructure:"cost" json:"cost"`

	// Latency is the (negative) weight per 100ms elapsed.
	Latency float64 `yaml:"latency" mapstructure:"latency" json:"latency"`

	// Quality is the weight for the optional code quality signal.
	Quality float64 `yaml:"quality" mapstructure:"quality" json:"quality"`

	// Simplicity is the weight of the diff-size penalty.
	Simplicity float64 `yaml:"simplicity" mapstructure:"simplicity" json:"simplicity"`

	// SimplicityCap bounds the diff-size penalty.
	SimplicityCap float64 `yaml:"simplicity_cap" mapstructure:"simplicity_cap" json:"simplicity_cap"`
}

// SelectorConfig holds the tier selection policy cutoffs.
type SelectorConfig struct {
	// LowBudgetThreshold forces the fast tier below this remaining-budget
	// fraction. Range (0,1).
	LowBudgetThreshold float64 `yaml:"low_budget_threshold" mapstructure:"low_budget_threshold" json:"low_budget_threshold"`

	// HighSuccessRateThreshold prefers the fast tier above this category
	// success rate. Range (0,1).
	HighSuccessRateThreshold float64 `yaml:"high_success_rate_threshold" mapstructure:"high_success_rate_threshold" json:"high_success_rate_threshold"`

	// LowComplexityCutoff routes failures below it to the fast tier.
	// Range 1-10.
	LowComplexityCutoff int `yaml:"low_complexity_cutoff" mapstructure:"low_complexity_cutoff" json:"low_complexity_cutoff"`
}

// RefinerConfig holds refinement loop settings.
type RefinerConfig struct {
	// BaseIterationLimit seeds the adaptive iteration ceiling.
	BaseIterationLimit int `yaml:"base_iteration_limit" mapstructure:"base_iteration_limit" json:"base_iteration_limit"`

	// MaxCostPerRun is the dollar budget per repair run.
	MaxCostPerRun float64 `yaml:"max_cost_per_run" mapstructure:"max_cost_per_run" json:"max_cost_per_run"`

	// Seed fixes the bandit's random source when non-zero, for
	// reproducible decision traces. Zero means seed from entropy.
	Seed int64 `yaml:"seed" mapstructure:"seed" json:"seed"`
}

// CoordinatorConfig fixes the worker pool composition.
type CoordinatorConfig struct {
	// Analyzers, Fixers and Validators are the per-role worker counts.
	Analyzers  int `yaml:"analyzers" mapstructure:"analyzers" json:"analyzers"`
	Fixers     int `yaml:"fixers" mapstructure:"fixers" json:"fixers"`
	Validators int `yaml:"validators" mapstructure:"validators" json:"validators"`
}
