package config

import (
	"github.com/spf13/viper"

	"github.com/remedyhq/remedy/internal/constants"
)

// DefaultConfig returns a new Config with sensible default values.
// These defaults are used as the base layer that can be overridden by
// config files and environment variables.
func DefaultConfig() *Config {
	return &Config{
		Reward: RewardConfig{
			// Success outweighs every efficiency term a realistic
			// attempt can accumulate.
			Success: 10,

			// FailurePenalty is deliberately large: a failed attempt
			// must score below any successful one.
			FailurePenalty: 100,

			Cost:          -2,
			Latency:       -0.1,
			Quality:       2,
			Simplicity:    1,
			SimplicityCap: 3,
		},
		Selector: SelectorConfig{
			LowBudgetThreshold:       constants.LowBudgetThreshold,
			HighSuccessRateThreshold: constants.HighSuccessRateThreshold,
			LowComplexityCutoff:      constants.LowComplexityCutoff,
		},
		Refiner: RefinerConfig{
			BaseIterationLimit: constants.DefaultIterationLimit,

			// MaxCostPerRun: $5 keeps an unattended loop from burning
			// through a budget on one stubborn failure.
			MaxCostPerRun: 5,

			// Seed: 0 means seed from entropy; set for reproducible traces.
			Seed: 0,
		},
		Coordinator: CoordinatorConfig{
			Analyzers:  constants.DefaultWorkersPerRole,
			Fixers:     constants.DefaultWorkersPerRole,
			Validators: constants.DefaultWorkersPerRole,
		},
	}
}

// setDefaults registers the default values on a viper instance so that
// partial config files only need to state what they change.
func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()

	v.SetDefault("reward.success", defaults.Reward.Success)
	v.SetDefault("reward.failure_penalty", defaults.Reward.FailurePenalty)
	v.SetDefault("reward.cost", defaults.Reward.Cost)
	v.SetDefault("reward.latency", defaults.Reward.Latency)
	v.SetDefault("reward.quality", defaults.Reward.Quality)
	v.SetDefault("reward.simplicity", defaults.Reward.Simplicity)
	v.SetDefault("reward.simplicity_cap", defaults.Reward.SimplicityCap)

	v.SetDefault("selector.low_budget_threshold", defaults.Selector.LowBudgetThreshold)
	v.SetDefault("selector.high_success_rate_threshold", defaults.Selector.HighSuccessRateThreshold)
	v.SetDefault("selector.low_complexity_cutoff", defaults.Selector.LowComplexityCutoff)

	v.SetDefault("refiner.base_iteration_limit", defaults.Refiner.BaseIterationLimit)
	v.SetDefault("refiner.max_cost_per_run", defaults.Refiner.MaxCostPerRun)
	v.SetDefault("refiner.seed", defaults.Refiner.Seed)

	v.SetDefault("coordinator.analyzers", defaults.Coordinator.Analyzers)
	v.SetDefault("coordinator.fixers", defaults.Coordinator.Fixers)
	v.SetDefault("coordinator.validators", defaults.Coordinator.Validators)
}
