package config

import (
	"github.com/remedyhq/remedy/internal/constants"
	"github.com/remedyhq/remedy/internal/errors"
)

// Validate checks the configuration for invalid or inconsistent values.
// It returns an error describing the first validation failure found.
//
// Validation rules:
//   - Reward failure penalty must be positive
//   - Selector thresholds must be in (0, 1)
//   - Selector complexity cutoff must be between 1 and 10
//   - Refiner base iteration limit must be between 3 and 15
//   - Refiner cost budget must be positive
//   - Coordinator worker counts must not be negative
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}

	if err := validateRewardConfig(&cfg.Reward); err != nil {
		return err
	}

	if err := validateSelectorConfig(&cfg.Selector); err != nil {
		return err
	}

	if err := validateRefinerConfig(&cfg.Refiner); err != nil {
		return err
	}

	if err := validateCoordinatorConfig(&cfg.Coordinator); err != nil {
		return err
	}

	return nil
}

// validateRewardConfig checks reward weight values.
func validateRewardConfig(cfg *RewardConfig) error {
	if cfg.FailurePenalty <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidReward,
			"reward.failure_penalty must be positive, got %v", cfg.FailurePenalty)
	}

	if cfg.SimplicityCap < 0 {
		return errors.Wrapf(errors.ErrConfigInvalidReward,
			"reward.simplicity_cap cannot be negative, got %v", cfg.SimplicityCap)
	}

	return nil
}

// validateSelectorConfig checks tier selection cutoffs.
func validateSelectorConfig(cfg *SelectorConfig) error {
	if cfg.LowBudgetThreshold <= 0 || cfg.LowBudgetThreshold >= 1 {
		return errors.Wrapf(errors.ErrConfigInvalidSelector,
			"selector.low_budget_threshold must be in (0, 1), got %v", cfg.LowBudgetThreshold)
	}

	if cfg.HighSuccessRateThreshold <= 0 || cfg.HighSuccessRateThreshold >= 1 {
		return errors.Wrapf(errors.ErrConfigInvalidSelector,
			"selector.high_success_rate_threshold must be in (0, 1), got %v", cfg.HighSuccessRateThreshold)
	}

	if cfg.LowComplexityCutoff < constants.MinComplexity || cfg.LowComplexityCutoff > constants.MaxComplexity {
		return errors.Wrapf(errors.ErrConfigInvalidSelector,
			"selector.low_complexity_cutoff must be between %d and %d, got %d",
			constants.MinComplexity, constants.MaxComplexity, cfg.LowComplexityCutoff)
	}

	return nil
}

// validateRefinerConfig checks refinement loop settings.
func validateRefinerConfig(cfg *RefinerConfig) error {
	if cfg.BaseIterationLimit < constants.MinIterationLimit || cfg.BaseIterationLimit > constants.MaxIterationLimit {
		return errors.Wrapf(errors.ErrConfigInvalidRefiner,
			"refiner.base_iteration_limit must be between %d and %d, got %d",
			constants.MinIterationLimit, constants.MaxIterationLimit, cfg.BaseIterationLimit)
	}

	if cfg.MaxCostPerRun <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidRefiner,
			"refiner.max_cost_per_run must be positive, got %v", cfg.MaxCostPerRun)
	}

	return nil
}

// validateCoordinatorConfig checks the worker pool composition. A role may
// legitimately have zero workers; scheduling fails closed only when a task
// actually needs that role.
func validateCoordinatorConfig(cfg *CoordinatorConfig) error {
	if cfg.Analyzers < 0 || cfg.Fixers < 0 || cfg.Validators < 0 {
		return errors.Wrapf(errors.ErrConfigInvalidCoordinator,
			"coordinator worker counts cannot be negative, got analyzers=%d fixers=%d validators=%d",
			cfg.Analyzers, cfg.Fixers, cfg.Validators)
	}

	if cfg.Analyzers == 0 && cfg.Fixers == 0 && cfg.Validators == 0 {
		return errors.Wrap(errors.ErrConfigInvalidCoordinator,
			"coordinator must have at least one worker across all roles")
	}

	return nil
}
