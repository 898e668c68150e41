// Package selector chooses a computation tier per repair attempt, trading
// model capability against cost pressure and past evidence.
//
// Import rules:
//   - CAN import: internal/constants, internal/domain, std lib
//   - MUST NOT import: other internal packages
package selector

import (
	"github.com/rs/zerolog"

	"github.com/remedyhq/remedy/internal/constants"
	"github.com/remedyhq/remedy/internal/domain"
)

// Request carries the signals a tier decision is made from.
type Request struct {
	// Complexity is the 1-10 difficulty estimate for the failure.
	Complexity int

	// Category is the diagnosed failure category.
	Category domain.Category

	// AttemptNumber is 1 for the first attempt, incrementing per retry.
	AttemptNumber int

	// RemainingBudget is the fraction of the run budget still unspent, 0-1.
	RemainingBudget float64

	// HistoricalSuccessRate is the category's past repair success rate,
	// or nil when no history exists.
	HistoricalSuccessRate *float64
}

// Thresholds are the tunable cutoffs of the selection policy.
type Thresholds struct {
	// LowBudget forces the fast tier when remaining budget drops below it.
	LowBudget float64

	// HighSuccessRate prefers the fast tier when category history beats it.
	HighSuccessRate float64

	// LowComplexity routes anything below it to the fast tier.
	LowComplexity int
}

// DefaultThresholds returns the standard policy cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		LowBudget:       constants.LowBudgetThreshold,
		HighSuccessRate: constants.HighSuccessRateThreshold,
		LowComplexity:   constants.LowComplexityCutoff,
	}
}

// Selector implements the tier decision policy. It holds no mutable state,
// so a single instance is safe for concurrent use.
type Selector struct {
	thresholds Thresholds
	logger     zerolog.Logger
}

// New returns a Selector with the given thresholds.
func New(thresholds Thresholds, logger zerolog.Logger) *Selector {
	return &Selector{thresholds: thresholds, logger: logger}
}

// Select picks a tier for the attempt. Rules apply in priority order:
//
//  1. Remaining budget below the low-budget threshold forces the fast
//     tier; cost protection dominates every other signal.
//  2. A high historical success rate for the category prefers the fast
//     tier: the cheap model has been enough before.
//  3. Low complexity uses the fast tier.
//  4. The first attempt on a hard problem invests in the capable tier.
//  5. Retries with no overriding signal alternate by attempt parity so
//     consecutive attempts never repeat a tier: even attempt numbers get
//     the capable tier, odd ones the fast tier.
func (s *Selector) Select(req Request) domain.Tier {
	tier, rule := s.decide(req)
	s.logger.Debug().
		Str("tier", string(tier)).
		Str("rule", rule).
		Int("complexity", req.Complexity).
		Int("attempt", req.AttemptNumber).
		Float64("remaining_budget", req.RemainingBudget).
		Str("category", string(req.Category)).
		Msg("tier selected")
	return tier
}

func (s *Selector) decide(req Request) (domain.Tier, string) {
	if req.RemainingBudget < s.thresholds.LowBudget {
		return domain.TierFast, "low_budget"
	}
	if req.HistoricalSuccessRate != nil && *req.HistoricalSuccessRate > s.thresholds.HighSuccessRate {
		return domain.TierFast, "category_history"
	}
	if req.Complexity < s.thresholds.LowComplexity {
		return domain.TierFast, "low_complexity"
	}
	if req.AttemptNumber == 1 {
		return domain.TierCapable, "invest_early"
	}
	// Retry diversification: alternate tiers by parity.
	if req.AttemptNumber%2 == 0 {
		return domain.TierCapable, "retry_parity"
	}
	return domain.TierFast, "retry_parity"
}

// EstimateCost returns the dollar cost of tokenCount tokens on the tier.
// The capable tier's unit rate always exceeds the fast tier's.
func EstimateCost(tier domain.Tier, tokenCount int) float64 {
	rate := constants.FastTierCostPer1KTokens
	if tier == domain.TierCapable {
		rate = constants.CapableTierCostPer1KTokens
	}
	return rate * float64(tokenCount) / 1000
}
