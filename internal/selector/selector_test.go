package selector_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/remedyhq/remedy/internal/domain"
	"github.com/remedyhq/remedy/internal/selector"
)

func newSelector() *selector.Selector {
	return selector.New(selector.DefaultThresholds(), zerolog.Nop())
}

func floatPtr(v float64) *float64 { return &v }

func TestSelectPolicyPriority(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		req      selector.Request
		expected domain.Tier
	}{
		{
			name: "low budget forces fast tier even on hard problems",
			req: selector.Request{
				Complexity: 10, AttemptNumber: 1, RemainingBudget: 0.05,
			},
			expected: domain.TierFast,
		},
		{
			name: "high category success rate prefers fast tier",
			req: selector.Request{
				Complexity: 9, AttemptNumber: 1, RemainingBudget: 0.9,
				HistoricalSuccessRate: floatPtr(0.95),
			},
			expected: domain.TierFast,
		},
		{
			name: "mediocre success rate does not override complexity",
			req: selector.Request{
				Complexity: 9, AttemptNumber: 1, RemainingBudget: 0.9,
				HistoricalSuccessRate: floatPtr(0.5),
			},
			expected: domain.TierCapable,
		},
		{
			name: "low complexity uses fast tier",
			req: selector.Request{
				Complexity: 2, AttemptNumber: 1, RemainingBudget: 0.9,
			},
			expected: domain.TierFast,
		},
		{
			name: "first attempt on hard problem invests in capable tier",
			req: selector.Request{
				Complexity: 8, AttemptNumber: 1, RemainingBudget: 0.9,
			},
			expected: domain.TierCapable,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, newSelector().Select(tc.req))
		})
	}
}

func TestSelectRetryAlternation(t *testing.T) {
	t.Parallel()

	sel := newSelector()

	// No overriding signal: high complexity, plenty of budget, no history.
	req := selector.Request{Complexity: 7, RemainingBudget: 0.9}

	var previous domain.Tier
	for attempt := 2; attempt <= 6; attempt++ {
		req.AttemptNumber = attempt
		tier := sel.Select(req)
		if attempt > 2 {
			assert.NotEqual(t, previous, tier,
				"attempts %d and %d must not repeat the same tier", attempt-1, attempt)
		}
		previous = tier
	}
}

func TestEstimateCost(t *testing.T) {
	t.Parallel()

	t.Run("linear in token count", func(t *testing.T) {
		t.Parallel()
		single := selector.EstimateCost(domain.TierFast, 1000)
		double := selector.EstimateCost(domain.TierFast, 2000)
		assert.InDelta(t, 2*single, double, 1e-9)
	})

	t.Run("capable tier rate exceeds fast tier rate", func(t *testing.T) {
		t.Parallel()
		assert.Greater(t,
			selector.EstimateCost(domain.TierCapable, 1000),
			selector.EstimateCost(domain.TierFast, 1000))
	})

	t.Run("zero tokens cost nothing", func(t *testing.T) {
		t.Parallel()
		assert.Zero(t, selector.EstimateCost(domain.TierCapable, 0))
	})
}
