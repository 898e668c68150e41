package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/remedyhq/remedy/internal/domain"
)

func TestRoleValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		role     domain.Role
		expected bool
	}{
		{name: "analyzer", role: domain.RoleAnalyzer, expected: true},
		{name: "fixer", role: domain.RoleFixer, expected: true},
		{name: "validator", role: domain.RoleValidator, expected: true},
		{name: "empty", role: domain.Role(""), expected: false},
		{name: "arbitrary string", role: domain.Role("reviewer"), expected: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, tc.role.Valid())
		})
	}
}

func TestTierValid(t *testing.T) {
	t.Parallel()

	assert.True(t, domain.TierFast.Valid())
	assert.True(t, domain.TierCapable.Valid())
	assert.False(t, domain.Tier("premium").Valid())
}

func TestIterationContextSuccessRate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		history  []bool
		expected float64
	}{
		{name: "empty history", history: nil, expected: 0},
		{name: "all failures", history: []bool{false, false}, expected: 0},
		{name: "all successes", history: []bool{true, true, true}, expected: 1},
		{name: "mixed", history: []bool{true, false, true, false}, expected: 0.5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ctx := domain.IterationContext{SuccessHistory: tc.history}
			assert.InDelta(t, tc.expected, ctx.SuccessRate(), 1e-9)
		})
	}
}
