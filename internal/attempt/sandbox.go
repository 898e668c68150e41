package attempt

import (
	"context"
	"sync"

	"github.com/remedyhq/remedy/internal/domain"
)

// ScriptedSandbox is a deterministic Sandbox for simulations and tests.
// Analyzer and fixer tasks always succeed; validator tasks fail until
// SucceedOnValidation validations have run, then succeed. Costs and
// latencies are fixed per role so runs are reproducible.
type ScriptedSandbox struct {
	// SucceedOnValidation is the 1-based validation count at which
	// validators start passing. Zero means validation never passes.
	SucceedOnValidation int

	mu          sync.Mutex
	validations int
	executions  int
}

// scripted per-role step results, in dollars and milliseconds.
var scriptedSteps = map[domain.Role]StepResult{ //nolint:gochecknoglobals // Static script table
	domain.RoleAnalyzer:  {Success: true, Cost: 0.02, LatencyMs: 800, TokensIn: 1200, TokensOut: 300, ToolCalls: 2},
	domain.RoleFixer:     {Success: true, Cost: 0.08, LatencyMs: 2500, TokensIn: 3000, TokensOut: 900, ToolCalls: 4},
	domain.RoleValidator: {Success: true, Cost: 0.01, LatencyMs: 1200, TokensIn: 400, TokensOut: 80, ToolCalls: 1},
}

// Execute returns the scripted result for the task's role.
func (s *ScriptedSandbox) Execute(ctx context.Context, task domain.AgentTask) (StepResult, error) {
	if err := ctx.Err(); err != nil {
		return StepResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.executions++

	result := scriptedSteps[task.Role]
	if task.Role == domain.RoleValidator {
		s.validations++
		result.Success = s.SucceedOnValidation > 0 && s.validations >= s.SucceedOnValidation
	}
	return result, nil
}

// Executions returns how many tasks the sandbox has run.
func (s *ScriptedSandbox) Executions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.executions
}
