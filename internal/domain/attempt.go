// Package domain provides shared domain types for the remedy orchestration core.
// These types are used across all internal packages to ensure consistent data structures.
//
// This package follows strict import rules:
//   - CAN import: internal/constants, internal/errors, standard library
//   - MUST NOT import: any other internal packages
//
// All JSON field names use snake_case.
package domain

// AttemptMetrics captures the raw outcome of one completed repair iteration.
// Produced exactly once per iteration and never mutated afterwards; the
// reward calculator is its only consumer.
type AttemptMetrics struct {
	// Success reports whether the attempt made CI green.
	Success bool `json:"success"`

	// Cost is the dollar cost of the attempt. Never negative.
	Cost float64 `json:"cost"`

	// LatencyMs is the wall-clock duration of the attempt in milliseconds.
	LatencyMs int `json:"latency_ms"`

	// TokensIn and TokensOut are the model token counts for the attempt.
	TokensIn  int `json:"tokens_in"`
	TokensOut int `json:"tokens_out"`

	// ToolCalls is how many tool invocations the attempt made.
	ToolCalls int `json:"tool_calls"`

	// CodeQuality is an optional 0-100 quality estimate of the produced fix.
	// Nil when no quality signal is available.
	CodeQuality *float64 `json:"code_quality,omitempty"`

	// DiffSize is the optional lines-changed count of the produced fix.
	// Nil when no diff was produced or measured.
	DiffSize *int `json:"diff_size,omitempty"`
}

// IterationContext is the read-only snapshot the refiner receives for each
// continue/terminate decision. Constructed fresh per call.
type IterationContext struct {
	// CurrentIteration is the 1-based index of the iteration about to run.
	CurrentIteration int `json:"current_iteration"`

	// MaxIterations is the ceiling for this repair run.
	MaxIterations int `json:"max_iterations"`

	// SuccessHistory is the ordered success/failure record of completed
	// iterations, oldest first.
	SuccessHistory []bool `json:"success_history"`

	// CostSoFar is the cumulative dollar cost of the run.
	CostSoFar float64 `json:"cost_so_far"`

	// MaxCost is the dollar budget for the run.
	MaxCost float64 `json:"max_cost"`
}

// SuccessRate returns the fraction of successful iterations in the history,
// or 0 when the history is empty.
func (c IterationContext) SuccessRate() float64 {
	if len(c.SuccessHistory) == 0 {
		return 0
	}
	successes := 0
	for _, ok := range c.SuccessHistory {
		if ok {
			successes++
		}
	}
	return float64(successes) / float64(len(c.SuccessHistory))
}

// ResourceStats is an ephemeral snapshot of host resource usage supplied by
// an external stats collaborator. The governor reads it and never owns it.
type ResourceStats struct {
	// CPUPercent is system-wide CPU utilization, 0-100.
	CPUPercent float64 `json:"cpu_percent"`

	// MemoryPercent is system-wide memory utilization, 0-100.
	MemoryPercent float64 `json:"memory_percent"`

	// PIDs is the number of processes on the host.
	PIDs int `json:"pids"`
}

// RepairError describes one distinct CI failure to repair, with the files
// its diagnosis touches. Used for independence grouping: two errors whose
// affected files overlap cannot be repaired concurrently.
type RepairError struct {
	// ID uniquely identifies the error within a batch.
	ID string `json:"id"`

	// AffectedFiles are the repository paths implicated by the diagnosis.
	AffectedFiles []string `json:"affected_files"`
}
