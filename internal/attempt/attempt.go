// Package attempt runs the repair-attempt loop: the outer iteration cycle
// that binds tier selection, decomposition, tool planning, coordinated
// execution, reward scoring and the continue/terminate bandit into one run
// against a single CI failure.
//
// The package owns no policy of its own. Every decision is delegated to the
// component that implements it; attempt only sequences them and carries
// state between iterations.
//
// Import rules:
//   - CAN import: internal/config, internal/constants, internal/coordinator,
//     internal/decompose, internal/domain, internal/errors, internal/governor,
//     internal/refine, internal/reward, internal/selector, internal/tools
//   - MUST NOT import: internal/cli
package attempt

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/remedyhq/remedy/internal/config"
	"github.com/remedyhq/remedy/internal/coordinator"
	"github.com/remedyhq/remedy/internal/decompose"
	"github.com/remedyhq/remedy/internal/domain"
	"github.com/remedyhq/remedy/internal/errors"
	"github.com/remedyhq/remedy/internal/governor"
	"github.com/remedyhq/remedy/internal/refine"
	"github.com/remedyhq/remedy/internal/reward"
	"github.com/remedyhq/remedy/internal/selector"
	"github.com/remedyhq/remedy/internal/tools"
)

// Failure describes the CI failure a run tries to repair.
type Failure struct {
	// Diagnosis is the failure diagnosis text.
	Diagnosis string `json:"diagnosis"`

	// Category is the diagnosed failure category.
	Category domain.Category `json:"category"`

	// Complexity is the 1-10 difficulty estimate.
	Complexity int `json:"complexity"`

	// AffectedFiles are the paths implicated by the diagnosis.
	AffectedFiles []string `json:"affected_files,omitempty"`
}

// StepResult is what the sandbox reports for one executed task.
type StepResult struct {
	// Success reports whether the task achieved its goal.
	Success bool

	// Cost is the dollar cost the task incurred.
	Cost float64

	// LatencyMs is the task's wall-clock duration in milliseconds.
	LatencyMs int

	// TokensIn and TokensOut are the task's model token counts.
	TokensIn  int
	TokensOut int

	// ToolCalls is how many tool invocations the task made.
	ToolCalls int
}

// Sandbox is the opaque execution boundary. Implementations run the actual
// repair work (model calls, builds, test runs) for one task; the harness
// never sees inside, only the StepResult.
type Sandbox interface {
	Execute(ctx context.Context, task domain.AgentTask) (StepResult, error)
}

// Iteration records one completed cycle of the repair loop.
type Iteration struct {
	// Number is the 1-based iteration index.
	Number int `json:"number"`

	// Tier is the model tier the selector chose.
	Tier domain.Tier `json:"tier"`

	// Mode says whether execution ran on a decomposition DAG or flat.
	Mode decompose.Mode `json:"mode"`

	// Tools is the tool plan, in execution order.
	Tools []string `json:"tools"`

	// Metrics are the aggregated raw outcomes of the iteration.
	Metrics domain.AttemptMetrics `json:"metrics"`

	// Score is the reward the iteration earned.
	Score float64 `json:"score"`

	// Decision is the refiner's verdict issued after the iteration.
	Decision refine.Decision `json:"decision"`
}

// RunReport is the outcome of one full repair run.
type RunReport struct {
	// AttemptID identifies the run.
	AttemptID string `json:"attempt_id"`

	// Success reports whether any iteration repaired the failure.
	Success bool `json:"success"`

	// Iterations is the completed iteration trace, oldest first.
	Iterations []Iteration `json:"iterations"`

	// TotalCost is the cumulative dollar cost of the run.
	TotalCost float64 `json:"total_cost"`
}

// categoryHistory accumulates per-category repair outcomes across runs so
// the selector's history rule has a signal to work with.
type categoryHistory struct {
	mu       sync.Mutex
	attempts map[domain.Category]int
	repaired map[domain.Category]int
}

func (h *categoryHistory) rate(c domain.Category) *float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	total := h.attempts[c]
	if total == 0 {
		return nil
	}
	r := float64(h.repaired[c]) / float64(total)
	return &r
}

func (h *categoryHistory) record(c domain.Category, success bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.attempts[c]++
	if success {
		h.repaired[c]++
	}
}

// Harness wires the orchestration core together and drives repair runs.
// One harness may serve many sequential or concurrent runs; the governor
// bounds how many execute at once.
type Harness struct {
	cfg       *config.Config
	gov       *governor.Governor
	sandbox   Sandbox
	selector  *selector.Selector
	tools     *tools.Orchestrator
	decompose *decompose.Decomposer
	refiner   *refine.Refiner
	reward    *reward.Calculator
	pool      coordinator.PoolConfig
	history   *categoryHistory
	logger    zerolog.Logger
}

// New builds a Harness from configuration. The generator may be nil, in
// which case every failure is planned flat.
func New(cfg *config.Config, gov *governor.Governor, sandbox Sandbox, generator decompose.Generator, logger zerolog.Logger) (*Harness, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	if gov == nil || sandbox == nil {
		return nil, errors.Wrap(errors.ErrEmptyValue, "harness requires a governor and a sandbox")
	}

	seed := cfg.Refiner.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Harness{
		cfg:       cfg,
		gov:       gov,
		sandbox:   sandbox,
		selector:  selector.New(thresholdsFromConfig(cfg), logger),
		tools:     tools.New(logger),
		decompose: decompose.New(generator, logger),
		refiner:   refine.New(seed, logger),
		reward:    reward.NewCalculator(weightsFromConfig(cfg)),
		pool: coordinator.PoolConfig{
			Analyzers:  cfg.Coordinator.Analyzers,
			Fixers:     cfg.Coordinator.Fixers,
			Validators: cfg.Coordinator.Validators,
		},
		history: &categoryHistory{
			attempts: make(map[domain.Category]int),
			repaired: make(map[domain.Category]int),
		},
		logger: logger,
	}, nil
}

func thresholdsFromConfig(cfg *config.Config) selector.Thresholds {
	return selector.Thresholds{
		LowBudget:       cfg.Selector.LowBudgetThreshold,
		HighSuccessRate: cfg.Selector.HighSuccessRateThreshold,
		LowComplexity:   cfg.Selector.LowComplexityCutoff,
	}
}

func weightsFromConfig(cfg *config.Config) reward.Weights {
	return reward.Weights{
		Success:        cfg.Reward.Success,
		FailurePenalty: cfg.Reward.FailurePenalty,
		Cost:           cfg.Reward.Cost,
		Latency:        cfg.Reward.Latency,
		Quality:        cfg.Reward.Quality,
		Simplicity:     cfg.Reward.Simplicity,
		SimplicityCap:  cfg.Reward.SimplicityCap,
	}
}

// Run repairs one failure, iterating until the refiner terminates the run,
// a cap is hit, or an iteration succeeds. The governor gates admission; a
// run that cannot be admitted within the queue timeout returns the
// admission error untouched.
func (h *Harness) Run(ctx context.Context, failure Failure) (*RunReport, error) {
	release, err := h.gov.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	report := &RunReport{AttemptID: uuid.New().String()}
	logger := h.logger.With().
		Str("attempt_id", report.AttemptID).
		Str("category", string(failure.Category)).
		Int("complexity", failure.Complexity).
		Logger()
	logger.Info().Str("diagnosis", failure.Diagnosis).Msg("repair run starting")

	maxCost := h.cfg.Refiner.MaxCostPerRun
	var history []bool

	for iteration := 1; ; iteration++ {
		if err := ctx.Err(); err != nil {
			return report, errors.Wrap(err, "repair run canceled")
		}

		result, err := h.runIteration(ctx, iterationInput{
			failure:   failure,
			number:    iteration,
			costSoFar: report.TotalCost,
			maxCost:   maxCost,
			history:   history,
		}, logger)
		if err != nil {
			return report, err
		}

		report.TotalCost += result.Metrics.Cost
		history = append(history, result.Metrics.Success)
		h.history.record(failure.Category, result.Metrics.Success)

		limit := refine.AdaptiveLimit(
			h.cfg.Refiner.BaseIterationLimit,
			failure.Complexity,
			successRate(history),
			maxCost-report.TotalCost,
		)

		decision := h.refiner.Decide(domain.IterationContext{
			CurrentIteration: iteration,
			MaxIterations:    limit,
			SuccessHistory:   history,
			CostSoFar:        report.TotalCost,
			MaxCost:          maxCost,
		})
		result.Decision = decision
		report.Iterations = append(report.Iterations, result)

		// The bandit learns from what following its own advice yielded:
		// crediting the continue arm when the iteration it allowed
		// succeeded, debiting it when the iteration failed.
		if err := h.refiner.Update(refine.ArmContinue, result.Metrics.Success); err != nil {
			return report, err
		}

		if result.Metrics.Success {
			report.Success = true
			logger.Info().Int("iterations", iteration).
				Float64("total_cost", report.TotalCost).
				Msg("repair run succeeded")
			return report, nil
		}
		if decision.Action == refine.ActionTerminate {
			logger.Info().Int("iterations", iteration).
				Float64("total_cost", report.TotalCost).
				Str("reasoning", decision.Reasoning).
				Msg("repair run terminated")
			return report, nil
		}
	}
}

type iterationInput struct {
	failure   Failure
	number    int
	costSoFar float64
	maxCost   float64
	history   []bool
}

func (h *Harness) runIteration(ctx context.Context, in iterationInput, logger zerolog.Logger) (Iteration, error) {
	remaining := in.maxCost - in.costSoFar
	remainingFraction := 0.0
	if in.maxCost > 0 && remaining > 0 {
		remainingFraction = remaining / in.maxCost
	}

	tier := h.selector.Select(selector.Request{
		Complexity:            in.failure.Complexity,
		Category:              in.failure.Category,
		AttemptNumber:         in.number,
		RemainingBudget:       remainingFraction,
		HistoricalSuccessRate: h.history.rate(in.failure.Category),
	})

	outcome := h.decompose.Decompose(ctx, decompose.Request{
		Diagnosis:     in.failure.Diagnosis,
		Category:      in.failure.Category,
		Complexity:    in.failure.Complexity,
		AffectedFiles: in.failure.AffectedFiles,
	})

	plan := h.tools.SelectTools(in.failure.Diagnosis, tools.Context{
		Category:         in.failure.Category,
		Complexity:       in.failure.Complexity,
		AffectedFiles:    in.failure.AffectedFiles,
		Budget:           remaining,
		PreviousAttempts: in.number - 1,
	})

	collector := &stepCollector{}
	coord := coordinator.New(h.pool, h.executor(collector), logger)
	for _, task := range buildTasks(in.failure, outcome) {
		if err := coord.AddTask(task); err != nil {
			return Iteration{}, err
		}
	}

	execReport, err := coord.ExecuteTasks(ctx)
	if err != nil && !stderrors.Is(err, errors.ErrSchedulingStalled) {
		return Iteration{}, err
	}

	metrics := collector.aggregate()
	metrics.Success = execReport.Success
	for _, id := range plan {
		metrics.Cost += tools.Cost(id)
	}

	it := Iteration{
		Number:  in.number,
		Tier:    tier,
		Mode:    outcome.Mode,
		Tools:   plan,
		Metrics: metrics,
		Score:   h.reward.Score(metrics),
	}

	logger.Debug().
		Int("iteration", in.number).
		Str("tier", string(tier)).
		Str("mode", string(outcome.Mode)).
		Bool("success", metrics.Success).
		Float64("score", it.Score).
		Msg("iteration complete")
	return it, nil
}

// executor adapts the sandbox to the coordinator's Executor interface,
// funneling every step result into the collector.
func (h *Harness) executor(collector *stepCollector) coordinator.Executor {
	return coordinator.ExecutorFunc(func(ctx context.Context, task domain.AgentTask) error {
		result, err := h.sandbox.Execute(ctx, task)
		collector.add(result)
		if err != nil {
			return errors.Wrapf(errors.ErrSandboxFailed, "task %s: %v", task.ID, err)
		}
		if !result.Success {
			return errors.Wrapf(errors.ErrSandboxFailed, "task %s reported failure", task.ID)
		}
		return nil
	})
}

// buildTasks expands a failure into the analyzer/fixer/validator pipeline.
// A decomposed outcome yields one pipeline per DAG node, with DAG edges
// translated into cross-pipeline dependencies; a flat outcome yields a
// single pipeline. Higher-complexity sub-problems get higher priority so
// the hard parts start first.
func buildTasks(failure Failure, outcome decompose.Outcome) []domain.AgentTask {
	if outcome.Flat() {
		return pipeline(uuid.New().String(), failure.Complexity, nil)
	}

	validatorOf := make(map[string]string, len(outcome.DAG.Nodes))
	tasks := make([]domain.AgentTask, 0, 3*len(outcome.DAG.Nodes))
	pipelines := make(map[string][]domain.AgentTask, len(outcome.DAG.Nodes))

	for _, node := range outcome.DAG.Nodes {
		p := pipeline(node.ID, node.Complexity, nil)
		validatorOf[node.ID] = p[2].ID
		pipelines[node.ID] = p
	}

	// An edge From -> To gates To's analyzer on From's validator.
	for _, edge := range outcome.DAG.Edges {
		p := pipelines[edge.To]
		p[0].Dependencies = append(p[0].Dependencies, validatorOf[edge.From])
	}

	for _, node := range outcome.DAG.Nodes {
		tasks = append(tasks, pipelines[node.ID]...)
	}
	return tasks
}

// pipeline builds the three-step analyze/fix/validate chain for one error.
func pipeline(errorID string, priority int, extraDeps []string) []domain.AgentTask {
	analyze := domain.AgentTask{
		ID:           uuid.New().String(),
		ErrorID:      errorID,
		Role:         domain.RoleAnalyzer,
		Priority:     priority,
		Dependencies: extraDeps,
	}
	fix := domain.AgentTask{
		ID:           uuid.New().String(),
		ErrorID:      errorID,
		Role:         domain.RoleFixer,
		Priority:     priority,
		Dependencies: []string{analyze.ID},
	}
	validate := domain.AgentTask{
		ID:           uuid.New().String(),
		ErrorID:      errorID,
		Role:         domain.RoleValidator,
		Priority:     priority,
		Dependencies: []string{fix.ID},
	}
	return []domain.AgentTask{analyze, fix, validate}
}

func successRate(history []bool) float64 {
	if len(history) == 0 {
		return 0
	}
	n := 0
	for _, ok := range history {
		if ok {
			n++
		}
	}
	return float64(n) / float64(len(history))
}

// stepCollector aggregates sandbox results across a round of concurrent
// task executions.
type stepCollector struct {
	mu      sync.Mutex
	results []StepResult
}

func (c *stepCollector) add(r StepResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, r)
}

func (c *stepCollector) aggregate() domain.AttemptMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()

	var m domain.AttemptMetrics
	for _, r := range c.results {
		m.Cost += r.Cost
		m.LatencyMs += r.LatencyMs
		m.TokensIn += r.TokensIn
		m.TokensOut += r.TokensOut
		m.ToolCalls += r.ToolCalls
	}
	return m
}
