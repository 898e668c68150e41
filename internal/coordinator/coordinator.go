// Package coordinator schedules typed repair tasks across a small pool of
// role-tagged workers, turning independent sub-errors into concurrent work
// while honoring dependencies.
//
// Import rules:
//   - CAN import: internal/constants, internal/domain, internal/errors, std lib
//   - MUST NOT import: other internal packages
package coordinator

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/remedyhq/remedy/internal/constants"
	"github.com/remedyhq/remedy/internal/domain"
	"github.com/remedyhq/remedy/internal/errors"
)

// Executor runs one task as an opaque unit of work. Fixer and validator
// tasks are sandbox-backed behind this boundary; an error marks the task
// failed without crashing the coordinator.
type Executor interface {
	Execute(ctx context.Context, task domain.AgentTask) error
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, task domain.AgentTask) error

// Execute implements Executor.
func (f ExecutorFunc) Execute(ctx context.Context, task domain.AgentTask) error {
	return f(ctx, task)
}

// PoolConfig fixes the worker pool composition at construction time.
type PoolConfig struct {
	Analyzers  int
	Fixers     int
	Validators int
}

// DefaultPoolConfig returns the standard pool: two workers per role.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		Analyzers:  constants.DefaultWorkersPerRole,
		Fixers:     constants.DefaultWorkersPerRole,
		Validators: constants.DefaultWorkersPerRole,
	}
}

func (p PoolConfig) workers(role domain.Role) int {
	switch role {
	case domain.RoleAnalyzer:
		return p.Analyzers
	case domain.RoleFixer:
		return p.Fixers
	case domain.RoleValidator:
		return p.Validators
	default:
		return 0
	}
}

// Report summarizes one ExecuteTasks run.
type Report struct {
	// Success is true only when every task finished done.
	Success bool `json:"success"`

	// TasksCompleted counts tasks that reached done.
	TasksCompleted int `json:"tasks_completed"`

	// ParallelExecutions counts dispatch rounds that ran more than one
	// task concurrently.
	ParallelExecutions int `json:"parallel_executions"`

	// AgentUtilization counts dispatched tasks per role.
	AgentUtilization map[domain.Role]int `json:"agent_utilization"`

	// FailedTasks lists ids of tasks that failed, including tasks never
	// executed because an upstream dependency failed.
	FailedTasks []string `json:"failed_tasks,omitempty"`
}

// Coordinator owns a batch of tasks for its lifetime and is their only
// mutator. A Coordinator is not reusable across batches; construct a new
// one per batch.
type Coordinator struct {
	mu       sync.Mutex
	pool     PoolConfig
	executor Executor
	tasks    []*domain.AgentTask
	executed bool
	logger   zerolog.Logger
}

// New returns a Coordinator with the given fixed pool.
func New(pool PoolConfig, executor Executor, logger zerolog.Logger) *Coordinator {
	return &Coordinator{
		pool:     pool,
		executor: executor,
		logger:   logger,
	}
}

// AddTask appends a task to the pending queue. Queue order is FIFO among
// tasks of equal dependency-readiness. Duplicate ids and unknown roles are
// rejected.
func (c *Coordinator) AddTask(task domain.AgentTask) error {
	if task.ID == "" {
		return errors.Wrap(errors.ErrEmptyValue, "task id")
	}
	if !task.Role.Valid() {
		return errors.Wrapf(errors.ErrUnknownRole, "task %q role %q", task.ID, task.Role)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, existing := range c.tasks {
		if existing.ID == task.ID {
			return errors.Wrapf(errors.ErrDuplicateTaskID, "task %q", task.ID)
		}
	}
	task.Status = domain.TaskPending
	c.tasks = append(c.tasks, &task)
	return nil
}

// ExecuteTasks runs the batch to completion: each round dispatches every
// pending task whose dependencies are all done, bounded by free workers of
// the matching role, and waits for the round to finish. A failed task never
// cancels siblings in the same round but poisons all downstream dependents,
// which are reported failed without executing. When pending tasks remain
// but none can ever become ready, the run stops with Success=false.
func (c *Coordinator) ExecuteTasks(ctx context.Context) (Report, error) {
	c.mu.Lock()
	if c.executed {
		c.mu.Unlock()
		return Report{}, errors.Wrap(errors.ErrSchedulingStalled, "coordinator already executed its batch")
	}
	c.executed = true
	c.mu.Unlock()

	report := Report{AgentUtilization: make(map[domain.Role]int)}

	if err := c.validateBatch(); err != nil {
		return report, err
	}

	byID := make(map[string]*domain.AgentTask, len(c.tasks))
	for _, task := range c.tasks {
		byID[task.ID] = task
	}

	var stallErr error
	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		c.cascadeFailures(byID)

		ready := c.readyTasks(byID)
		if len(ready) == 0 {
			if c.countStatus(domain.TaskPending) > 0 {
				// Dependency cycle: pending tasks that can never run.
				c.failPending()
				stallErr = errors.Wrap(errors.ErrSchedulingStalled, "pending tasks with unsatisfiable dependencies")
			}
			break
		}

		round := c.fitToPool(ready)
		c.runRound(ctx, round, &report)
	}

	report.TasksCompleted = c.countStatus(domain.TaskDone)
	for _, task := range c.tasks {
		if task.Status == domain.TaskFailed {
			report.FailedTasks = append(report.FailedTasks, task.ID)
		}
	}
	report.Success = report.TasksCompleted == len(c.tasks)
	return report, stallErr
}

// validateBatch fails closed on structural errors before anything runs:
// dangling dependency references and roles with no eligible worker.
func (c *Coordinator) validateBatch() error {
	ids := make(map[string]bool, len(c.tasks))
	for _, task := range c.tasks {
		ids[task.ID] = true
	}
	for _, task := range c.tasks {
		for _, dep := range task.Dependencies {
			if !ids[dep] {
				return errors.Wrapf(errors.ErrUnknownDependency, "task %q depends on %q", task.ID, dep)
			}
		}
		if c.pool.workers(task.Role) == 0 {
			return errors.Wrapf(errors.ErrNoWorkerForRole, "task %q role %q", task.ID, task.Role)
		}
	}
	return nil
}

// cascadeFailures marks pending tasks failed when any dependency failed,
// repeating until the poisoning reaches a fixed point. No partial
// dependency satisfaction: one failed upstream is enough.
func (c *Coordinator) cascadeFailures(byID map[string]*domain.AgentTask) {
	for changed := true; changed; {
		changed = false
		for _, task := range c.tasks {
			if task.Status != domain.TaskPending {
				continue
			}
			for _, dep := range task.Dependencies {
				if byID[dep].Status == domain.TaskFailed {
					task.Status = domain.TaskFailed
					changed = true
					c.logger.Debug().
						Str("task", task.ID).
						Str("failed_dependency", dep).
						Msg("task failed without execution: upstream failure")
					break
				}
			}
		}
	}
}

// readyTasks returns pending tasks whose dependencies are all done, in
// priority order with FIFO tiebreak.
func (c *Coordinator) readyTasks(byID map[string]*domain.AgentTask) []*domain.AgentTask {
	var ready []*domain.AgentTask
	for _, task := range c.tasks {
		if task.Status != domain.TaskPending {
			continue
		}
		ok := true
		for _, dep := range task.Dependencies {
			if byID[dep].Status != domain.TaskDone {
				ok = false
				break
			}
		}
		if ok {
			ready = append(ready, task)
		}
	}
	// Stable: equal priorities keep queue order.
	sort.SliceStable(ready, func(i, j int) bool {
		return ready[i].Priority > ready[j].Priority
	})
	return ready
}

// fitToPool trims the ready set to the free workers per role. Tasks whose
// role has no free worker this round stay pending and retry next round.
func (c *Coordinator) fitToPool(ready []*domain.AgentTask) []*domain.AgentTask {
	free := map[domain.Role]int{
		domain.RoleAnalyzer:  c.pool.Analyzers,
		domain.RoleFixer:     c.pool.Fixers,
		domain.RoleValidator: c.pool.Validators,
	}
	var round []*domain.AgentTask
	for _, task := range ready {
		if free[task.Role] > 0 {
			free[task.Role]--
			round = append(round, task)
		}
	}
	return round
}

// runRound executes one dispatch round concurrently and waits for all of
// it. The group carries no shared cancelation: a failing task must not
// abort its siblings mid-round.
func (c *Coordinator) runRound(ctx context.Context, round []*domain.AgentTask, report *Report) {
	for _, task := range round {
		task.Status = domain.TaskRunning
		report.AgentUtilization[task.Role]++
	}
	if len(round) > 1 {
		report.ParallelExecutions++
	}

	c.logger.Debug().Int("tasks", len(round)).Msg("dispatching round")

	var g errgroup.Group
	var mu sync.Mutex
	for _, task := range round {
		g.Go(func() error {
			err := c.executor.Execute(ctx, *task)
			mu.Lock()
			if err != nil {
				task.Status = domain.TaskFailed
				c.logger.Warn().Err(err).Str("task", task.ID).Msg("task failed")
			} else {
				task.Status = domain.TaskDone
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // Task errors are recorded per task, never propagated.
}

// failPending marks every still-pending task failed. Used when the
// scheduler stalls on a dependency cycle.
func (c *Coordinator) failPending() {
	for _, task := range c.tasks {
		if task.Status == domain.TaskPending {
			task.Status = domain.TaskFailed
		}
	}
}

func (c *Coordinator) countStatus(status domain.TaskStatus) int {
	n := 0
	for _, task := range c.tasks {
		if task.Status == status {
			n++
		}
	}
	return n
}

// TaskStatus reports the current status of a task in the batch.
func (c *Coordinator) TaskStatus(id string) (domain.TaskStatus, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, task := range c.tasks {
		if task.ID == id {
			return task.Status, true
		}
	}
	return "", false
}
