package coordinator_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remedyhq/remedy/internal/coordinator"
	"github.com/remedyhq/remedy/internal/domain"
	"github.com/remedyhq/remedy/internal/errors"
	"github.com/remedyhq/remedy/internal/testutil"
)

// recordingExecutor tracks dispatch rounds: tasks running concurrently
// share a round observation window.
type recordingExecutor struct {
	mu       sync.Mutex
	executed []string
	running  int
	maxSeen  int
	failIDs  map[string]bool
	delay    time.Duration
}

func (r *recordingExecutor) Execute(_ context.Context, task domain.AgentTask) error {
	r.mu.Lock()
	r.running++
	if r.running > r.maxSeen {
		r.maxSeen = r.running
	}
	r.executed = append(r.executed, task.ID)
	r.mu.Unlock()

	if r.delay > 0 {
		time.Sleep(r.delay)
	}

	r.mu.Lock()
	r.running--
	fail := r.failIDs[task.ID]
	r.mu.Unlock()

	if fail {
		return testutil.ErrMockExecutor
	}
	return nil
}

func (r *recordingExecutor) executedIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.executed...)
}

func newCoordinator(exec coordinator.Executor) *coordinator.Coordinator {
	return coordinator.New(coordinator.DefaultPoolConfig(), exec, zerolog.Nop())
}

func task(id string, role domain.Role, deps ...string) domain.AgentTask {
	return domain.AgentTask{ID: id, ErrorID: "err-" + id, Role: role, Dependencies: deps}
}

func TestAddTaskValidation(t *testing.T) {
	t.Parallel()

	c := newCoordinator(&recordingExecutor{})

	require.NoError(t, c.AddTask(task("a", domain.RoleAnalyzer)))

	t.Run("duplicate id rejected", func(t *testing.T) {
		err := c.AddTask(task("a", domain.RoleFixer))
		assert.ErrorIs(t, err, errors.ErrDuplicateTaskID)
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		err := c.AddTask(task("b", domain.Role("janitor")))
		assert.ErrorIs(t, err, errors.ErrUnknownRole)
	})

	t.Run("empty id rejected", func(t *testing.T) {
		err := c.AddTask(task("", domain.RoleAnalyzer))
		assert.ErrorIs(t, err, errors.ErrEmptyValue)
	})
}

func TestExecuteTasksIndependentTasksShareARound(t *testing.T) {
	t.Parallel()

	exec := &recordingExecutor{delay: 20 * time.Millisecond}
	c := newCoordinator(exec)

	// A and B have no dependencies; C depends on A.
	require.NoError(t, c.AddTask(task("a", domain.RoleAnalyzer)))
	require.NoError(t, c.AddTask(task("b", domain.RoleFixer)))
	require.NoError(t, c.AddTask(task("c", domain.RoleValidator, "a")))

	report, err := c.ExecuteTasks(context.Background())
	require.NoError(t, err)

	assert.True(t, report.Success)
	assert.Equal(t, 3, report.TasksCompleted)
	assert.GreaterOrEqual(t, exec.maxSeen, 2, "a and b must run in the same round")
	assert.GreaterOrEqual(t, report.ParallelExecutions, 1)

	// C only started after A finished.
	ids := exec.executedIDs()
	require.Len(t, ids, 3)
	assert.Equal(t, "c", ids[2])

	assert.Equal(t, map[domain.Role]int{
		domain.RoleAnalyzer:  1,
		domain.RoleFixer:     1,
		domain.RoleValidator: 1,
	}, report.AgentUtilization)
}

func TestExecuteTasksRoleBoundedDispatch(t *testing.T) {
	t.Parallel()

	exec := &recordingExecutor{delay: 10 * time.Millisecond}
	c := coordinator.New(coordinator.PoolConfig{Analyzers: 1, Fixers: 1, Validators: 1}, exec, zerolog.Nop())

	// Three analyzer tasks but one analyzer worker: never more than one at once.
	require.NoError(t, c.AddTask(task("a1", domain.RoleAnalyzer)))
	require.NoError(t, c.AddTask(task("a2", domain.RoleAnalyzer)))
	require.NoError(t, c.AddTask(task("a3", domain.RoleAnalyzer)))

	report, err := c.ExecuteTasks(context.Background())
	require.NoError(t, err)

	assert.True(t, report.Success)
	assert.Equal(t, 1, exec.maxSeen, "a single analyzer worker serializes analyzer tasks")
	assert.Zero(t, report.ParallelExecutions)
}

func TestExecuteTasksFailureCascade(t *testing.T) {
	t.Parallel()

	exec := &recordingExecutor{failIDs: map[string]bool{"fix": true}}
	c := newCoordinator(exec)

	require.NoError(t, c.AddTask(task("analyze", domain.RoleAnalyzer)))
	require.NoError(t, c.AddTask(task("fix", domain.RoleFixer, "analyze")))
	require.NoError(t, c.AddTask(task("validate", domain.RoleValidator, "fix")))

	report, err := c.ExecuteTasks(context.Background())
	require.NoError(t, err)

	assert.False(t, report.Success)
	assert.Equal(t, 1, report.TasksCompleted)
	assert.ElementsMatch(t, []string{"fix", "validate"}, report.FailedTasks)

	// The dependent validator never executed.
	assert.NotContains(t, exec.executedIDs(), "validate")

	status, ok := c.TaskStatus("validate")
	require.True(t, ok)
	assert.Equal(t, domain.TaskFailed, status)
}

func TestExecuteTasksSiblingsSurviveInRoundFailure(t *testing.T) {
	t.Parallel()

	exec := &recordingExecutor{
		failIDs: map[string]bool{"bad": true},
		delay:   10 * time.Millisecond,
	}
	c := newCoordinator(exec)

	// bad and good are independent and dispatch together; bad's failure
	// must not cancel good.
	require.NoError(t, c.AddTask(task("bad", domain.RoleFixer)))
	require.NoError(t, c.AddTask(task("good", domain.RoleAnalyzer)))

	report, err := c.ExecuteTasks(context.Background())
	require.NoError(t, err)

	assert.False(t, report.Success)
	assert.Equal(t, 1, report.TasksCompleted)

	status, ok := c.TaskStatus("good")
	require.True(t, ok)
	assert.Equal(t, domain.TaskDone, status)
}

func TestExecuteTasksDependencyCycleStalls(t *testing.T) {
	t.Parallel()

	c := newCoordinator(&recordingExecutor{})
	require.NoError(t, c.AddTask(task("a", domain.RoleAnalyzer, "b")))
	require.NoError(t, c.AddTask(task("b", domain.RoleFixer, "a")))

	report, err := c.ExecuteTasks(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrSchedulingStalled)
	assert.False(t, report.Success)
	assert.ElementsMatch(t, []string{"a", "b"}, report.FailedTasks)
}

func TestExecuteTasksUnknownDependencyFailsClosed(t *testing.T) {
	t.Parallel()

	exec := &recordingExecutor{}
	c := newCoordinator(exec)
	require.NoError(t, c.AddTask(task("a", domain.RoleAnalyzer, "phantom")))

	_, err := c.ExecuteTasks(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUnknownDependency)
	assert.Empty(t, exec.executedIDs(), "nothing may be scheduled from an invalid batch")
}

func TestExecuteTasksNoWorkerForRoleFailsClosed(t *testing.T) {
	t.Parallel()

	c := coordinator.New(coordinator.PoolConfig{Analyzers: 1}, &recordingExecutor{}, zerolog.Nop())
	require.NoError(t, c.AddTask(task("f", domain.RoleFixer)))

	_, err := c.ExecuteTasks(context.Background())
	assert.ErrorIs(t, err, errors.ErrNoWorkerForRole)
}

func TestExecuteTasksEmptyBatch(t *testing.T) {
	t.Parallel()

	report, err := newCoordinator(&recordingExecutor{}).ExecuteTasks(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Success)
	assert.Zero(t, report.TasksCompleted)
}

func TestExecuteTasksContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newCoordinator(&recordingExecutor{})
	require.NoError(t, c.AddTask(task("a", domain.RoleAnalyzer)))

	_, err := c.ExecuteTasks(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDetectIndependentErrors(t *testing.T) {
	t.Parallel()

	e := func(id string, files ...string) domain.RepairError {
		return domain.RepairError{ID: id, AffectedFiles: files}
	}

	t.Run("overlap groups transitively", func(t *testing.T) {
		t.Parallel()
		groups := coordinator.DetectIndependentErrors([]domain.RepairError{
			e("e1", "f1"),
			e("e2", "f2"),
			e("e3", "f1"),
		})
		require.Len(t, groups, 2)

		var withTwo []string
		for _, g := range groups {
			if len(g) == 2 {
				for _, member := range g {
					withTwo = append(withTwo, member.ID)
				}
			}
		}
		assert.ElementsMatch(t, []string{"e1", "e3"}, withTwo)
	})

	t.Run("disjoint errors are singleton groups", func(t *testing.T) {
		t.Parallel()
		groups := coordinator.DetectIndependentErrors([]domain.RepairError{
			e("e1", "a.go"),
			e("e2", "b.go"),
			e("e3", "c.go"),
		})
		assert.Len(t, groups, 3)
	})

	t.Run("one shared file merges everything", func(t *testing.T) {
		t.Parallel()
		groups := coordinator.DetectIndependentErrors([]domain.RepairError{
			e("e1", "shared.go", "x.go"),
			e("e2", "shared.go"),
			e("e3", "shared.go", "y.go"),
		})
		require.Len(t, groups, 1)
		assert.Len(t, groups[0], 3)
	})

	t.Run("chained overlap merges ends that share nothing", func(t *testing.T) {
		t.Parallel()
		groups := coordinator.DetectIndependentErrors([]domain.RepairError{
			e("a", "1.go"),
			e("b", "1.go", "2.go"),
			e("c", "2.go"),
		})
		require.Len(t, groups, 1)
	})

	t.Run("empty input yields no groups", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, coordinator.DetectIndependentErrors(nil))
	})

	t.Run("error with no files is its own group", func(t *testing.T) {
		t.Parallel()
		groups := coordinator.DetectIndependentErrors([]domain.RepairError{
			e("solo"),
			e("other", "f.go"),
		})
		assert.Len(t, groups, 2)
	})
}
