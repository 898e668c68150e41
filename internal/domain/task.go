package domain

// Role identifies which kind of worker may execute a task. The set is
// closed: scheduling decisions use this tag rather than open-ended string
// matching.
type Role string

// The three worker roles of the repair pipeline.
const (
	// RoleAnalyzer diagnoses a failure without touching the tree.
	RoleAnalyzer Role = "analyzer"

	// RoleFixer produces and applies a candidate fix.
	RoleFixer Role = "fixer"

	// RoleValidator re-runs the failing checks against a candidate fix.
	RoleValidator Role = "validator"
)

// Valid reports whether r is one of the closed role set.
func (r Role) Valid() bool {
	switch r {
	case RoleAnalyzer, RoleFixer, RoleValidator:
		return true
	default:
		return false
	}
}

// Roles returns the closed role set in pipeline order.
func Roles() []Role {
	return []Role{RoleAnalyzer, RoleFixer, RoleValidator}
}

// TaskStatus represents the lifecycle state of an agent task.
type TaskStatus string

// Task lifecycle states. Transitions are pending -> running -> done|failed;
// a task whose upstream dependency failed moves pending -> failed without
// ever running.
const (
	TaskPending TaskStatus = "pending"
	TaskRunning TaskStatus = "running"
	TaskDone    TaskStatus = "done"
	TaskFailed  TaskStatus = "failed"
)

// AgentTask is one schedulable unit of repair work. Created by the outer
// loop, then owned and mutated exclusively by the coordinator's scheduler
// for the duration of a batch.
type AgentTask struct {
	// ID uniquely identifies the task within its batch.
	ID string `json:"id"`

	// ErrorID links the task to the CI failure it serves.
	ErrorID string `json:"error_id"`

	// Role selects which worker type may run the task.
	Role Role `json:"role"`

	// Priority orders tasks that become ready in the same round.
	// Higher runs earlier; ties keep FIFO order.
	Priority int `json:"priority"`

	// Dependencies lists task ids that must be done before this task runs.
	Dependencies []string `json:"dependencies,omitempty"`

	// Status is the current lifecycle state.
	Status TaskStatus `json:"status"`
}
