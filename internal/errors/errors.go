// Package errors provides centralized error handling for remedy.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
// All errors use lowercase descriptions per Go conventions.
var (
	// ErrEmptyDAG indicates a decomposition DAG with no nodes.
	ErrEmptyDAG = errors.New("decomposition dag has no nodes")

	// ErrDuplicateNodeID indicates two DAG nodes sharing the same identifier.
	ErrDuplicateNodeID = errors.New("duplicate dag node id")

	// ErrDanglingEdge indicates a DAG edge referencing a node id that does
	// not exist in the same graph.
	ErrDanglingEdge = errors.New("dag edge references unknown node")

	// ErrCyclicDAG indicates the decomposition graph contains a cycle and
	// must never be scheduled.
	ErrCyclicDAG = errors.New("decomposition dag contains a cycle")

	// ErrDuplicateTaskID indicates two agent tasks sharing the same identifier.
	ErrDuplicateTaskID = errors.New("duplicate task id")

	// ErrUnknownDependency indicates an agent task depending on a task id
	// that is not part of the same batch.
	ErrUnknownDependency = errors.New("task depends on unknown task id")

	// ErrUnknownRole indicates a task or worker tagged with a role outside
	// the closed analyzer/fixer/validator set.
	ErrUnknownRole = errors.New("unknown agent role")

	// ErrNoWorkerForRole indicates the coordinator pool contains no worker
	// eligible for a task's role.
	ErrNoWorkerForRole = errors.New("no worker available for role")

	// ErrSchedulingStalled indicates the coordinator made no progress:
	// pending tasks remain but none can ever become ready (dependency cycle
	// or permanent upstream failure).
	ErrSchedulingStalled = errors.New("scheduling stalled: unsatisfiable dependencies")

	// ErrUnknownArm indicates a bandit update for an arm that does not exist.
	ErrUnknownArm = errors.New("unknown bandit arm")

	// ErrUnknownTool indicates an unknown tool identifier was specified.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrUnknownTier indicates an unknown model tier was specified.
	ErrUnknownTier = errors.New("unknown model tier")

	// ErrAdmissionTimeout indicates a repair attempt waited longer than the
	// configured queue timeout for a concurrency slot. This is a resource
	// rejection, distinct from a task failure.
	ErrAdmissionTimeout = errors.New("admission queue timeout")

	// ErrGovernorClosed indicates an admission request against a governor
	// that has been shut down.
	ErrGovernorClosed = errors.New("governor closed")

	// ErrDecomposerDeclined indicates the generative collaborator returned a
	// structured decline rather than a candidate DAG.
	ErrDecomposerDeclined = errors.New("decomposer declined")

	// ErrSandboxFailed indicates the sandbox collaborator reported a
	// non-zero exit for a fixer or validator unit of work.
	ErrSandboxFailed = errors.New("sandbox execution failed")

	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigInvalidReward indicates an invalid reward weight configuration value.
	ErrConfigInvalidReward = errors.New("invalid reward configuration")

	// ErrConfigInvalidSelector indicates an invalid model selector configuration value.
	ErrConfigInvalidSelector = errors.New("invalid selector configuration")

	// ErrConfigInvalidRefiner indicates an invalid refiner configuration value.
	ErrConfigInvalidRefiner = errors.New("invalid refiner configuration")

	// ErrConfigInvalidGovernor indicates an invalid governor configuration value.
	ErrConfigInvalidGovernor = errors.New("invalid governor configuration")

	// ErrConfigInvalidCoordinator indicates an invalid coordinator pool configuration value.
	ErrConfigInvalidCoordinator = errors.New("invalid coordinator configuration")

	// ErrInvalidOutputFormat indicates an unsupported CLI output format.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrConfigExists indicates that a config file already exists at the
	// target path.
	ErrConfigExists = errors.New("config file already exists")

	// ErrValueOutOfRange indicates that a value is outside the allowed range.
	ErrValueOutOfRange = errors.New("value out of range")

	// ErrEmptyValue indicates that a required value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")
)
