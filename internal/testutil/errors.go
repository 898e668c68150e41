// Package testutil provides testing utilities for remedy.
//
// This package contains mock errors used across test files to simulate
// collaborator failures. It should only be imported by test files
// (*_test.go).
package testutil

import "errors"

// Mock errors for testing purposes.
var (
	// ErrMockGenerator simulates a generative collaborator failure
	// (model timeout, malformed response).
	ErrMockGenerator = errors.New("mock generator failure")

	// ErrMockExecutor simulates a task execution failure inside a worker.
	ErrMockExecutor = errors.New("mock executor failure")

	// ErrMockSandbox simulates a sandbox crash during command execution.
	ErrMockSandbox = errors.New("mock sandbox failure")

	// ErrMockStats simulates an unavailable resource stats provider.
	ErrMockStats = errors.New("mock stats failure")
)
