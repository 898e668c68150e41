package domain

// Tier is a named computation profile selected per attempt.
type Tier string

// The two computation tiers. Fast is cheap and quick; Capable is expensive
// and stronger. EstimateCost guarantees Capable's unit rate exceeds Fast's.
const (
	TierFast    Tier = "fast"
	TierCapable Tier = "capable"
)

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	return t == TierFast || t == TierCapable
}

// Category classifies a CI failure by its diagnosed cause. Categories carry
// tool affinities: an import error pulls in dependency resolution, a test
// failure pulls in the test runner and blame history.
type Category string

// Known failure categories. The zero value ("") behaves like CategoryUnknown.
const (
	CategoryImportError   Category = "import_error"
	CategoryTestFailure   Category = "test_failure"
	CategoryBuildFailure  Category = "build_failure"
	CategoryLintViolation Category = "lint_violation"
	CategoryFlakyTest     Category = "flaky_test"
	CategoryUnknown       Category = "unknown"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryImportError, CategoryTestFailure, CategoryBuildFailure,
		CategoryLintViolation, CategoryFlakyTest, CategoryUnknown:
		return true
	}
	return false
}
