// Package tools builds the bounded diagnostic/repair tool plan for one
// attempt, from a static cost and affinity table.
//
// Import rules:
//   - CAN import: internal/constants, internal/domain, std lib
//   - MUST NOT import: other internal packages
package tools

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/remedyhq/remedy/internal/constants"
	"github.com/remedyhq/remedy/internal/domain"
)

// Tool identifiers. The set is closed; the table below is the single
// source of truth for their costs and affinities.
const (
	// LintChecker runs the linters against the tree. Cheap validator.
	LintChecker = "lint_checker"

	// BuildChecker compiles the tree. Cheap validator.
	BuildChecker = "build_checker"

	// TestRunner executes the failing test set. Cheap validator.
	TestRunner = "test_runner"

	// GitBlame inspects recent history around the affected files.
	GitBlame = "git_blame"

	// DependencyResolver reconciles import and module declarations.
	DependencyResolver = "dependency_resolver"

	// CodebaseSearch is the expensive broad-search tool. Only planned on
	// hard failures with budget to spare.
	CodebaseSearch = "codebase_search"

	// CodeGenerator is the generic fix-generation tool. Every plan ends
	// with it, so a plan is never empty and generation always runs after
	// diagnosis.
	CodeGenerator = "code_generator"
)

// toolInfo is one row of the static table.
type toolInfo struct {
	cost       float64
	categories []domain.Category
	broad      bool
}

// table maps each tool to its fixed cost and category affinity. Costs feed
// the execution order: cheap fast validators first, broad tools last.
var table = map[string]toolInfo{ //nolint:gochecknoglobals // Static tool table
	LintChecker:        {cost: 0.005, categories: []domain.Category{domain.CategoryLintViolation}},
	BuildChecker:       {cost: 0.008, categories: []domain.Category{domain.CategoryBuildFailure}},
	TestRunner:         {cost: 0.01, categories: []domain.Category{domain.CategoryTestFailure, domain.CategoryFlakyTest}},
	GitBlame:           {cost: 0.012, categories: []domain.Category{domain.CategoryTestFailure, domain.CategoryFlakyTest}},
	DependencyResolver: {cost: 0.02, categories: []domain.Category{domain.CategoryImportError, domain.CategoryBuildFailure}},
	CodebaseSearch:     {cost: 0.08, broad: true},
	CodeGenerator:      {cost: 0.05},
}

// Known reports whether id is in the static tool table.
func Known(id string) bool {
	_, ok := table[id]
	return ok
}

// Cost returns the static cost of a tool, or 0 for unknown ids.
func Cost(id string) float64 {
	return table[id].cost
}

// Preferences carries caller overrides for tool selection.
type Preferences struct {
	// AvoidTools are ids that must never appear in a plan.
	AvoidTools []string
}

// Context carries the attempt signals tool selection is made from.
type Context struct {
	// Category is the diagnosed failure category.
	Category domain.Category

	// Complexity is the 1-10 difficulty estimate.
	Complexity int

	// AffectedFiles are the paths implicated by the diagnosis.
	AffectedFiles []string

	// Budget is the remaining dollar budget for the attempt.
	Budget float64

	// PreviousAttempts is how many repair attempts already ran.
	PreviousAttempts int

	// Preferences are optional caller overrides.
	Preferences *Preferences
}

// Orchestrator builds tool plans. It is stateless apart from its logger
// and safe for concurrent use.
type Orchestrator struct {
	logger zerolog.Logger
}

// New returns a tool Orchestrator.
func New(logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{logger: logger}
}

// SelectTools chooses the tools for one attempt, already in execution
// order. Category affinity drives the base set; the broad-search tool
// joins only when the failure is hard AND budget remains; blame history
// joins on retries. The generic generator closes every plan, so the
// result is never empty.
func (o *Orchestrator) SelectTools(diagnosisSummary string, ctx Context) []string {
	avoided := make(map[string]bool)
	if ctx.Preferences != nil {
		for _, id := range ctx.Preferences.AvoidTools {
			avoided[id] = true
		}
	}

	selected := make(map[string]bool)
	for id, info := range table {
		if info.broad || id == CodeGenerator {
			continue
		}
		if hasCategory(info.categories, ctx.Category) {
			selected[id] = true
		}
	}

	// Retries get history context even outside the test categories.
	if ctx.PreviousAttempts > 0 {
		selected[GitBlame] = true
	}

	// Broad search requires both a hard failure and budget to spare.
	if ctx.Complexity > constants.HighComplexityToolFloor && ctx.Budget > constants.MinBudgetForBroadTools {
		selected[CodebaseSearch] = true
	}

	for id := range selected {
		if avoided[id] {
			delete(selected, id)
		}
	}

	ids := make([]string, 0, len(selected)+1)
	for id := range selected {
		ids = append(ids, id)
	}
	ids = ExecutionOrder(ids)

	if len(ids) >= constants.MaxToolsPerPlan {
		ids = ids[:constants.MaxToolsPerPlan-1]
	}
	if !avoided[CodeGenerator] || len(ids) == 0 {
		ids = append(ids, CodeGenerator)
	}

	o.logger.Debug().
		Strs("tools", ids).
		Str("category", string(ctx.Category)).
		Int("complexity", ctx.Complexity).
		Float64("budget", ctx.Budget).
		Str("diagnosis", truncate(diagnosisSummary, 120)).
		Msg("tool plan built")

	return ids
}

// ExecutionOrder sorts tool ids into the fixed execution order: ascending
// static cost, so cheap fast validators run first and expensive broad
// tools last, with the generator pinned to the end. The order depends only
// on the static table, never on the call context. Unknown ids are dropped.
func ExecutionOrder(ids []string) []string {
	ordered := make([]string, 0, len(ids))
	for _, id := range ids {
		if Known(id) {
			ordered = append(ordered, id)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a == CodeGenerator {
			return false
		}
		if b == CodeGenerator {
			return true
		}
		return table[a].cost < table[b].cost
	})
	return ordered
}

func hasCategory(categories []domain.Category, c domain.Category) bool {
	for _, candidate := range categories {
		if candidate == c {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
