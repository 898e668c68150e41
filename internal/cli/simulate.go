// Package cli provides the command-line interface for remedy.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/remedyhq/remedy/internal/attempt"
	"github.com/remedyhq/remedy/internal/config"
	"github.com/remedyhq/remedy/internal/decompose"
	"github.com/remedyhq/remedy/internal/domain"
	"github.com/remedyhq/remedy/internal/errors"
	"github.com/remedyhq/remedy/internal/governor"
)

// SimulateFlags holds flags specific to the simulate command.
type SimulateFlags struct {
	// Category is the failure category to simulate.
	Category string
	// Complexity is the 1-10 difficulty estimate of the simulated failure.
	Complexity int
	// FixOnValidation is the validation count at which the scripted
	// sandbox starts passing. Zero simulates an unfixable failure.
	FixOnValidation int
	// Seed overrides the bandit seed for reproducible runs.
	Seed int64
	// Decompose enables a scripted decomposition proposal.
	Decompose bool
}

// newSimulateCmd creates the 'simulate' command that drives a full repair
// run against a scripted sandbox. No model calls or repository mutations
// happen; the run exercises the real decision pipeline end to end.
func newSimulateCmd(flags *SimulateFlags, global *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "simulate",
		Short: "Run a scripted repair simulation",
		Long: `Run one repair attempt against a scripted sandbox.

The simulation exercises the real orchestration pipeline: tier selection,
decomposition, tool planning, coordinated execution, reward scoring and the
continue/terminate bandit. Only the sandbox is scripted, so the printed
trace shows exactly what a live run would have decided.

Examples:
  remedy simulate                                        # fixable on the 2nd try
  remedy simulate --category flaky_test --fix-on 0       # never fixable
  remedy simulate --complexity 9 --decompose             # decomposed pipelines
  remedy simulate --seed 7 --output json                 # reproducible, machine-readable`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSimulate(cmd.Context(), cmd.OutOrStdout(), flags, global)
		},
		SilenceUsage: true,
	}
}

// AddSimulateCommand adds the simulate command to the root command.
func AddSimulateCommand(rootCmd *cobra.Command, global *GlobalFlags) {
	flags := &SimulateFlags{}
	cmd := newSimulateCmd(flags, global)
	cmd.Flags().StringVar(&flags.Category, "category", string(domain.CategoryBuildFailure), "failure category to simulate")
	cmd.Flags().IntVar(&flags.Complexity, "complexity", 6, "failure complexity (1-10)")
	cmd.Flags().IntVar(&flags.FixOnValidation, "fix-on", 2, "validation count at which the fix lands (0 = never)")
	cmd.Flags().Int64Var(&flags.Seed, "seed", 0, "bandit seed (0 = from config or entropy)")
	cmd.Flags().BoolVar(&flags.Decompose, "decompose", false, "propose a scripted decomposition")
	rootCmd.AddCommand(cmd)
}

func runSimulate(ctx context.Context, out io.Writer, flags *SimulateFlags, global *GlobalFlags) error {
	category := domain.Category(flags.Category)
	if !category.Valid() {
		return errors.Wrapf(errors.ErrValueOutOfRange, "unknown category %q", flags.Category)
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if flags.Seed != 0 {
		cfg.Refiner.Seed = flags.Seed
	}

	govCfg, err := governor.ConfigFromEnv()
	if err != nil {
		return err
	}

	logger := GetLogger()
	gov := governor.New(govCfg, logger)
	defer gov.Close()

	var generator decompose.Generator
	if flags.Decompose {
		generator = scriptedProposal(flags.Complexity)
	}

	sandbox := &attempt.ScriptedSandbox{SucceedOnValidation: flags.FixOnValidation}
	harness, err := attempt.New(cfg, gov, sandbox, generator, logger)
	if err != nil {
		return err
	}

	report, err := harness.Run(ctx, attempt.Failure{
		Diagnosis:     fmt.Sprintf("simulated %s failure", flags.Category),
		Category:      category,
		Complexity:    flags.Complexity,
		AffectedFiles: []string{"internal/app/app.go"},
	})
	if err != nil {
		return err
	}

	if global.Output == OutputJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal report")
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}

	printReport(out, report)
	return nil
}

// scriptedProposal returns a generator proposing a fixed two-node split.
// Complexity is divided between the nodes so the pipelines schedule like a
// real decomposition would.
func scriptedProposal(complexity int) decompose.Generator {
	half := complexity / 2
	return generatorFunc(func(_ context.Context, req decompose.Request) (decompose.Proposal, error) {
		return decompose.Proposal{
			ShouldDecompose: true,
			Reasoning:       "scripted split into cause and fallout",
			DAG: domain.ErrorDAG{
				Nodes: []domain.ErrorDAGNode{
					{ID: "cause", Description: "root cause of " + req.Diagnosis, Complexity: half},
					{ID: "fallout", Description: "downstream breakage", Complexity: complexity - half},
				},
				Edges: []domain.ErrorDAGEdge{{From: "cause", To: "fallout"}},
			},
		}, nil
	})
}

type generatorFunc func(ctx context.Context, req decompose.Request) (decompose.Proposal, error)

func (f generatorFunc) ProposeDecomposition(ctx context.Context, req decompose.Request) (decompose.Proposal, error) {
	return f(ctx, req)
}

// printReport writes the human-readable run trace.
func printReport(out io.Writer, report *attempt.RunReport) {
	titler := cases.Title(language.English)

	verdict := "failed"
	if report.Success {
		verdict = "succeeded"
	}
	fmt.Fprintf(out, "Run %s %s after %d iteration(s), $%.3f spent\n\n",
		report.AttemptID, verdict, len(report.Iterations), report.TotalCost)

	for _, it := range report.Iterations {
		fmt.Fprintf(out, "Iteration %d\n", it.Number)
		fmt.Fprintf(out, "  Tier:     %s\n", titler.String(string(it.Tier)))
		fmt.Fprintf(out, "  Mode:     %s\n", titler.String(string(it.Mode)))
		fmt.Fprintf(out, "  Tools:    %s\n", strings.Join(it.Tools, ", "))
		fmt.Fprintf(out, "  Outcome:  success=%v cost=$%.3f latency=%dms\n",
			it.Metrics.Success, it.Metrics.Cost, it.Metrics.LatencyMs)
		fmt.Fprintf(out, "  Score:    %.2f\n", it.Score)
		fmt.Fprintf(out, "  Decision: %s (confidence %.2f) - %s\n\n",
			titler.String(string(it.Decision.Action)), it.Decision.Confidence, it.Decision.Reasoning)
	}
}
