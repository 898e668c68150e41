// Package refine decides whether the iterative repair loop should keep
// going, using a two-armed Thompson sampling bandit over continue/terminate.
//
// Import rules:
//   - CAN import: internal/constants, internal/domain, internal/errors, std lib
//   - MUST NOT import: other internal packages
package refine

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/rs/zerolog"

	"github.com/remedyhq/remedy/internal/constants"
	"github.com/remedyhq/remedy/internal/domain"
	"github.com/remedyhq/remedy/internal/errors"
)

// Arm names for the two bandit decisions.
const (
	ArmContinue  = "continue"
	ArmTerminate = "terminate"
)

// Action is the refiner's verdict for the next iteration.
type Action string

// The two possible verdicts.
const (
	ActionContinue  Action = Action(ArmContinue)
	ActionTerminate Action = Action(ArmTerminate)
)

// Arm holds the Beta posterior for one decision arm. Alpha and Beta start
// at 1 (uniform prior) and only ever increase.
type Arm struct {
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta"`
}

// Mean returns the posterior mean alpha/(alpha+beta).
func (a Arm) Mean() float64 {
	return a.Alpha / (a.Alpha + a.Beta)
}

// Decision is the outcome of one continue/terminate draw.
type Decision struct {
	// Action is continue or terminate.
	Action Action `json:"action"`

	// Confidence is how decisively the winning arm won, in [0,1].
	// Hard stops (iteration or cost cap) are always 1.
	Confidence float64 `json:"confidence"`

	// Reasoning names the rule or winning arm behind the verdict.
	Reasoning string `json:"reasoning"`
}

// Refiner is the two-armed bandit. It is an explicitly owned object, not a
// hidden singleton: callers construct one per process (to share learning
// across runs) or one per run (for isolation, as the tests do).
//
// All state mutation, including random draws, happens under an internal
// mutex, so concurrent Decide and Update calls cannot lose updates.
type Refiner struct {
	mu     sync.Mutex
	arms   map[string]*Arm
	rng    *rand.Rand
	logger zerolog.Logger
}

// New returns a Refiner seeded for deterministic sampling. Both arms start
// with the uniform Beta(1,1) prior.
func New(seed int64, logger zerolog.Logger) *Refiner {
	return &Refiner{
		arms: map[string]*Arm{
			ArmContinue:  {Alpha: 1, Beta: 1},
			ArmTerminate: {Alpha: 1, Beta: 1},
		},
		rng:    rand.New(rand.NewSource(seed)), //nolint:gosec // Sampling, not credentials
		logger: logger,
	}
}

// Decide returns the verdict for the iteration described by ctx.
//
// Two hard stops short-circuit the bandit: hitting the iteration cap or
// the cost cap terminates with confidence 1. Otherwise one sample is drawn
// from each arm's posterior and the higher sample wins; repeated calls
// with the same context may legitimately differ, which is the exploration
// the bandit exists for.
func (r *Refiner) Decide(ctx domain.IterationContext) Decision {
	if ctx.CurrentIteration >= ctx.MaxIterations {
		return Decision{
			Action:     ActionTerminate,
			Confidence: 1,
			Reasoning:  fmt.Sprintf("iteration cap reached (%d/%d)", ctx.CurrentIteration, ctx.MaxIterations),
		}
	}
	if ctx.CostSoFar >= ctx.MaxCost {
		return Decision{
			Action:     ActionTerminate,
			Confidence: 1,
			Reasoning:  fmt.Sprintf("cost cap reached ($%.2f of $%.2f)", ctx.CostSoFar, ctx.MaxCost),
		}
	}

	r.mu.Lock()
	continueSample := sampleBeta(r.rng, r.arms[ArmContinue].Alpha, r.arms[ArmContinue].Beta)
	terminateSample := sampleBeta(r.rng, r.arms[ArmTerminate].Alpha, r.arms[ArmTerminate].Beta)
	r.mu.Unlock()

	winner, winning := ArmContinue, continueSample
	if terminateSample > continueSample {
		winner, winning = ArmTerminate, terminateSample
	}

	confidence := 0.0
	if larger := math.Max(continueSample, terminateSample); larger > 0 {
		confidence = math.Abs(continueSample-terminateSample) / larger
	}
	confidence = clamp(confidence, 0, 1)

	decision := Decision{
		Action:     Action(winner),
		Confidence: confidence,
		Reasoning:  fmt.Sprintf("%s arm sampled %.3f", winner, winning),
	}

	r.logger.Debug().
		Float64("continue_sample", continueSample).
		Float64("terminate_sample", terminateSample).
		Str("action", string(decision.Action)).
		Float64("confidence", decision.Confidence).
		Msg("refinement decision")

	return decision
}

// Update records an outcome observation for the named arm: alpha+1 on
// success, beta+1 on failure. Updates are serialized internally.
func (r *Refiner) Update(arm string, success bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.arms[arm]
	if !ok {
		return errors.Wrapf(errors.ErrUnknownArm, "arm %q", arm)
	}
	if success {
		a.Alpha++
	} else {
		a.Beta++
	}
	return nil
}

// ArmState returns a copy of the named arm's posterior, and whether the
// arm exists.
func (r *Refiner) ArmState(arm string) (Arm, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.arms[arm]
	if !ok {
		return Arm{}, false
	}
	return *a, true
}

// AdaptiveLimit computes the iteration ceiling for a run: more iterations
// for harder failures and for categories with a record of eventual
// success, fewer when the budget is thin. The result is always clamped to
// [constants.MinIterationLimit, constants.MaxIterationLimit] regardless of
// inputs. This function is independent of the bandit state.
func AdaptiveLimit(baseLimit, complexity int, successRate, costBudget float64) int {
	limit := baseLimit
	limit += (complexity - 5) / 2
	limit += int(math.Round(successRate * 4))
	if costBudget < 1 {
		limit--
	}

	if limit < constants.MinIterationLimit {
		return constants.MinIterationLimit
	}
	if limit > constants.MaxIterationLimit {
		return constants.MaxIterationLimit
	}
	return limit
}

// sampleBeta draws one sample from Beta(alpha, beta) as the ratio of two
// gamma draws.
func sampleBeta(rng *rand.Rand, alpha, beta float64) float64 {
	x := sampleGamma(rng, alpha)
	y := sampleGamma(rng, beta)
	if x+y == 0 {
		return 0.5
	}
	return x / (x + y)
}

// sampleGamma draws from Gamma(shape, 1) using the Marsaglia-Tsang squeeze
// method. Arms start at shape 1 and only grow, so shape >= 1 always holds
// and the boost branch for shape < 1 is unnecessary.
func sampleGamma(rng *rand.Rand, shape float64) float64 {
	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9*d)
	for {
		x := rng.NormFloat64()
		v := 1 + c*x
		if v <= 0 {
			continue
		}
		v = v * v * v
		u := rng.Float64()
		if u < 1-0.0331*x*x*x*x {
			return d * v
		}
		if math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return d * v
		}
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
