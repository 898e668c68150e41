// Package reward converts raw attempt metrics into the scalar reward that
// drives the refinement bandit.
//
// Import rules:
//   - CAN import: internal/domain, std lib
//   - MUST NOT import: other internal packages
package reward

import (
	"fmt"
	"math"
	"sync"

	"github.com/remedyhq/remedy/internal/domain"
)

// Weights are the tunable coefficients of the reward function. Cost and
// latency weights are negative: spending more always lowers the reward.
type Weights struct {
	// Success is added when the attempt made CI green.
	Success float64 `json:"success"`

	// FailurePenalty is subtracted when the attempt failed. It is large so
	// a failed attempt scores below any successful one with the same
	// efficiency profile.
	FailurePenalty float64 `json:"failure_penalty"`

	// Cost scales the dollar cost term. Must be negative.
	Cost float64 `json:"cost"`

	// Latency scales the latency term (per 100ms). Must be negative.
	Latency float64 `json:"latency"`

	// Quality scales the optional 0-100 code quality signal.
	Quality float64 `json:"quality"`

	// Simplicity scales the diff-size penalty.
	Simplicity float64 `json:"simplicity"`

	// SimplicityCap bounds the diff-size penalty so arbitrarily large
	// diffs cannot dominate the score.
	SimplicityCap float64 `json:"simplicity_cap"`
}

// DefaultWeights returns the coefficients used when no tuning is applied.
func DefaultWeights() Weights {
	return Weights{
		Success:        10,
		FailurePenalty: 100,
		Cost:           -2,
		Latency:        -0.1,
		Quality:        2,
		Simplicity:     1,
		SimplicityCap:  3,
	}
}

// Overrides is a partial weight update. Nil fields keep their current
// value, so callers can tune a single coefficient without restating the
// rest.
type Overrides struct {
	Success        *float64
	FailurePenalty *float64
	Cost           *float64
	Latency        *float64
	Quality        *float64
	Simplicity     *float64
	SimplicityCap  *float64
}

// Term is one line of a reward explanation.
type Term struct {
	// Name identifies the term: outcome, cost, latency, quality, simplicity.
	Name string `json:"name"`

	// Value is the term's signed contribution to the reward.
	Value float64 `json:"value"`

	// Detail describes the inputs the term was computed from.
	Detail string `json:"detail"`
}

// Calculator scores completed attempts. Weight updates are serialized with
// a mutex so tuning can happen while attempts are being scored.
type Calculator struct {
	mu      sync.RWMutex
	weights Weights
}

// NewCalculator returns a Calculator with the given weights.
func NewCalculator(w Weights) *Calculator {
	return &Calculator{weights: w}
}

// SetWeights applies a partial weight override. Only non-nil fields change.
func (c *Calculator) SetWeights(o Overrides) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if o.Success != nil {
		c.weights.Success = *o.Success
	}
	if o.FailurePenalty != nil {
		c.weights.FailurePenalty = *o.FailurePenalty
	}
	if o.Cost != nil {
		c.weights.Cost = *o.Cost
	}
	if o.Latency != nil {
		c.weights.Latency = *o.Latency
	}
	if o.Quality != nil {
		c.weights.Quality = *o.Quality
	}
	if o.Simplicity != nil {
		c.weights.Simplicity = *o.Simplicity
	}
	if o.SimplicityCap != nil {
		c.weights.SimplicityCap = *o.SimplicityCap
	}
}

// Weights returns a copy of the current coefficients.
func (c *Calculator) Weights() Weights {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.weights
}

// Score converts metrics into a scalar reward, rounded to two decimals.
func (c *Calculator) Score(metrics domain.AttemptMetrics) float64 {
	total := 0.0
	for _, term := range c.Explain(metrics) {
		total += term.Value
	}
	return round2(total)
}

// Explain returns the per-term breakdown of the reward. Score sums exactly
// these terms, so the explanation can never drift from the score.
func (c *Calculator) Explain(metrics domain.AttemptMetrics) []Term {
	c.mu.RLock()
	w := c.weights
	c.mu.RUnlock()

	outcome := Term{Name: "outcome"}
	if metrics.Success {
		outcome.Value = w.Success
		outcome.Detail = "attempt succeeded"
	} else {
		outcome.Value = -w.FailurePenalty
		outcome.Detail = "attempt failed"
	}

	terms := []Term{
		outcome,
		{
			Name:   "cost",
			Value:  w.Cost * metrics.Cost,
			Detail: fmt.Sprintf("$%.4f spent", metrics.Cost),
		},
		{
			Name:   "latency",
			Value:  w.Latency * float64(metrics.LatencyMs) / 100,
			Detail: fmt.Sprintf("%dms elapsed", metrics.LatencyMs),
		},
	}

	quality := Term{Name: "quality", Detail: "no quality signal"}
	if metrics.CodeQuality != nil {
		quality.Value = w.Quality * *metrics.CodeQuality / 100
		quality.Detail = fmt.Sprintf("code quality %.0f/100", *metrics.CodeQuality)
	}
	terms = append(terms, quality)

	simplicity := Term{Name: "simplicity", Detail: "no diff measured"}
	if metrics.DiffSize != nil {
		penalty := math.Min(float64(*metrics.DiffSize)/100, w.SimplicityCap)
		simplicity.Value = -w.Simplicity * penalty
		simplicity.Detail = fmt.Sprintf("%d lines changed", *metrics.DiffSize)
	}
	terms = append(terms, simplicity)

	return terms
}

// round2 rounds v to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
