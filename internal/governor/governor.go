package governor

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/remedyhq/remedy/internal/domain"
	"github.com/remedyhq/remedy/internal/errors"
)

// StatsProvider supplies resource snapshots. The governor polls it at the
// health-check interval and never owns the snapshots it receives.
type StatsProvider interface {
	Snapshot(ctx context.Context) (domain.ResourceStats, error)
}

// Governor is the process-wide admission controller. Construct exactly
// one per process; its configuration never changes after construction.
type Governor struct {
	cfg    Config
	sem    *semaphore.Weighted
	logger zerolog.Logger

	mu     sync.Mutex
	closed bool
}

// New returns a Governor enforcing cfg.
func New(cfg Config, logger zerolog.Logger) *Governor {
	return &Governor{
		cfg:    cfg,
		sem:    semaphore.NewWeighted(int64(cfg.MaxConcurrentAgents)),
		logger: logger,
	}
}

// Config returns the immutable configuration.
func (g *Governor) Config() Config {
	return g.cfg
}

// Acquire waits for a concurrency slot, up to the queue timeout. On
// success it returns a release function that must be called exactly once
// when the repair attempt finishes. A request that outlives the timeout is
// rejected with ErrAdmissionTimeout and leaves no reservation behind; a
// canceled caller context surfaces as the context's own error.
func (g *Governor) Acquire(ctx context.Context) (func(), error) {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return nil, errors.ErrGovernorClosed
	}
	g.mu.Unlock()

	queueCtx, cancel := context.WithTimeout(ctx, g.cfg.QueueTimeout)
	defer cancel()

	if err := g.sem.Acquire(queueCtx, 1); err != nil {
		// Distinguish the caller giving up from the queue timing out.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		g.logger.Warn().
			Dur("queue_timeout", g.cfg.QueueTimeout).
			Msg("admission request timed out")
		return nil, errors.Wrapf(errors.ErrAdmissionTimeout, "waited %s", g.cfg.QueueTimeout)
	}

	var once sync.Once
	return func() {
		once.Do(func() { g.sem.Release(1) })
	}, nil
}

// Close rejects all future admission requests. Slots already granted stay
// valid until released.
func (g *Governor) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
}

// CanIncreaseConcurrency reports whether the host has headroom for more
// agents: every metric must sit below its warning threshold. A single
// metric at or above warning vetoes the increase.
func (g *Governor) CanIncreaseConcurrency(stats domain.ResourceStats) bool {
	th := g.cfg.Thresholds
	return stats.CPUPercent < th.CPUWarningPercent &&
		stats.MemoryPercent < th.MemoryWarningPercent &&
		stats.PIDs < th.PIDWarningCount
}

// RecommendConcurrency advises a concurrency level from a snapshot:
// 1 when any metric exceeds its critical threshold, 2 when any exceeds
// warning but none critical, 3 otherwise. Purely advisory; it never
// changes the configured cap.
func (g *Governor) RecommendConcurrency(stats domain.ResourceStats) int {
	th := g.cfg.Thresholds
	switch {
	case stats.CPUPercent > th.CPUCriticalPercent,
		stats.MemoryPercent > th.MemoryCriticalPercent,
		stats.PIDs > th.PIDCriticalCount:
		return 1
	case stats.CPUPercent > th.CPUWarningPercent,
		stats.MemoryPercent > th.MemoryWarningPercent,
		stats.PIDs > th.PIDWarningCount:
		return 2
	default:
		return 3
	}
}

// Poll samples the provider at the health-check interval until ctx is
// done, logging the concurrency recommendation for each snapshot.
// Provider errors degrade to a skipped sample rather than stopping the
// loop: missing signals must not break admission control.
func (g *Governor) Poll(ctx context.Context, provider StatsProvider) {
	ticker := time.NewTicker(g.cfg.HealthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats, err := provider.Snapshot(ctx)
			if err != nil {
				g.logger.Debug().Err(err).Msg("resource snapshot unavailable")
				continue
			}
			g.logger.Info().
				Float64("cpu_percent", stats.CPUPercent).
				Float64("memory_percent", stats.MemoryPercent).
				Int("pids", stats.PIDs).
				Int("recommended_concurrency", g.RecommendConcurrency(stats)).
				Bool("can_increase", g.CanIncreaseConcurrency(stats)).
				Msg("resource health check")
		}
	}
}
