// Package governor provides process-wide admission control for repair
// agents: a fixed concurrency cap enforced through a timed admission
// queue, plus resource-based concurrency advice.
//
// Import rules:
//   - CAN import: internal/constants, internal/domain, internal/errors, std lib
//   - MUST NOT import: other internal packages
package governor

import (
	"os"
	"strconv"
	"time"

	"github.com/remedyhq/remedy/internal/constants"
	"github.com/remedyhq/remedy/internal/errors"
)

// Config is the governor's process-wide configuration. It is read once at
// startup and immutable afterwards.
type Config struct {
	// MaxConcurrentAgents caps simultaneously running repair agents.
	MaxConcurrentAgents int

	// QueueTimeout is how long an admission request may queue before
	// being rejected.
	QueueTimeout time.Duration

	// HealthCheckInterval is the resource polling cadence.
	HealthCheckInterval time.Duration

	// Thresholds are the resource cutoffs for concurrency advice.
	Thresholds Thresholds
}

// Thresholds holds the four resource cutoff pairs.
type Thresholds struct {
	CPUWarningPercent     float64
	CPUCriticalPercent    float64
	MemoryWarningPercent  float64
	MemoryCriticalPercent float64
	PIDWarningCount       int
	PIDCriticalCount      int
}

// DefaultConfig returns the built-in governor configuration.
func DefaultConfig() Config {
	return Config{
		MaxConcurrentAgents: constants.DefaultMaxConcurrentAgents,
		QueueTimeout:        constants.DefaultQueueTimeout,
		HealthCheckInterval: constants.DefaultHealthCheckInterval,
		Thresholds: Thresholds{
			CPUWarningPercent:     constants.DefaultCPUWarningPercent,
			CPUCriticalPercent:    constants.DefaultCPUCriticalPercent,
			MemoryWarningPercent:  constants.DefaultMemoryWarningPercent,
			MemoryCriticalPercent: constants.DefaultMemoryCriticalPercent,
			PIDWarningCount:       constants.DefaultPIDWarningCount,
			PIDCriticalCount:      constants.DefaultPIDCriticalCount,
		},
	}
}

// Environment variable names for governor overrides.
const (
	EnvMaxConcurrentAgents = "REMEDY_MAX_CONCURRENT_AGENTS"
	EnvQueueTimeoutMs      = "REMEDY_QUEUE_TIMEOUT_MS"
	EnvHealthCheckMs       = "REMEDY_HEALTH_CHECK_INTERVAL_MS"
	EnvCPUWarning          = "REMEDY_CPU_WARNING_PERCENT"
	EnvCPUCritical         = "REMEDY_CPU_CRITICAL_PERCENT"
	EnvMemoryWarning       = "REMEDY_MEMORY_WARNING_PERCENT"
	EnvMemoryCritical      = "REMEDY_MEMORY_CRITICAL_PERCENT"
	EnvPIDWarning          = "REMEDY_PID_WARNING_COUNT"
	EnvPIDCritical         = "REMEDY_PID_CRITICAL_COUNT"
)

// ConfigFromEnv builds the governor configuration from the environment,
// falling back to defaults for unset variables. Malformed values are
// reported rather than silently ignored.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	var err error
	if cfg.MaxConcurrentAgents, err = envInt(EnvMaxConcurrentAgents, cfg.MaxConcurrentAgents); err != nil {
		return Config{}, err
	}
	if cfg.QueueTimeout, err = envMillis(EnvQueueTimeoutMs, cfg.QueueTimeout); err != nil {
		return Config{}, err
	}
	if cfg.HealthCheckInterval, err = envMillis(EnvHealthCheckMs, cfg.HealthCheckInterval); err != nil {
		return Config{}, err
	}
	th := &cfg.Thresholds
	if th.CPUWarningPercent, err = envFloat(EnvCPUWarning, th.CPUWarningPercent); err != nil {
		return Config{}, err
	}
	if th.CPUCriticalPercent, err = envFloat(EnvCPUCritical, th.CPUCriticalPercent); err != nil {
		return Config{}, err
	}
	if th.MemoryWarningPercent, err = envFloat(EnvMemoryWarning, th.MemoryWarningPercent); err != nil {
		return Config{}, err
	}
	if th.MemoryCriticalPercent, err = envFloat(EnvMemoryCritical, th.MemoryCriticalPercent); err != nil {
		return Config{}, err
	}
	if th.PIDWarningCount, err = envInt(EnvPIDWarning, th.PIDWarningCount); err != nil {
		return Config{}, err
	}
	if th.PIDCriticalCount, err = envInt(EnvPIDCritical, th.PIDCriticalCount); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.MaxConcurrentAgents < 1 {
		return errors.Wrapf(errors.ErrConfigInvalidGovernor,
			"max concurrent agents must be at least 1, got %d", c.MaxConcurrentAgents)
	}
	if c.QueueTimeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidGovernor,
			"queue timeout must be positive, got %s", c.QueueTimeout)
	}
	if c.HealthCheckInterval <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidGovernor,
			"health check interval must be positive, got %s", c.HealthCheckInterval)
	}
	th := c.Thresholds
	if th.CPUWarningPercent >= th.CPUCriticalPercent {
		return errors.Wrapf(errors.ErrConfigInvalidGovernor,
			"cpu warning %.0f%% must be below critical %.0f%%", th.CPUWarningPercent, th.CPUCriticalPercent)
	}
	if th.MemoryWarningPercent >= th.MemoryCriticalPercent {
		return errors.Wrapf(errors.ErrConfigInvalidGovernor,
			"memory warning %.0f%% must be below critical %.0f%%", th.MemoryWarningPercent, th.MemoryCriticalPercent)
	}
	if th.PIDWarningCount >= th.PIDCriticalCount {
		return errors.Wrapf(errors.ErrConfigInvalidGovernor,
			"pid warning %d must be below critical %d", th.PIDWarningCount, th.PIDCriticalCount)
	}
	return nil
}

func envInt(name string, fallback int) (int, error) {
	raw, ok := os.LookupEnv(name)
	if !ok || raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrConfigInvalidGovernor, "%s=%q is not an integer", name, raw)
	}
	return v, nil
}

func envFloat(name string, fallback float64) (float64, error) {
	raw, ok := os.LookupEnv(name)
	if !ok || raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrConfigInvalidGovernor, "%s=%q is not a number", name, raw)
	}
	return v, nil
}

func envMillis(name string, fallback time.Duration) (time.Duration, error) {
	ms, err := envInt(name, int(fallback/time.Millisecond))
	if err != nil {
		return 0, err
	}
	return time.Duration(ms) * time.Millisecond, nil
}
