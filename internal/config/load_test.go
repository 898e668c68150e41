package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remedyhq/remedy/internal/constants"
)

func TestLoad_ReturnsDefaultsWhenNoConfigFile(t *testing.T) {
	// Change to a temp directory with no config files
	tempDir := t.TempDir()
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	err = os.Chdir(tempDir)
	require.NoError(t, err)
	defer func() {
		_ = os.Chdir(oldWd)
	}()

	cfg, err := Load(context.Background())
	require.NoError(t, err, "Load should not fail when no config file exists")
	require.NotNil(t, cfg, "Config should not be nil")

	// Verify defaults are applied
	assert.InDelta(t, 10.0, cfg.Reward.Success, 0, "should use default success weight")
	assert.InDelta(t, 100.0, cfg.Reward.FailurePenalty, 0, "should use default failure penalty")
	assert.Equal(t, constants.DefaultIterationLimit, cfg.Refiner.BaseIterationLimit, "should use default iteration limit")
	assert.Equal(t, constants.DefaultWorkersPerRole, cfg.Coordinator.Fixers, "should use default fixer count")
}

func TestLoadFromPaths_ProjectConfigOverridesGlobal(t *testing.T) {
	ctx := context.Background()

	// Create temp directories for configs
	globalDir := t.TempDir()
	projectDir := t.TempDir()

	// Write global config with refiner settings
	globalConfig := filepath.Join(globalDir, "config.yaml")
	err := os.WriteFile(globalConfig, []byte(`
refiner:
  base_iteration_limit: 8
  max_cost_per_run: 10
selector:
  low_complexity_cutoff: 3
`), 0o600)
	require.NoError(t, err)

	// Write project config that only overrides the iteration limit
	projectConfig := filepath.Join(projectDir, "config.yaml")
	err = os.WriteFile(projectConfig, []byte(`
refiner:
  base_iteration_limit: 12
`), 0o600)
	require.NoError(t, err)

	cfg, err := LoadFromPaths(ctx, projectConfig, globalConfig)
	require.NoError(t, err, "LoadFromPaths should succeed")

	// Project config overrides global for the shared key
	assert.Equal(t, 12, cfg.Refiner.BaseIterationLimit, "project config should override global")

	// Global config values that aren't overridden should persist
	assert.InDelta(t, 10.0, cfg.Refiner.MaxCostPerRun, 0, "global max_cost_per_run should be preserved")
	assert.Equal(t, 3, cfg.Selector.LowComplexityCutoff, "global low_complexity_cutoff should be preserved")
}

func TestLoadFromPaths_GlobalConfigOnly(t *testing.T) {
	ctx := context.Background()

	globalDir := t.TempDir()

	globalConfig := filepath.Join(globalDir, "config.yaml")
	err := os.WriteFile(globalConfig, []byte(`
reward:
  success: 20
  latency: -0.5
coordinator:
  analyzers: 4
`), 0o600)
	require.NoError(t, err)

	cfg, err := LoadFromPaths(ctx, "", globalConfig)
	require.NoError(t, err, "LoadFromPaths should succeed with only global config")

	assert.InDelta(t, 20.0, cfg.Reward.Success, 0, "should use global success weight")
	assert.InDelta(t, -0.5, cfg.Reward.Latency, 0, "should use global latency weight")
	assert.Equal(t, 4, cfg.Coordinator.Analyzers, "should use global analyzer count")
	assert.Equal(t, constants.DefaultWorkersPerRole, cfg.Coordinator.Fixers, "non-overridden keys keep defaults")
}

func TestLoad_EnvVarOverridesConfigFile(t *testing.T) {
	ctx := context.Background()

	// Create temp directory with a project config file
	tempDir := t.TempDir()
	remedyDir := filepath.Join(tempDir, ".remedy")
	err := os.MkdirAll(remedyDir, 0o750)
	require.NoError(t, err)

	configPath := filepath.Join(remedyDir, "config.yaml")
	err = os.WriteFile(configPath, []byte(`
refiner:
  base_iteration_limit: 8
`), 0o600)
	require.NoError(t, err)

	oldWd, err := os.Getwd()
	require.NoError(t, err)
	err = os.Chdir(tempDir)
	require.NoError(t, err)
	defer func() {
		_ = os.Chdir(oldWd)
	}()

	// Env var should take precedence over the config file
	t.Setenv("REMEDY_REFINER_BASE_ITERATION_LIMIT", "11")

	cfg, err := Load(ctx)
	require.NoError(t, err, "Load should succeed")

	assert.Equal(t, 11, cfg.Refiner.BaseIterationLimit, "env var should override config file")
}

func TestLoad_EnvVarMapping(t *testing.T) {
	ctx := context.Background()

	tempDir := t.TempDir()
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	err = os.Chdir(tempDir)
	require.NoError(t, err)
	defer func() {
		_ = os.Chdir(oldWd)
	}()

	tests := []struct {
		envVar   string
		value    string
		validate func(*testing.T, *Config)
	}{
		{
			envVar: "REMEDY_REWARD_FAILURE_PENALTY",
			value:  "250",
			validate: func(t *testing.T, c *Config) {
				assert.InDelta(t, 250.0, c.Reward.FailurePenalty, 0)
			},
		},
		{
			envVar: "REMEDY_SELECTOR_LOW_BUDGET_THRESHOLD",
			value:  "0.35",
			validate: func(t *testing.T, c *Config) {
				assert.InDelta(t, 0.35, c.Selector.LowBudgetThreshold, 0)
			},
		},
		{
			envVar: "REMEDY_REFINER_SEED",
			value:  "42",
			validate: func(t *testing.T, c *Config) {
				assert.Equal(t, int64(42), c.Refiner.Seed)
			},
		},
		{
			envVar: "REMEDY_COORDINATOR_VALIDATORS",
			value:  "5",
			validate: func(t *testing.T, c *Config) {
				assert.Equal(t, 5, c.Coordinator.Validators)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.envVar, func(t *testing.T) {
			t.Setenv(tt.envVar, tt.value)

			cfg, err := Load(ctx)
			require.NoError(t, err, "Load should succeed")
			tt.validate(t, cfg)
		})
	}
}

func TestLoadFromPaths_InvalidConfigFile(t *testing.T) {
	ctx := context.Background()

	tempDir := t.TempDir()

	configPath := filepath.Join(tempDir, "config.yaml")
	err := os.WriteFile(configPath, []byte(`
reward:
  success: 10
  invalid yaml here: [
`), 0o600)
	require.NoError(t, err)

	_, err = LoadFromPaths(ctx, configPath, "")
	require.Error(t, err, "LoadFromPaths should fail with invalid YAML")
	assert.Contains(t, err.Error(), "failed to read project config", "error should mention reading config")
}

func TestLoadFromPaths_ValidationFailure(t *testing.T) {
	ctx := context.Background()

	tempDir := t.TempDir()

	configPath := filepath.Join(tempDir, "config.yaml")
	err := os.WriteFile(configPath, []byte(`
refiner:
  base_iteration_limit: 50
`), 0o600)
	require.NoError(t, err)

	_, err = LoadFromPaths(ctx, configPath, "")
	require.Error(t, err, "LoadFromPaths should fail validation")
	assert.Contains(t, err.Error(), "base_iteration_limit must be between", "error should mention validation issue")
}

func TestPaths(t *testing.T) {
	assert.Equal(t, ".remedy", ProjectConfigDir(), "project config dir should be .remedy")
	assert.Equal(t, filepath.Join(".remedy", "config.yaml"), ProjectConfigPath(), "project config path")

	globalDir, err := GlobalConfigDir()
	require.NoError(t, err, "GlobalConfigDir should succeed")
	home, _ := os.UserHomeDir()
	assert.Equal(t, filepath.Join(home, ".remedy"), globalDir, "global config dir")

	globalPath, err := GlobalConfigPath()
	require.NoError(t, err, "GlobalConfigPath should succeed")
	assert.Equal(t, filepath.Join(home, ".remedy", "config.yaml"), globalPath, "global config path")
}

// TestConfig_Precedence_FullChain tests the complete precedence order:
// env > project > global > defaults
func TestConfig_Precedence_FullChain(t *testing.T) {
	ctx := context.Background()

	globalDir := t.TempDir()
	projectDir := t.TempDir()

	globalConfig := filepath.Join(globalDir, "config.yaml")
	err := os.WriteFile(globalConfig, []byte(`
refiner:
  base_iteration_limit: 6
  max_cost_per_run: 3
coordinator:
  analyzers: 1
`), 0o600)
	require.NoError(t, err)

	projectConfig := filepath.Join(projectDir, "config.yaml")
	err = os.WriteFile(projectConfig, []byte(`
refiner:
  base_iteration_limit: 9
`), 0o600)
	require.NoError(t, err)

	t.Setenv("REMEDY_REFINER_MAX_COST_PER_RUN", "7.5")

	cfg, err := LoadFromPaths(ctx, projectConfig, globalConfig)
	require.NoError(t, err, "LoadFromPaths should succeed")

	// env var beats both files
	assert.InDelta(t, 7.5, cfg.Refiner.MaxCostPerRun, 0, "env var should override config files")

	// project beats global
	assert.Equal(t, 9, cfg.Refiner.BaseIterationLimit, "project config should override global")

	// global beats defaults
	assert.Equal(t, 1, cfg.Coordinator.Analyzers, "global value should be preserved")

	// untouched keys keep defaults
	assert.Equal(t, constants.DefaultWorkersPerRole, cfg.Coordinator.Fixers, "default should survive the chain")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	mutate := func(fn func(*Config)) *Config {
		cfg := DefaultConfig()
		fn(cfg)
		return cfg
	}

	tests := []struct {
		name    string
		cfg     *Config
		wantErr string
	}{
		{
			name: "defaults are valid",
			cfg:  DefaultConfig(),
		},
		{
			name:    "nil config",
			cfg:     nil,
			wantErr: "config is nil",
		},
		{
			name:    "zero failure penalty",
			cfg:     mutate(func(c *Config) { c.Reward.FailurePenalty = 0 }),
			wantErr: "failure_penalty must be positive",
		},
		{
			name:    "negative simplicity cap",
			cfg:     mutate(func(c *Config) { c.Reward.SimplicityCap = -1 }),
			wantErr: "simplicity_cap cannot be negative",
		},
		{
			name:    "budget threshold at one",
			cfg:     mutate(func(c *Config) { c.Selector.LowBudgetThreshold = 1 }),
			wantErr: "low_budget_threshold must be in (0, 1)",
		},
		{
			name:    "success rate threshold at zero",
			cfg:     mutate(func(c *Config) { c.Selector.HighSuccessRateThreshold = 0 }),
			wantErr: "high_success_rate_threshold must be in (0, 1)",
		},
		{
			name:    "complexity cutoff above range",
			cfg:     mutate(func(c *Config) { c.Selector.LowComplexityCutoff = 11 }),
			wantErr: "low_complexity_cutoff must be between 1 and 10",
		},
		{
			name:    "iteration limit below floor",
			cfg:     mutate(func(c *Config) { c.Refiner.BaseIterationLimit = 2 }),
			wantErr: "base_iteration_limit must be between 3 and 15",
		},
		{
			name:    "zero cost budget",
			cfg:     mutate(func(c *Config) { c.Refiner.MaxCostPerRun = 0 }),
			wantErr: "max_cost_per_run must be positive",
		},
		{
			name:    "negative worker count",
			cfg:     mutate(func(c *Config) { c.Coordinator.Fixers = -1 }),
			wantErr: "worker counts cannot be negative",
		},
		{
			name: "all roles empty",
			cfg: mutate(func(c *Config) {
				c.Coordinator.Analyzers = 0
				c.Coordinator.Fixers = 0
				c.Coordinator.Validators = 0
			}),
			wantErr: "at least one worker",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Validate(tt.cfg)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
