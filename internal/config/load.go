package config

import (
	"context"
	stderrors "errors"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/remedyhq/remedy/internal/constants"
	"github.com/remedyhq/remedy/internal/errors"
)

// newViperInstance creates a new Viper instance with standard remedy
// configuration: defaults, REMEDY_ env prefix, and key replacer.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// isConfigNotFoundError returns true if the error is a viper config file
// not found error. Missing config files are expected, not fatal.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var configNotFoundErr viper.ConfigFileNotFoundError
	return stderrors.As(err, &configNotFoundErr)
}

// Load reads configuration from all available sources with proper precedence.
// Configuration is loaded in the following order (highest precedence first):
//  1. Environment variables (REMEDY_* prefix)
//  2. Project config (.remedy/config.yaml)
//  3. Global config (~/.remedy/config.yaml)
//  4. Built-in defaults
//
// The function returns an error only for actual configuration problems,
// not for missing config files.
func Load(ctx context.Context) (*Config, error) {
	v := newViperInstance()

	if err := loadGlobalConfig(v); err != nil {
		return nil, err
	}
	if err := loadProjectConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	logger := zerolog.Ctx(ctx).With().Str("component", "config").Logger()
	logger.Debug().
		Float64("reward.success", cfg.Reward.Success).
		Int("refiner.base_iteration_limit", cfg.Refiner.BaseIterationLimit).
		Int("coordinator.fixers", cfg.Coordinator.Fixers).
		Msg("configuration loaded")

	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// LoadFromPaths loads configuration from explicit file paths instead of the
// conventional locations. Either path may be empty to skip that layer.
// Environment variables and defaults still apply with the standard precedence.
// This is primarily useful for testing the merge behavior.
func LoadFromPaths(ctx context.Context, projectPath, globalPath string) (*Config, error) {
	v := newViperInstance()

	if globalPath != "" {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) {
			return nil, errors.Wrap(err, "failed to read global config file")
		}
	}

	if projectPath != "" {
		v.SetConfigFile(projectPath)
		if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) {
			return nil, errors.Wrap(err, "failed to read project config file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	zerolog.Ctx(ctx).Debug().
		Str("project_config", projectPath).
		Str("global_config", globalPath).
		Msg("configuration loaded from explicit paths")

	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// loadGlobalConfig attempts to load ~/.remedy/config.yaml. Returns nil if
// the file doesn't exist or the home directory cannot be determined.
func loadGlobalConfig(v *viper.Viper) error {
	path, err := GlobalConfigPath()
	if err != nil {
		return nil //nolint:nilerr // No home dir means no global config; not an error
	}
	if _, statErr := os.Stat(path); statErr != nil {
		return nil //nolint:nilerr // Missing global config is expected
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrap(err, "failed to read global config file")
	}
	return nil
}

// loadProjectConfig merges .remedy/config.yaml from the working directory
// over whatever is already loaded. Returns nil if the file doesn't exist.
func loadProjectConfig(v *viper.Viper) error {
	path := ProjectConfigPath()
	if _, err := os.Stat(path); err != nil {
		return nil //nolint:nilerr // Missing project config is expected
	}

	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrap(err, "failed to read project config file")
	}
	return nil
}

// viperDecoderOption returns the decoder options for Viper unmarshal.
// This configures mapstructure to handle time.Duration conversion from strings.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	)
}
