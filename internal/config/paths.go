package config

import (
	"os"
	"path/filepath"

	"github.com/remedyhq/remedy/internal/constants"
	"github.com/remedyhq/remedy/internal/errors"
)

// GlobalConfigDir returns the path to the global remedy configuration
// directory, typically ~/.remedy on Unix systems.
func GlobalConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, constants.RemedyHome), nil
}

// ProjectConfigDir returns the relative path to the project configuration
// directory: .remedy relative to the project root.
func ProjectConfigDir() string {
	return constants.RemedyHome
}

// GlobalConfigPath returns the full path to the global configuration file,
// typically ~/.remedy/config.yaml.
func GlobalConfigPath() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.ConfigFileName), nil
}

// ProjectConfigPath returns the relative path to the project configuration
// file: .remedy/config.yaml.
func ProjectConfigPath() string {
	return filepath.Join(ProjectConfigDir(), constants.ConfigFileName)
}
