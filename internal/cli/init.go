// Package cli provides the command-line interface for remedy.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/remedyhq/remedy/internal/config"
	"github.com/remedyhq/remedy/internal/constants"
	"github.com/remedyhq/remedy/internal/errors"
)

// InitFlags holds flags specific to the init command.
type InitFlags struct {
	// Project writes the starter config to .remedy/config.yaml in the
	// working directory instead of the global location.
	Project bool
	// Force overwrites an existing config file.
	Force bool
}

// newInitCmd creates the 'init' command that writes a starter config file.
func newInitCmd(flags *InitFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a starter configuration file",
		Long: `Write a starter configuration file populated with the built-in defaults.

By default the file is written to ~/.remedy/config.yaml. With --project the
file is written to .remedy/config.yaml in the current directory, where it
overrides the global config for this repository.

Examples:
  remedy init             # write ~/.remedy/config.yaml
  remedy init --project   # write .remedy/config.yaml
  remedy init --force     # overwrite an existing config file`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd.OutOrStdout(), flags)
		},
		SilenceUsage: true,
	}
}

// AddInitCommand adds the init command to the root command.
func AddInitCommand(rootCmd *cobra.Command) {
	flags := &InitFlags{}
	cmd := newInitCmd(flags)
	cmd.Flags().BoolVar(&flags.Project, "project", false, "write to .remedy/config.yaml in the current directory")
	cmd.Flags().BoolVar(&flags.Force, "force", false, "overwrite an existing config file")
	rootCmd.AddCommand(cmd)
}

func runInit(out io.Writer, flags *InitFlags) error {
	path, err := initTargetPath(flags.Project)
	if err != nil {
		return err
	}

	if !flags.Force {
		if _, err := os.Stat(path); err == nil {
			return errors.Wrapf(errors.ErrConfigExists, "%s (use --force to overwrite)", path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}

	data, err := yaml.Marshal(config.DefaultConfig())
	if err != nil {
		return errors.Wrap(err, "failed to marshal default config")
	}

	header := []byte("# remedy configuration. Values omitted here fall back to built-in\n" +
		"# defaults; REMEDY_* environment variables override everything.\n")
	if err := os.WriteFile(path, append(header, data...), 0o600); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}

	fmt.Fprintf(out, "Wrote %s\n", path)
	return nil
}

func initTargetPath(project bool) (string, error) {
	if project {
		return filepath.Join(constants.RemedyHome, constants.ConfigFileName), nil
	}
	return config.GlobalConfigPath()
}
