// Package cli provides the command-line interface for remedy.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/remedyhq/remedy/internal/config"
	"github.com/remedyhq/remedy/internal/errors"
)

// ConfigShowFlags holds flags specific to the config show command.
type ConfigShowFlags struct {
	// OutputFormat specifies the output format (yaml or json).
	OutputFormat string
}

// newConfigCmd creates the parent 'config' command.
func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Inspect remedy configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		SilenceUsage: true,
	}
}

// AddConfigCommand adds the config command group to the root command.
func AddConfigCommand(rootCmd *cobra.Command) {
	configCmd := newConfigCmd()
	AddConfigShowCommand(configCmd)
	rootCmd.AddCommand(configCmd)
}

// newConfigShowCmd creates the 'config show' subcommand.
func newConfigShowCmd(flags *ConfigShowFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display effective configuration",
		Long: `Display the effective remedy configuration after merging all sources.

Precedence, highest first:
  - REMEDY_* environment variables
  - .remedy/config.yaml in the current directory
  - ~/.remedy/config.yaml
  - built-in defaults

Examples:
  remedy config show                  # YAML output
  remedy config show --output json    # JSON output`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd.Context(), cmd.OutOrStdout(), flags)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVarP(&flags.OutputFormat, "output", "o", "yaml", "output format (yaml or json)")

	return cmd
}

// AddConfigShowCommand adds the show subcommand to the config command.
func AddConfigShowCommand(configCmd *cobra.Command) {
	flags := &ConfigShowFlags{}
	configCmd.AddCommand(newConfigShowCmd(flags))
}

func runConfigShow(ctx context.Context, out io.Writer, flags *ConfigShowFlags) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	switch flags.OutputFormat {
	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config")
		}
		_, err = out.Write(data)
		return err
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal config")
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	default:
		return errors.Wrapf(errors.ErrInvalidOutputFormat, "%q must be yaml or json", flags.OutputFormat)
	}
}
