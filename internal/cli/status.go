// Package cli provides the command-line interface for remedy.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/remedyhq/remedy/internal/domain"
	"github.com/remedyhq/remedy/internal/errors"
	"github.com/remedyhq/remedy/internal/governor"
)

// statusReport is the machine-readable form of the status output.
type statusReport struct {
	MaxConcurrentAgents int                   `json:"max_concurrent_agents"`
	QueueTimeoutMs      int64                 `json:"queue_timeout_ms"`
	Stats               *domain.ResourceStats `json:"stats,omitempty"`
	StatsError          string                `json:"stats_error,omitempty"`
	CanIncrease         *bool                 `json:"can_increase,omitempty"`
	RecommendedAgents   *int                  `json:"recommended_agents,omitempty"`
}

// newStatusCmd creates the 'status' command showing governor configuration
// and the current concurrency recommendation.
func newStatusCmd(global *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show concurrency limits and resource headroom",
		Long: `Show the governor's effective configuration, a live resource snapshot,
and the advisory concurrency recommendation derived from it.

Resource snapshots require Linux; on other platforms only the configured
limits are shown.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd.Context(), cmd.OutOrStdout(), global)
		},
		SilenceUsage: true,
	}
}

// AddStatusCommand adds the status command to the root command.
func AddStatusCommand(rootCmd *cobra.Command, global *GlobalFlags) {
	rootCmd.AddCommand(newStatusCmd(global))
}

func runStatus(ctx context.Context, out io.Writer, global *GlobalFlags) error {
	cfg, err := governor.ConfigFromEnv()
	if err != nil {
		return err
	}

	gov := governor.New(cfg, GetLogger())
	defer gov.Close()

	report := statusReport{
		MaxConcurrentAgents: cfg.MaxConcurrentAgents,
		QueueTimeoutMs:      cfg.QueueTimeout.Milliseconds(),
	}

	if stats, err := (governor.SysinfoProvider{}).Snapshot(ctx); err != nil {
		report.StatsError = err.Error()
	} else {
		canIncrease := gov.CanIncreaseConcurrency(stats)
		recommended := gov.RecommendConcurrency(stats)
		report.Stats = &stats
		report.CanIncrease = &canIncrease
		report.RecommendedAgents = &recommended
	}

	if global.Output == OutputJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal status")
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}

	fmt.Fprintf(out, "Max concurrent agents: %d\n", report.MaxConcurrentAgents)
	fmt.Fprintf(out, "Queue timeout:         %dms\n", report.QueueTimeoutMs)
	if report.Stats == nil {
		fmt.Fprintf(out, "Resource snapshot:     unavailable (%s)\n", report.StatsError)
		return nil
	}
	fmt.Fprintf(out, "CPU:                   %.1f%%\n", report.Stats.CPUPercent)
	fmt.Fprintf(out, "Memory:                %.1f%%\n", report.Stats.MemoryPercent)
	fmt.Fprintf(out, "Processes:             %d\n", report.Stats.PIDs)
	fmt.Fprintf(out, "Headroom to scale up:  %v\n", *report.CanIncrease)
	fmt.Fprintf(out, "Recommended agents:    %d\n", *report.RecommendedAgents)
	return nil
}
