//go:build !linux

package governor

import (
	"context"
	stderrors "errors"

	"github.com/remedyhq/remedy/internal/domain"
)

// errStatsUnsupported reports that no host stats source exists on this
// platform. The governor treats it as a skipped sample.
var errStatsUnsupported = stderrors.New("resource stats not supported on this platform")

// SysinfoProvider is a stub on non-Linux platforms; Snapshot always
// returns an error, which Poll degrades to a skipped sample.
type SysinfoProvider struct{}

// Snapshot implements StatsProvider.
func (SysinfoProvider) Snapshot(_ context.Context) (domain.ResourceStats, error) {
	return domain.ResourceStats{}, errStatsUnsupported
}
