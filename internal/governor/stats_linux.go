//go:build linux

package governor

import (
	"context"
	"runtime"

	"golang.org/x/sys/unix"

	"github.com/remedyhq/remedy/internal/domain"
	"github.com/remedyhq/remedy/internal/errors"
)

// SysinfoProvider reads resource snapshots from the kernel via sysinfo(2).
// CPU utilization is approximated from the 1-minute load average scaled by
// core count, which is coarse but dependency-free and good enough for
// threshold advice.
type SysinfoProvider struct{}

// Snapshot implements StatsProvider.
func (SysinfoProvider) Snapshot(_ context.Context) (domain.ResourceStats, error) {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return domain.ResourceStats{}, errors.Wrap(err, "sysinfo")
	}

	// Loads are fixed-point with a 16-bit fractional part.
	const loadScale = 1 << 16
	load1 := float64(info.Loads[0]) / loadScale
	cpuPercent := load1 / float64(runtime.NumCPU()) * 100
	if cpuPercent > 100 {
		cpuPercent = 100
	}

	memPercent := 0.0
	if info.Totalram > 0 {
		used := float64(info.Totalram - info.Freeram)
		memPercent = used / float64(info.Totalram) * 100
	}

	return domain.ResourceStats{
		CPUPercent:    cpuPercent,
		MemoryPercent: memPercent,
		PIDs:          int(info.Procs),
	}, nil
}
