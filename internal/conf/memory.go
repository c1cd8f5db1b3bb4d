package conf

import (
	"log/slog"

	"github.com/shirou/gopsutil/v3/mem"
)

// fallbackMemoryCeiling is used when system memory cannot be queried.
const fallbackMemoryCeiling = int64(1) << 30 // 1 GiB

// memoryCeilingFraction is the share of total system memory the frame
// buffer may occupy when no explicit ceiling is configured.
const memoryCeilingFraction = 4

// DefaultMemoryCeiling derives a frame memory ceiling from total system
// memory. It is used when loop.memorymax is zero.
func DefaultMemoryCeiling() int64 {
	vmStat, err := mem.VirtualMemory()
	if err != nil || vmStat.Total == 0 {
		slog.Warn("unable to query system memory, using fallback memory ceiling",
			"fallback_bytes", fallbackMemoryCeiling, "error", err)
		return fallbackMemoryCeiling
	}
	return int64(vmStat.Total / memoryCeilingFraction)
}
