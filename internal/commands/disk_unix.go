//go:build linux || darwin || freebsd

package commands

import (
	"fmt"
	"syscall"
)

// diskUsage describes the filesystem holding the game directory.
type diskUsage struct {
	Available   uint64
	Total       uint64
	UsedPercent float64
}

func getDiskUsage(path string) (*diskUsage, error) {
	var st syscall.Statfs_t
	if err := syscall.Statfs(path, &st); err != nil {
		return nil, fmt.Errorf("statfs %s: %w", path, err)
	}
	bsize := uint64(st.Bsize)
	usage := &diskUsage{
		Available: uint64(st.Bavail) * bsize,
		Total:     uint64(st.Blocks) * bsize,
	}
	if usage.Total > 0 {
		// blocks reserved for root count as used, matching df
		usage.UsedPercent = float64(usage.Total-usage.Available) / float64(usage.Total) * 100
	}
	return usage, nil
}
