//go:build !linux && !darwin && !freebsd

package commands

import "errors"

type diskUsage struct {
	Available   uint64
	Total       uint64
	UsedPercent float64
}

func getDiskUsage(string) (*diskUsage, error) {
	return nil, errors.New("disk usage is only reported on unix game hosts")
}
