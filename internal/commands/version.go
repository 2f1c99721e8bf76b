package commands

import (
	"fmt"
	"runtime"

	"gamekeeper/internal/output"
)

// Version information, set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

type versionInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Go      string `json:"go"`
}

func RunVersion() {
	info := versionInfo{Version: Version, Commit: Commit, Date: Date, Go: runtime.Version()}
	output.Print(info, func() {
		fmt.Printf("gamekeeper version %s (commit %s, built %s, %s)\n", Version, Commit, Date, info.Go)
	})
}
