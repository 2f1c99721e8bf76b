//go:build !windows

package commands

import (
	"os"
	"syscall"
)

// shutdownSignals stop the updater and the server. The panel sends SIGTERM
// when the container is stopped.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}
