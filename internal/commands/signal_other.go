//go:build windows

package commands

import "os"

// SIGTERM is not delivered on Windows.
var shutdownSignals = []os.Signal{os.Interrupt}
