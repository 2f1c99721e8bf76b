package commands

import (
	"os"

	log "github.com/sirupsen/logrus"

	"gamekeeper/internal/ui"
)

// RunWatch runs the game update watcher until a shutdown signal or until
// UPDATE_AUTO_RESTART is turned off in the config file.
func RunWatch() {
	live := mustLoadLive()
	cfg := live.Current()

	if !cfg.AutoRestart {
		ui.ShowWarning("UPDATE_AUTO_RESTART is off, nothing to watch")
		return
	}
	w, err := newWatcher(cfg, live.AutoRestart)
	if err != nil {
		ui.ShowError("Automatic restarts are not configured", err)
		os.Exit(1)
	}

	ctx, stop := signalContext()
	defer stop()
	if err := w.Run(ctx); err != nil {
		log.Errorf("watch stopped: %v", err)
		os.Exit(1)
	}
}
