package commands

import (
	"context"
	"os"
	"os/signal"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"

	"gamekeeper/internal/addon"
	"gamekeeper/internal/config"
	"gamekeeper/internal/fetch"
	"gamekeeper/internal/ledger"
	"gamekeeper/internal/logging"
	"gamekeeper/internal/notify"
	"gamekeeper/internal/panel"
	"gamekeeper/internal/steamnews"
	"gamekeeper/internal/ui"
	"gamekeeper/internal/watch"
)

// loadConfigFunc is the config loader, overridable in tests.
var (
	loadConfigFunc = config.Load
	loadLiveFunc   = loadLive
)

// mustLoadConfig loads the config, initialises logging from it and reports
// any values that were adjusted while loading.
func mustLoadConfig() config.Config {
	cfg, err := loadConfigFunc()
	if err != nil {
		ui.ShowError("Failed to load configuration", err)
		os.Exit(1)
	}
	initLogging(cfg)
	return cfg
}

// mustLoadLive is mustLoadConfig for long-running commands: the returned
// Live re-reads the config file when it changes.
func mustLoadLive() *config.Live {
	live, err := loadLiveFunc()
	if err != nil {
		ui.ShowError("Failed to load configuration", err)
		os.Exit(1)
	}
	initLogging(live.Current())
	live.Watch()
	return live
}

func loadLive() (*config.Live, error) {
	v, err := config.New()
	if err != nil {
		return nil, err
	}
	return config.NewLive(v)
}

func initLogging(cfg config.Config) {
	if err := logging.Init(cfg.LogLevel, cfg.LogFile); err != nil {
		ui.ShowWarning("Invalid LOG_LEVEL %q, using info", cfg.LogLevel)
		_ = logging.Init("info", cfg.LogFile)
	}
	for _, w := range cfg.Warnings {
		logging.Log(w, logging.Warning)
	}
}

// signalContext is cancelled on the first shutdown signal.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), shutdownSignals...)
}

func newCoordinator(cfg config.Config) *addon.Coordinator {
	logger := log.WithField("component", "addons")
	return &addon.Coordinator{
		Updater: &addon.Updater{
			Ledger:  ledger.New(cfg.VersionFile),
			Fetcher: fetch.New(log.WithField("component", "fetch")),
			GameDir: cfg.GameDir,
			Log:     logger,
		},
		Flags: addon.Flags{
			MetamodAutoUpdate: cfg.MetamodAutoUpdate,
			CSSAutoUpdate:     cfg.CSSAutoUpdate,
		},
		Metamod:    addon.MetamodTarget(cfg.MetamodIndexURL),
		CSS:        addon.CounterStrikeSharpTarget(cfg.CSSRepo, cfg.GitHubAPIURL),
		TempParent: cfg.TempDir,
		Log:        logger,
	}
}

// newWatcher builds the patch-watch loop. It returns an error wrapping
// config.ErrMissingCredentials when the panel or news feed cannot be used.
func newWatcher(cfg config.Config, enabled func() bool) (*watch.Watcher, error) {
	if err := cfg.RestartCredentials(); err != nil {
		return nil, err
	}
	return &watch.Watcher{
		Feed:              steamnews.New(cfg.SteamAPIKey, cfg.SteamAppID),
		Panel:             panel.New(cfg.PanelURL, cfg.PanelToken, cfg.ServerID),
		Notifier:          newNotifier(cfg),
		Interval:          cfg.CheckInterval,
		CountdownDuration: cfg.CountdownTime,
		Schedule:          countdownSchedule(cfg.CountdownCommands),
		Enabled:           enabled,
		Log:               log.WithField("component", "watch"),
	}, nil
}

// newNotifier returns nil when no notification target is configured.
func newNotifier(cfg config.Config) notify.Notifier {
	var ns []notify.Notifier
	if cfg.WebhookURL != "" {
		var extra map[string]string
		if cfg.WebhookTemplate != "" {
			extra = map[string]string{"template": cfg.WebhookTemplate}
		}
		ns = append(ns, notify.NewWebhookNotifier(cfg.WebhookURL, cfg.WebhookFormat, extra))
	}
	if cfg.NotifyHook != "" {
		ns = append(ns, notify.NewHookRunner(cfg.NotifyHook))
	}
	switch len(ns) {
	case 0:
		return nil
	case 1:
		return ns[0]
	default:
		return notify.NewMultiNotifier(ns...)
	}
}

func countdownSchedule(commands map[int]string) []watch.ScheduledCommand {
	schedule := make([]watch.ScheduledCommand, 0, len(commands))
	for before, cmd := range commands {
		schedule = append(schedule, watch.ScheduledCommand{
			Before:  time.Duration(before) * time.Second,
			Command: cmd,
		})
	}
	sort.Slice(schedule, func(i, j int) bool { return schedule[i].Before > schedule[j].Before })
	return schedule
}

// optionalWatcher returns the watch loop for long-running commands, or nil
// when automatic restarts are off. Missing credentials disable the feature
// with an error log instead of stopping the caller.
func optionalWatcher(cfg config.Config, live *config.Live) *watch.Watcher {
	if !cfg.AutoRestart {
		log.Debug("UPDATE_AUTO_RESTART is off, not watching for game updates")
		return nil
	}
	w, err := newWatcher(cfg, live.AutoRestart)
	if err != nil {
		log.Errorf("automatic restarts disabled: %v", err)
		return nil
	}
	return w
}
