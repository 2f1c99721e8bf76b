package commands

import (
	"context"
	"errors"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"gamekeeper/internal/cleanup"
	"gamekeeper/internal/config"
	"gamekeeper/internal/server"
	"gamekeeper/internal/steamcmd"
)

// RunServer is the container entrypoint. SteamCMD failures stop startup;
// addon failures are logged and the server starts with whatever is
// installed. The watcher and the cleanup schedule live as long as the
// server process.
func RunServer(args []string, skipSteamCMD bool) {
	live := mustLoadLive()
	cfg := live.Current()

	ctx, stop := signalContext()
	defer stop()

	if !skipSteamCMD {
		if err := installGame(ctx, cfg); err != nil {
			log.Errorf("game install failed: %v", err)
			os.Exit(1)
		}
	}

	if _, err := newCoordinator(cfg).Run(ctx); err != nil {
		log.Errorf("addon update finished with errors: %v", err)
	}
	if ctx.Err() != nil {
		return
	}

	if cfg.CleanupSchedule != "" && cfg.CleanupCommand != "" {
		sched := cleanup.New()
		if err := sched.Start(cfg.CleanupSchedule, cleanup.ShellJob(cfg.CleanupCommand)); err != nil {
			log.Errorf("cleanup disabled: %v", err)
		} else {
			defer sched.Stop()
		}
	}

	filter, err := server.DropMatching(cfg.ConsoleFilter)
	if err != nil {
		log.Errorf("console filter disabled: %v", err)
	}

	if err := serve(ctx, strings.Join(args, " "), filter, cfg, live); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}

// serve runs the server and the watcher side by side. The server exiting
// stops the watcher; the watcher stopping leaves the server running.
func serve(ctx context.Context, command string, filter server.LineFilter, cfg config.Config, live *config.Live) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		log.Infof("starting server: %s", command)
		err := server.Run(gctx, command, filter, os.Stdout)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	if w := optionalWatcher(cfg, live); w != nil {
		g.Go(func() error { return w.Run(gctx) })
	}
	return g.Wait()
}

func installGame(ctx context.Context, cfg config.Config) error {
	opts := steamcmd.Options{
		InstallDir: cfg.SteamCMD.InstallDir,
		AppID:      cfg.SteamCMD.AppID,
		User:       cfg.SteamCMD.User,
		Pass:       cfg.SteamCMD.Pass,
		Auth:       cfg.SteamCMD.Auth,
		Beta:       cfg.SteamCMD.Beta,
		BetaPass:   cfg.SteamCMD.BetaPass,
		Validate:   cfg.SteamCMD.Validate,
	}
	log.Infof("updating app %d with SteamCMD", opts.AppID)
	err := steamcmd.Run(ctx, cfg.SteamCMD.Path, steamcmd.Args(opts), os.Stdout)
	if errors.Is(err, steamcmd.ErrNotInstalled) {
		log.Warnf("skipping game update: %v", err)
		return nil
	}
	return err
}
