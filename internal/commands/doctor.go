package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gamekeeper/internal/addon"
	"gamekeeper/internal/config"
	"gamekeeper/internal/gameinfo"
	"gamekeeper/internal/ledger"
	"gamekeeper/internal/steamnews"
	"gamekeeper/internal/ui"
)

// doctorTally counts check outcomes.
type doctorTally struct {
	pass, warn, fail int
}

// RunDoctor performs diagnostic checks on the container environment.
func RunDoctor() {
	ui.ShowHeader("Running Diagnostics")
	fmt.Println()

	var tally doctorTally

	// 1. Configuration
	fmt.Println("1. Checking configuration...")
	cfg, err := loadConfigFunc()
	if err != nil {
		ui.ShowError("Failed to load configuration", err)
		tally.fail++
		showDoctorSummary(tally)
		return
	}
	ui.ShowSuccess("Configuration loaded")
	for _, w := range cfg.Warnings {
		ui.ShowWarning("%s", w)
		tally.warn++
	}
	tally.pass++
	fmt.Println()

	// 2. Paths
	fmt.Println("2. Checking paths...")
	checkPaths(cfg, &tally)
	fmt.Println()

	// 3. Addons
	fmt.Println("3. Checking addons...")
	checkAddons(cfg, &tally)
	fmt.Println()

	// 4. Automatic restarts
	fmt.Println("4. Checking automatic restarts...")
	checkRestart(cfg, &tally)
	fmt.Println()

	// 5. Disk space
	fmt.Println("5. Checking disk space...")
	checkDisk(cfg.GameDir, &tally)
	fmt.Println()

	showDoctorSummary(tally)
}

func checkPaths(cfg config.Config, tally *doctorTally) {
	if info, err := os.Stat(cfg.GameDir); err != nil || !info.IsDir() {
		ui.ShowError("Game directory missing: "+cfg.GameDir, err)
		tally.fail++
	} else if !ui.CanWriteTo(cfg.GameDir) {
		ui.ShowError("Game directory not writable: "+cfg.GameDir, nil)
		tally.fail++
	} else {
		ui.ShowSuccess("Game directory writable: %s", cfg.GameDir)
		tally.pass++
	}

	giPath := filepath.Join(cfg.GameDir, gameinfo.FileName)
	if _, err := os.Stat(giPath); err != nil {
		ui.ShowWarning("%s not found, Metamod cannot be loaded until the game is installed", giPath)
		tally.warn++
	} else {
		ui.ShowSuccess("Found %s", giPath)
		tally.pass++
	}

	versionDir := filepath.Dir(cfg.VersionFile)
	if _, err := os.Stat(versionDir); err != nil {
		ui.ShowInfo("Version file directory will be created on first update: %s", versionDir)
		tally.pass++
	} else if ui.CanWriteTo(versionDir) {
		ui.ShowSuccess("Version file directory writable: %s", versionDir)
		tally.pass++
	} else {
		ui.ShowError("Version file directory not writable: "+versionDir, nil)
		tally.fail++
	}

	if _, err := os.Stat(cfg.SteamCMD.Path); err != nil {
		ui.ShowWarning("SteamCMD not found at %s, game updates at startup are skipped", cfg.SteamCMD.Path)
		tally.warn++
	} else {
		ui.ShowSuccess("SteamCMD found: %s", cfg.SteamCMD.Path)
		tally.pass++
	}
}

func checkAddons(cfg config.Config, tally *doctorTally) {
	if !cfg.MetamodAutoUpdate && !cfg.CSSAutoUpdate {
		ui.ShowInfo("Addon updates disabled (METAMOD_AUTOUPDATE, CSS_AUTOUPDATE)")
		tally.pass++
		return
	}

	l := ledger.New(cfg.VersionFile)
	for _, name := range []string{addon.MetamodName, addon.CSSName} {
		version, err := l.Get(name)
		switch {
		case err != nil:
			ui.ShowError("Failed to read "+cfg.VersionFile, err)
			tally.fail++
			return
		case version == "":
			ui.ShowInfo("%s: not installed yet", name)
		default:
			ui.ShowInfo("%s: %s", name, version)
		}
	}
	tally.pass++
}

func checkRestart(cfg config.Config, tally *doctorTally) {
	if !cfg.AutoRestart {
		ui.ShowInfo("Automatic restarts disabled (UPDATE_AUTO_RESTART)")
		tally.pass++
		return
	}
	if err := cfg.RestartCredentials(); err != nil {
		ui.ShowError("Automatic restarts cannot run", err)
		tally.fail++
		return
	}
	ui.ShowSuccess("Panel credentials configured for server %s", cfg.ServerID)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	item, err := steamnews.New(cfg.SteamAPIKey, cfg.SteamAppID).Latest(ctx)
	if err != nil {
		ui.ShowError("Steam news feed unreachable", err)
		tally.fail++
		return
	}
	ui.ShowSuccess("Latest game news: %q (%s)", item.Title, time.Unix(item.Date, 0).UTC().Format(time.RFC3339))
	ui.ShowInfo("Countdown %v, checking every %v, %d scheduled command(s)",
		cfg.CountdownTime, cfg.CheckInterval, len(cfg.CountdownCommands))
	tally.pass++
}

func checkDisk(path string, tally *doctorTally) {
	usage, err := getDiskUsage(path)
	if err != nil {
		ui.ShowWarning("Failed to check disk space: %v", err)
		tally.warn++
		return
	}
	ui.ShowInfo("Disk usage: %.1f%% (%s / %s available)",
		usage.UsedPercent, formatBytes(usage.Available), formatBytes(usage.Total))

	switch {
	case usage.UsedPercent > 90:
		ui.ShowWarning("Disk usage high (%.1f%%)", usage.UsedPercent)
		tally.warn++
	case usage.Available < 2*1024*1024*1024: // addon archives plus extraction
		ui.ShowWarning("Low disk space: %s available", formatBytes(usage.Available))
		tally.warn++
	default:
		ui.ShowSuccess("Sufficient disk space available")
		tally.pass++
	}
}

func showDoctorSummary(tally doctorTally) {
	ui.ShowHeader("Diagnostic Summary")
	fmt.Printf("  ✓ Passed: %d\n", tally.pass)
	if tally.warn > 0 {
		fmt.Printf("  ! Warnings: %d\n", tally.warn)
	}
	if tally.fail > 0 {
		fmt.Printf("  ✗ Failed: %d\n", tally.fail)
	}
	fmt.Println()

	if tally.fail > 0 {
		ui.ShowError("Environment has critical issues", nil)
		os.Exit(1)
	} else if tally.warn > 0 {
		ui.ShowWarning("Environment has non-critical warnings")
	} else {
		ui.ShowSuccess("All checks passed!")
	}
}

// formatBytes formats a byte count in human-readable format.
func formatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
