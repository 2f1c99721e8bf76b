package commands

import (
	"errors"
	"fmt"

	"gamekeeper/internal/addon"
	"gamekeeper/internal/gameinfo"
	"gamekeeper/internal/output"
	"gamekeeper/internal/ui"
)

func RunUpdate() {
	cfg := mustLoadConfig()
	ctx, stop := signalContext()
	defer stop()

	results, err := newCoordinator(cfg).Run(ctx)
	if err != nil {
		if !output.JSONMode {
			showResults(results)
		}
		output.PrintError(fmt.Errorf("addon update: %w", err))
		return
	}
	output.Print(results, func() { showResults(results) })
}

func showResults(results []addon.Result) {
	if len(results) == 0 {
		ui.ShowInfo("No addon updates enabled")
		return
	}
	for _, r := range results {
		switch {
		case r.Error != "":
			ui.ShowError("Update failed", errors.New(r.Error))
		case r.Updated && r.Previous == "":
			ui.ShowSuccess("%s installed: %s", r.Name, r.Version)
		case r.Updated:
			ui.ShowSuccess("%s updated: %s -> %s", r.Name, r.Previous, r.Version)
		default:
			ui.ShowInfo("%s is up to date (%s)", r.Name, r.Version)
		}
	}
}

func RunPatchGameinfo() {
	cfg := mustLoadConfig()

	changed, err := gameinfo.PatchMetamod(cfg.GameDir)
	if err != nil {
		output.PrintError(err)
		return
	}
	output.Print(map[string]bool{"changed": changed}, func() {
		if changed {
			ui.ShowSuccess("Added Metamod search path to %s", gameinfo.FileName)
		} else {
			ui.ShowInfo("%s already loads Metamod", gameinfo.FileName)
		}
	})
}
