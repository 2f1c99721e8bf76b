package commands

import (
	"fmt"

	"gamekeeper/internal/ledger"
	"gamekeeper/internal/output"
	"gamekeeper/internal/ui"
)

func RunLedgerGet(name string) {
	cfg := mustLoadConfig()

	version, err := ledger.New(cfg.VersionFile).Get(name)
	if err != nil {
		output.PrintError(err)
		return
	}
	output.Print(ledger.Entry{Name: name, Version: version}, func() {
		if version == "" {
			ui.ShowWarning("%s is not recorded in %s", name, cfg.VersionFile)
			return
		}
		fmt.Println(version)
	})
}

func RunLedgerSet(name, version string) {
	cfg := mustLoadConfig()

	if err := ledger.New(cfg.VersionFile).Set(name, version); err != nil {
		output.PrintError(err)
		return
	}
	output.Print(ledger.Entry{Name: name, Version: version}, func() {
		ui.ShowSuccess("%s recorded as %s", name, version)
	})
}

func RunLedgerList() {
	cfg := mustLoadConfig()

	entries, err := ledger.New(cfg.VersionFile).All()
	if err != nil {
		output.PrintError(err)
		return
	}
	output.Print(entries, func() {
		if len(entries) == 0 {
			ui.ShowInfo("No versions recorded in %s", cfg.VersionFile)
			return
		}
		ui.ShowHeader("Installed versions")
		rows := make([][2]string, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, [2]string{e.Name, e.Version})
		}
		ui.ShowKeyValues(rows)
	})
}
