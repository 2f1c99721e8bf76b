package commands

import (
	"github.com/spf13/cobra"
)

// UpdateCmd runs the addon updaters once
var UpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update enabled addons",
	Long:  "Install or update Metamod:Source and CounterStrikeSharp according to METAMOD_AUTOUPDATE and CSS_AUTOUPDATE",
	Run: func(cmd *cobra.Command, args []string) {
		RunUpdate()
	},
}

// WatchCmd runs the game update watcher in the foreground
var WatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch for game updates and restart the server",
	Long:  "Poll the Steam news feed and restart the server through the panel when a new game release is published",
	Run: func(cmd *cobra.Command, args []string) {
		RunWatch()
	},
}

// RunCmd is the container entrypoint
var RunCmd = &cobra.Command{
	Use:   "run -- <server command>",
	Short: "Install, update and run the server",
	Long: `Run SteamCMD, update addons, then start the server command while
watching for game updates and running scheduled cleanup.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		skipSteamCMD, _ := cmd.Flags().GetBool("skip-steamcmd")
		RunServer(args, skipSteamCMD)
	},
}

// LedgerCmd is the parent command for the version ledger
var LedgerCmd = &cobra.Command{
	Use:     "ledger",
	Aliases: []string{"versions"},
	Short:   "Inspect or edit installed addon versions",
}

var ledgerGetCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Print the recorded version of an addon",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		RunLedgerGet(args[0])
	},
}

var ledgerSetCmd = &cobra.Command{
	Use:   "set <name> <version>",
	Short: "Record a version for an addon",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		RunLedgerSet(args[0], args[1])
	},
}

var ledgerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded versions",
	Run: func(cmd *cobra.Command, args []string) {
		RunLedgerList()
	},
}

// PatchGameinfoCmd adds the Metamod search path to gameinfo.gi
var PatchGameinfoCmd = &cobra.Command{
	Use:   "patch-gameinfo",
	Short: "Make sure gameinfo.gi loads Metamod",
	Run: func(cmd *cobra.Command, args []string) {
		RunPatchGameinfo()
	},
}

// NotifyCmd is the parent command for notifications
var NotifyCmd = &cobra.Command{
	Use:     "notify",
	Aliases: []string{"n"},
	Short:   "Manage update notifications",
}

var notifyTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test notification",
	Long:  "Send a test notification to DISCORD_WEBHOOK_URL and NOTIFY_HOOK",
	Run: func(cmd *cobra.Command, args []string) {
		RunNotifyTest()
	},
}

// DoctorCmd checks the environment
var DoctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration and environment",
	Long:  "Verify paths, credentials and remote APIs used by the updater",
	Run: func(cmd *cobra.Command, args []string) {
		RunDoctor()
	},
}

// VersionCmd prints the build version
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		RunVersion()
	},
}

func init() {
	RunCmd.Flags().Bool("skip-steamcmd", false, "Do not run SteamCMD before starting the server")

	LedgerCmd.AddCommand(ledgerGetCmd)
	LedgerCmd.AddCommand(ledgerSetCmd)
	LedgerCmd.AddCommand(ledgerListCmd)

	NotifyCmd.AddCommand(notifyTestCmd)
}
