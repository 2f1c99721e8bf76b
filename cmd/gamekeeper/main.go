package main

import (
	"os"

	"github.com/spf13/cobra"

	"gamekeeper/internal/commands"
	"gamekeeper/internal/output"
)

var jsonFlag bool

var rootCmd = &cobra.Command{
	Use:   "gamekeeper",
	Short: "Keeps a CS2 server and its addons up to date",
	Long: `gamekeeper updates Metamod:Source and CounterStrikeSharp, patches gameinfo.gi,
and restarts the server through the panel when a new game release is published.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "Output in JSON format")

	rootCmd.AddCommand(commands.RunCmd)
	rootCmd.AddCommand(commands.UpdateCmd)
	rootCmd.AddCommand(commands.WatchCmd)
	rootCmd.AddCommand(commands.LedgerCmd)
	rootCmd.AddCommand(commands.PatchGameinfoCmd)
	rootCmd.AddCommand(commands.NotifyCmd)
	rootCmd.AddCommand(commands.DoctorCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	// Propagate --json flag before execution
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		output.JSONMode = jsonFlag
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
