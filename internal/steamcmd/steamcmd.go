// Package steamcmd installs or updates the game through SteamCMD before the
// server starts.
package steamcmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"time"
)

var ErrNotInstalled = errors.New("steamcmd not found")

// Options describes one app_update run.
type Options struct {
	InstallDir string
	AppID      int
	// User defaults to anonymous. Pass and Auth are only sent for a named
	// account.
	User     string
	Pass     string
	Auth     string
	Beta     string
	BetaPass string
	Validate bool
}

// Args builds the SteamCMD command line for opts.
func Args(opts Options) []string {
	user := opts.User
	if user == "" {
		user = "anonymous"
	}

	args := []string{"+force_install_dir", opts.InstallDir, "+login", user}
	if user != "anonymous" {
		if opts.Pass != "" {
			args = append(args, opts.Pass)
		}
		if opts.Auth != "" {
			args = append(args, opts.Auth)
		}
	}
	args = append(args, "+app_update", strconv.Itoa(opts.AppID))
	if opts.Beta != "" {
		args = append(args, "-beta", opts.Beta)
		if opts.BetaPass != "" {
			args = append(args, "-betapassword", opts.BetaPass)
		}
	}
	if opts.Validate {
		args = append(args, "validate")
	}
	return append(args, "+quit")
}

// Run executes SteamCMD at path with args, streaming its output to out.
// A missing binary returns ErrNotInstalled so callers can skip the step.
func Run(ctx context.Context, path string, args []string, out io.Writer) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w at %s", ErrNotInstalled, path)
		}
		return err
	}

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdout = out
	cmd.Stderr = out
	cmd.WaitDelay = 10 * time.Second
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("steamcmd: %w", err)
	}
	return nil
}
