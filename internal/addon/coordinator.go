package addon

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"

	"gamekeeper/internal/gameinfo"
)

// Flags selects which addons the coordinator installs.
type Flags struct {
	MetamodAutoUpdate bool
	CSSAutoUpdate     bool
}

// Coordinator runs the addon updaters once, in a fixed order, inside a
// single temporary working directory.
type Coordinator struct {
	Updater *Updater
	Flags   Flags
	Metamod Target
	CSS     Target
	// TempParent is where the batch temp dir is created; empty means os.TempDir.
	TempParent string
	Log        *log.Entry
}

// Targets returns the addons to process. Metamod is installed when its own
// flag is set, or when CounterStrikeSharp is enabled and Metamod is missing,
// since CounterStrikeSharp loads through it.
func (c *Coordinator) Targets() []Target {
	var targets []Target
	if c.Flags.MetamodAutoUpdate || (c.Flags.CSSAutoUpdate && !c.metamodInstalled()) {
		targets = append(targets, c.Metamod)
	}
	if c.Flags.CSSAutoUpdate {
		targets = append(targets, c.CSS)
	}
	return targets
}

// Run updates every selected addon. A failing addon does not stop the ones
// after it; all failures are returned together. The temp dir is removed on
// every path.
func (c *Coordinator) Run(ctx context.Context) ([]Result, error) {
	targets := c.Targets()
	if len(targets) == 0 {
		c.Log.Debug("no addon updates enabled")
		return nil, c.patchGameinfo()
	}

	tmp, err := os.MkdirTemp(c.TempParent, "gamekeeper-")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(tmp); err != nil {
			c.Log.Warnf("failed to remove temp dir %s: %v", tmp, err)
		}
	}()

	var (
		results []Result
		errs    *multierror.Error
	)
	for _, t := range targets {
		if err := ctx.Err(); err != nil {
			errs = multierror.Append(errs, err)
			break
		}
		res, err := c.Updater.Update(ctx, t, tmp)
		results = append(results, res)
		if err != nil {
			if IsSkippable(err) {
				c.Log.Warnf("skipping %s: %v", t.Name, err)
			} else {
				c.Log.Errorf("%s update failed: %v", t.Name, err)
			}
			errs = multierror.Append(errs, err)
		}
	}

	if err := c.patchGameinfo(); err != nil {
		errs = multierror.Append(errs, err)
	}
	return results, errs.ErrorOrNil()
}

// patchGameinfo registers Metamod in gameinfo.gi whenever Metamod is
// installed. Game updates replace gameinfo.gi, so this runs every time.
func (c *Coordinator) patchGameinfo() error {
	if !c.metamodInstalled() {
		return nil
	}
	changed, err := gameinfo.PatchMetamod(c.Updater.GameDir)
	if errors.Is(err, fs.ErrNotExist) {
		c.Log.Warnf("%s not found in %s, Metamod will not load until the game is installed", gameinfo.FileName, c.Updater.GameDir)
		return nil
	}
	if err != nil {
		return fmt.Errorf("patch %s: %w", gameinfo.FileName, err)
	}
	if changed {
		c.Log.Infof("registered Metamod in %s", gameinfo.FileName)
	}
	return nil
}

func (c *Coordinator) metamodInstalled() bool {
	info, err := os.Stat(filepath.Join(c.Updater.GameDir, "addons", "metamod"))
	return err == nil && info.IsDir()
}
