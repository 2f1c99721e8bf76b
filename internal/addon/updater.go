// Package addon keeps server addons current: it resolves the latest release
// of each addon, compares it with the version ledger and installs changes.
package addon

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"gamekeeper/internal/fetch"
	"gamekeeper/internal/ledger"
)

// VersionAvailable reports whether candidate differs from current. Any
// difference counts, including a downgrade or a first install.
func VersionAvailable(current, candidate string) bool {
	return current != candidate
}

// Updater installs addon releases into GameDir and records them in Ledger.
type Updater struct {
	Ledger  *ledger.Ledger
	Fetcher Fetcher
	GameDir string
	Log     *log.Entry
}

// Update brings target up to date. tempRoot is the batch working directory;
// the archive is downloaded and unpacked under tempRoot/target.TempSubdir.
// The ledger is written only after the extracted files are in place.
// On failure the returned Result carries the error text.
func (u *Updater) Update(ctx context.Context, target Target, tempRoot string) (Result, error) {
	res, err := u.update(ctx, target, tempRoot)
	if err != nil {
		res.Error = err.Error()
	}
	return res, err
}

func (u *Updater) update(ctx context.Context, target Target, tempRoot string) (Result, error) {
	logger := u.Log.WithField("addon", target.Name)
	res := Result{Name: target.Name}

	rel, err := target.Source.Latest(ctx)
	if err != nil {
		return res, fmt.Errorf("%s: %w", target.Name, err)
	}
	res.Version = rel.Version

	current, err := u.Ledger.Get(target.Name)
	if err != nil {
		return res, fmt.Errorf("%s: %w", target.Name, err)
	}
	res.Previous = current

	if !VersionAvailable(current, rel.Version) {
		logger.Infof("%s is up to date (%s)", target.Name, current)
		return res, nil
	}
	if rel.URL == "" {
		return res, fmt.Errorf("%s %s: %w", target.Name, rel.Version, ErrNoMatchingAsset)
	}

	if current == "" {
		logger.Infof("installing %s %s", target.Name, rel.Version)
	} else {
		logger.Infof("updating %s %s -> %s", target.Name, current, rel.Version)
	}

	kind := rel.Kind
	if kind == "" {
		kind = fetch.KindFromName(rel.URL)
	}
	work := filepath.Join(tempRoot, target.TempSubdir)
	job := fetch.Job{
		URL:        rel.URL,
		Dest:       filepath.Join(work, archiveName(rel.URL, target.Name)),
		ExtractDir: filepath.Join(work, "extract"),
		Kind:       kind,
	}
	if err := u.Fetcher.FetchAndExtract(ctx, job); err != nil {
		return res, fmt.Errorf("%s: %w", target.Name, err)
	}

	dst := filepath.Join(u.GameDir, target.InstallSubpath)
	if err := copyTree(job.ExtractDir, dst); err != nil {
		return res, fmt.Errorf("%s: install into %s: %w", target.Name, dst, err)
	}
	if err := u.Ledger.Set(target.Name, rel.Version); err != nil {
		return res, fmt.Errorf("%s: record version: %w", target.Name, err)
	}

	res.Updated = true
	logger.WithField("status", "success").Infof("%s updated to %s", target.Name, rel.Version)
	return res, nil
}

func archiveName(rawURL, fallback string) string {
	if u, err := url.Parse(rawURL); err == nil {
		if base := path.Base(u.Path); base != "." && base != "/" {
			return base
		}
	}
	return fallback
}

// IsSkippable reports whether err only means this addon's cycle should be
// skipped because the source data was missing or invalid.
func IsSkippable(err error) bool {
	return errors.Is(err, ErrNoMatchingAsset) || errors.Is(err, ErrVersionUnparseable) || errors.Is(err, fetch.ErrEmptyArtifact)
}
