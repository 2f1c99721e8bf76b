package addon

import (
	"context"
	"errors"

	"gamekeeper/internal/fetch"
)

var (
	// ErrReleaseUnavailable means the source's release metadata could not be fetched.
	ErrReleaseUnavailable = errors.New("release metadata unavailable")
	// ErrNoMatchingAsset means the release exists but has nothing to download for this platform.
	ErrNoMatchingAsset = errors.New("no matching download asset")
	// ErrVersionUnparseable means no version token could be derived from the artifact name.
	ErrVersionUnparseable = errors.New("version token not found")
)

// Release is the latest artifact a source offers. URL is empty when the
// version is known but no downloadable asset matched.
type Release struct {
	Version string
	URL     string
	Kind    fetch.ArchiveKind
}

// Source resolves the latest available release of one addon.
type Source interface {
	Latest(ctx context.Context) (Release, error)
}

// Target describes one addon managed by the updater.
type Target struct {
	Name string
	// TempSubdir is the per-addon working directory under the batch temp dir.
	TempSubdir string
	// InstallSubpath is where extracted content is copied, relative to the game dir.
	InstallSubpath string
	Source         Source
}

// Result reports what an update run did.
type Result struct {
	Name     string `json:"name"`
	Previous string `json:"previous"`
	Version  string `json:"version"`
	Updated  bool   `json:"updated"`
	// Error is set when the addon could not be brought up to date.
	Error    string `json:"error,omitempty"`
}

// Fetcher is the download-and-extract primitive used by Updater.
type Fetcher interface {
	FetchAndExtract(ctx context.Context, job fetch.Job) error
}
