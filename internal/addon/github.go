package addon

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"gamekeeper/internal/fetch"
)

const githubAPI = "https://api.github.com"

// ReleaseInfo holds the subset of a GitHub release the updater consumes.
type ReleaseInfo struct {
	TagName     string         `json:"tag_name"`
	PublishedAt string         `json:"published_at"`
	Assets      []ReleaseAsset `json:"assets"`
}

// ReleaseAsset is a downloadable file attached to a release.
type ReleaseAsset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// GitHubSource resolves the latest release of Repo ("owner/name") and picks
// the first asset whose name matches AssetPattern.
type GitHubSource struct {
	Repo         string
	AssetPattern *regexp.Regexp
	BaseURL      string
	Client       *http.Client
}

// Latest queries the GitHub API for the latest release.
func (g *GitHubSource) Latest(ctx context.Context) (Release, error) {
	info, err := g.fetchLatest(ctx)
	if err != nil {
		return Release{}, fmt.Errorf("%w: %s: %v", ErrReleaseUnavailable, g.Repo, err)
	}
	if info.TagName == "" {
		return Release{}, fmt.Errorf("%w: %s: release has no tag", ErrReleaseUnavailable, g.Repo)
	}

	rel := Release{Version: info.TagName}
	for _, a := range info.Assets {
		if g.AssetPattern.MatchString(a.Name) && a.BrowserDownloadURL != "" {
			rel.URL = a.BrowserDownloadURL
			rel.Kind = fetch.KindFromName(a.Name)
			break
		}
	}
	return rel, nil
}

func (g *GitHubSource) fetchLatest(ctx context.Context) (*ReleaseInfo, error) {
	base := strings.TrimRight(g.BaseURL, "/")
	if base == "" {
		base = githubAPI
	}
	url := fmt.Sprintf("%s/repos/%s/releases/latest", base, g.Repo)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	client := g.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub API returned %d", resp.StatusCode)
	}

	var release ReleaseInfo
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("decode release: %w", err)
	}
	return &release, nil
}
