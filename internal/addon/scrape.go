package addon

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"sort"
	"time"

	"golang.org/x/net/html"

	"gamekeeper/internal/fetch"
)

// ScrapeSource resolves the latest artifact from a directory-style HTML
// index. The lexicographically last href matching FilePattern wins, and its
// version is the first match of VersionPattern in the file name.
type ScrapeSource struct {
	IndexURL       string
	FilePattern    *regexp.Regexp
	VersionPattern *regexp.Regexp
	Client         *http.Client
}

// Latest lists the index and picks the newest matching artifact.
func (s *ScrapeSource) Latest(ctx context.Context) (Release, error) {
	base, err := url.Parse(s.IndexURL)
	if err != nil {
		return Release{}, fmt.Errorf("parse index url: %w", err)
	}

	hrefs, err := s.listHrefs(ctx)
	if err != nil {
		return Release{}, fmt.Errorf("%w: %s: %v", ErrReleaseUnavailable, s.IndexURL, err)
	}

	var names []string
	for _, h := range hrefs {
		if s.FilePattern.MatchString(path.Base(h)) {
			names = append(names, h)
		}
	}
	if len(names) == 0 {
		return Release{}, fmt.Errorf("%w: nothing in %s matches %s", ErrNoMatchingAsset, s.IndexURL, s.FilePattern)
	}
	sort.Strings(names)
	latest := names[len(names)-1]

	version := s.VersionPattern.FindString(path.Base(latest))
	if version == "" {
		return Release{}, fmt.Errorf("%w: %s", ErrVersionUnparseable, latest)
	}

	ref, err := url.Parse(latest)
	if err != nil {
		return Release{}, fmt.Errorf("parse href %q: %w", latest, err)
	}
	return Release{
		Version: version,
		URL:     base.ResolveReference(ref).String(),
		Kind:    fetch.KindFromName(latest),
	}, nil
}

func (s *ScrapeSource) listHrefs(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.IndexURL, nil)
	if err != nil {
		return nil, err
	}
	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("index returned %d", resp.StatusCode)
	}
	return parseHrefs(resp.Body)
}

// parseHrefs returns every anchor href in document order.
func parseHrefs(r io.Reader) ([]string, error) {
	var hrefs []string
	z := html.NewTokenizer(r)
	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return hrefs, nil
			}
			return nil, z.Err()
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if string(name) != "a" || !hasAttr {
				continue
			}
			for {
				key, val, more := z.TagAttr()
				if string(key) == "href" {
					hrefs = append(hrefs, string(val))
				}
				if !more {
					break
				}
			}
		}
	}
}
