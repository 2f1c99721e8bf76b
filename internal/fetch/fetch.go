// Package fetch downloads an archive with bounded retries and unpacks it into
// a working directory. It never touches live install paths; placing the
// extracted files is the caller's job.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultRetries        = 3
	DefaultRetryDelay     = 5 * time.Second
	DefaultAttemptTimeout = 5 * time.Minute

	userAgent = "gamekeeper/1"
)

var (
	// ErrEmptyArtifact means the transport succeeded but delivered zero bytes.
	ErrEmptyArtifact = errors.New("downloaded artifact is empty")
	// ErrUnsupportedArchive is returned for an archive kind the pipeline cannot unpack.
	ErrUnsupportedArchive = errors.New("unsupported archive kind")
)

// ArchiveKind selects the extractor.
type ArchiveKind string

const (
	Zip   ArchiveKind = "zip"
	TarGz ArchiveKind = "tar.gz"
)

// KindFromName infers the archive kind from a file name or URL.
func KindFromName(name string) ArchiveKind {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		return Zip
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return TarGz
	}
	return ""
}

// Job is a single download-and-extract request.
type Job struct {
	URL        string
	Dest       string
	ExtractDir string
	Kind       ArchiveKind
}

// Pipeline holds the retry policy and HTTP client used for downloads.
type Pipeline struct {
	Client         *http.Client
	Retries        int
	RetryDelay     time.Duration
	AttemptTimeout time.Duration
	Log            *log.Entry
}

// New returns a Pipeline with the default retry policy: one attempt plus
// three retries, five seconds apart.
func New(logger *log.Entry) *Pipeline {
	return &Pipeline{
		Client:         http.DefaultClient,
		Retries:        DefaultRetries,
		RetryDelay:     DefaultRetryDelay,
		AttemptTimeout: DefaultAttemptTimeout,
		Log:            logger,
	}
}

// FetchAndExtract downloads job.URL into job.Dest and unpacks it into
// job.ExtractDir. On extraction failure ExtractDir may hold partial content.
func (p *Pipeline) FetchAndExtract(ctx context.Context, job Job) error {
	if job.Kind != Zip && job.Kind != TarGz {
		return fmt.Errorf("%w: %q", ErrUnsupportedArchive, job.Kind)
	}
	if err := p.Download(ctx, job.URL, job.Dest); err != nil {
		return err
	}

	p.logger().Debugf("extracting %s into %s", job.Dest, job.ExtractDir)
	if err := Extract(job.Dest, job.ExtractDir, job.Kind); err != nil {
		p.logger().Errorf("failed to extract %s: %v", filepath.Base(job.Dest), err)
		return fmt.Errorf("extract %s: %w", filepath.Base(job.Dest), err)
	}
	return nil
}

// Download fetches url into dst, retrying transport and HTTP failures up to
// p.Retries times. A zero-byte body fails immediately with ErrEmptyArtifact.
func (p *Pipeline) Download(ctx context.Context, url, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("create download dir: %w", err)
	}

	attempt := 0
	operation := func() error {
		attempt++
		n, err := p.downloadOnce(ctx, url, dst)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		if n == 0 {
			return backoff.Permanent(ErrEmptyArtifact)
		}
		return nil
	}

	retries := p.Retries
	if retries < 0 {
		retries = 0
	}
	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(p.RetryDelay), uint64(retries)), ctx)
	notify := func(err error, wait time.Duration) {
		p.logger().Warnf("download attempt %d/%d of %s failed, retrying in %v: %v", attempt, retries+1, url, wait, err)
	}

	if err := backoff.RetryNotify(operation, bo, notify); err != nil {
		if errors.Is(err, ErrEmptyArtifact) {
			p.logger().Errorf("downloaded file %s is empty", filepath.Base(dst))
			return fmt.Errorf("download %s: %w", url, err)
		}
		p.logger().Errorf("download of %s failed after %d attempts: %v", url, attempt, err)
		return fmt.Errorf("download %s failed after %d attempts: %w", url, attempt, err)
	}

	p.logger().Infof("downloaded %s", filepath.Base(dst))
	return nil
}

func (p *Pipeline) downloadOnce(ctx context.Context, url, dst string) (int64, error) {
	if p.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.AttemptTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("User-Agent", userAgent)

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("perform request: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			p.logger().Warnf("error closing response body: %v", cerr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected HTTP status: %d", resp.StatusCode)
	}

	out, err := os.Create(dst)
	if err != nil {
		return 0, backoff.Permanent(fmt.Errorf("create %s: %w", dst, err))
	}
	n, err := io.Copy(out, resp.Body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("write %s: %w", filepath.Base(dst), err)
	}
	return n, nil
}

func (p *Pipeline) logger() *log.Entry {
	if p.Log == nil {
		return log.WithField("component", "fetch")
	}
	return p.Log
}
