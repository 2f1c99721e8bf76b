// Package cleanup runs a housekeeping command on a cron schedule while the
// server is up.
package cleanup

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

const DefaultJobTimeout = 10 * time.Minute

var ErrAlreadyStarted = errors.New("cleanup scheduler already started")

// Job is one cleanup run.
type Job func(ctx context.Context) error

// Scheduler fires a Job on a standard 5-field cron expression. A run that
// is still going when the next one is due causes that next run to be
// skipped.
type Scheduler struct {
	Timeout time.Duration
	Log     *log.Entry

	mu     sync.Mutex
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
}

func New() *Scheduler {
	return &Scheduler{
		Timeout: DefaultJobTimeout,
		Log:     log.WithField("component", "cleanup"),
	}
}

// Start registers job under spec and begins dispatching.
func (s *Scheduler) Start(spec string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		return ErrAlreadyStarted
	}

	logger := cron.PrintfLogger(s.Log)
	c := cron.New(cron.WithLogger(logger), cron.WithChain(cron.SkipIfStillRunning(logger)))
	s.ctx, s.cancel = context.WithCancel(context.Background())

	ctx := s.ctx
	if _, err := c.AddFunc(spec, func() { s.run(ctx, job) }); err != nil {
		s.cancel()
		return fmt.Errorf("invalid cleanup schedule %q: %w", spec, err)
	}
	s.cron = c
	c.Start()
	s.Log.Infof("cleanup scheduled with %q", spec)
	return nil
}

// Stop cancels a running job and waits for it to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil {
		return
	}
	s.cancel()
	<-s.cron.Stop().Done()
	s.cron = nil
	s.Log.Debug("cleanup scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context, job Job) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	start := time.Now()
	if err := job(ctx); err != nil {
		s.Log.Errorf("cleanup failed after %v: %v", time.Since(start).Round(time.Millisecond), err)
		return
	}
	s.Log.WithField("status", "success").Infof("cleanup finished in %v", time.Since(start).Round(time.Millisecond))
}

// ShellJob runs command through sh -c. Output is logged at debug level.
func ShellJob(command string) Job {
	return func(ctx context.Context) error {
		cmd := exec.CommandContext(ctx, "sh", "-c", command)
		cmd.WaitDelay = 5 * time.Second
		out, err := cmd.CombinedOutput()
		if s := strings.TrimSpace(string(out)); s != "" {
			log.WithField("component", "cleanup").Debug(s)
		}
		if err != nil {
			return fmt.Errorf("run %q: %w", command, err)
		}
		return nil
	}
}
