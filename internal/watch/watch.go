// Package watch polls the game's news feed for new releases and, when one
// appears, runs a restart cycle: notify, count down with console warnings,
// then ask the panel to restart the server.
//
// A Watcher owns the cycle state. Only one cycle runs at a time; a poll that
// finds a cycle in progress does nothing.
package watch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"gamekeeper/internal/notify"
)

const (
	DefaultInterval = 5 * time.Minute

	notifyColor = 0xF39C12
)

// Feed reports the publish time of the newest game release, in Unix seconds.
type Feed interface {
	LatestPublished(ctx context.Context) (int64, error)
}

// Panel is the remote server control used during a cycle.
type Panel interface {
	CommandSender
	Restart(ctx context.Context) error
}

// Watcher is the patch-watch loop and its restart-cycle state.
type Watcher struct {
	Feed     Feed
	Panel    Panel
	Notifier notify.Notifier
	Interval time.Duration
	// CountdownDuration and Schedule configure each cycle's countdown.
	CountdownDuration time.Duration
	Schedule          []ScheduledCommand
	// Enabled is checked at the top of every loop iteration; nil means always.
	Enabled func() bool
	Clock   Clock
	Log     *log.Entry

	mu         sync.Mutex
	baseline   int64
	inProgress bool
	notified   int64
}

// Busy reports whether a restart cycle is in progress.
func (w *Watcher) Busy() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inProgress
}

// Baseline returns the last observed or acted-upon release timestamp; zero
// means nothing has been observed yet.
func (w *Watcher) Baseline() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.baseline
}

// Poll checks the feed once. The first observation only primes the baseline.
// A strictly newer timestamp starts a restart cycle, which Poll runs to
// completion; triggered reports whether a cycle was started. On success the
// baseline advances; on failure it is left alone so a later poll retries.
func (w *Watcher) Poll(ctx context.Context) (triggered bool, err error) {
	observed, err := w.Feed.LatestPublished(ctx)
	if err != nil {
		return false, fmt.Errorf("check for game update: %w", err)
	}

	w.mu.Lock()
	switch {
	case w.inProgress:
		w.mu.Unlock()
		w.logger().Debug("restart cycle already in progress, ignoring poll")
		return false, nil
	case w.baseline == 0:
		w.baseline = observed
		w.mu.Unlock()
		w.logger().Infof("game release baseline set to %s", formatTS(observed))
		return false, nil
	case observed <= w.baseline:
		w.mu.Unlock()
		return false, nil
	}
	w.inProgress = true
	firstAttempt := w.notified != observed
	w.notified = observed
	w.mu.Unlock()

	err = w.cycle(ctx, observed, firstAttempt)

	w.mu.Lock()
	if err == nil {
		w.baseline = observed
	}
	w.inProgress = false
	w.mu.Unlock()
	return true, err
}

// Run polls every Interval until Enabled returns false or ctx is done. The
// exit condition is checked after each sleep, so disabling takes effect on
// the next wake.
func (w *Watcher) Run(ctx context.Context) error {
	interval := w.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	w.logger().Infof("watching for game updates every %v", interval)

	for w.enabled() && !w.Busy() {
		if err := sleep(ctx, w.clock(), interval); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
		if !w.enabled() {
			break
		}
		if _, err := w.Poll(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			w.logger().Errorf("%v", err)
		}
	}
	w.logger().Info("game update watch stopped")
	return nil
}

func (w *Watcher) cycle(ctx context.Context, observed int64, sendNotification bool) error {
	logger := w.logger().WithField("cycle", uuid.NewString())
	logger.Infof("new game release published at %s, restarting in %v", formatTS(observed), w.CountdownDuration)

	if sendNotification {
		w.notify(logger, observed)
	}

	cd := &Countdown{
		Duration: w.CountdownDuration,
		Schedule: w.Schedule,
		Sender:   w.Panel,
		Clock:    w.clock(),
		Log:      logger,
	}
	if err := cd.Run(ctx); err != nil {
		logger.Errorf("restart countdown aborted: %v", err)
		return fmt.Errorf("restart countdown: %w", err)
	}

	if err := w.Panel.Restart(ctx); err != nil {
		logger.Errorf("restart signal failed: %v", err)
		return fmt.Errorf("restart server: %w", err)
	}
	logger.WithField("status", "success").Info("restart signal sent")
	return nil
}

func (w *Watcher) notify(logger *log.Entry, observed int64) {
	if w.Notifier == nil {
		return
	}
	n := notify.Notification{
		Title:       "Game update detected",
		Description: fmt.Sprintf("A new game release was published. The server restarts in %v.", w.CountdownDuration),
		Color:       notifyColor,
		Fields: []notify.Field{
			{Name: "Published", Value: formatTS(observed), Inline: true},
			{Name: "Countdown", Value: w.CountdownDuration.String(), Inline: true},
		},
		Timestamp: w.clock().Now(),
	}
	if err := w.Notifier.Send(n); err != nil {
		logger.Warnf("update notification via %s failed: %v", w.Notifier.Name(), err)
	}
}

func (w *Watcher) enabled() bool {
	return w.Enabled == nil || w.Enabled()
}

func (w *Watcher) clock() Clock {
	if w.Clock == nil {
		return RealClock{}
	}
	return w.Clock
}

func (w *Watcher) logger() *log.Entry {
	if w.Log == nil {
		return log.WithField("component", "watch")
	}
	return w.Log
}

func formatTS(ts int64) string {
	return time.Unix(ts, 0).UTC().Format("2006-01-02 15:04:05 UTC")
}
