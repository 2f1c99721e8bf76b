package watch

import (
	"context"
	"fmt"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"
)

// ScheduledCommand is a console command sent Before the restart deadline.
type ScheduledCommand struct {
	Before  time.Duration
	Command string
}

// CommandSender dispatches console commands to the server.
type CommandSender interface {
	SendCommand(ctx context.Context, command string) error
}

// Countdown waits Duration before a restart, sending the scheduled warning
// commands on the way.
type Countdown struct {
	Duration time.Duration
	Schedule []ScheduledCommand
	Sender   CommandSender
	Clock    Clock
	Log      *log.Entry
}

// Plan returns the commands that fit inside the countdown, earliest first.
// Entries scheduled further before the deadline than Duration are dropped.
func (c *Countdown) Plan() []ScheduledCommand {
	plan := make([]ScheduledCommand, 0, len(c.Schedule))
	for _, e := range c.Schedule {
		if e.Before < 0 || e.Before > c.Duration {
			continue
		}
		plan = append(plan, e)
	}
	sort.SliceStable(plan, func(i, j int) bool { return plan[i].Before > plan[j].Before })
	return plan
}

// Run blocks until the deadline. Each command is sent at deadline-Before,
// measured against the clock rather than summed sleeps, so time spent
// sending earlier commands does not push later ones back. A failed command
// aborts the countdown.
func (c *Countdown) Run(ctx context.Context) error {
	clock := c.Clock
	if clock == nil {
		clock = RealClock{}
	}
	plan := c.Plan()
	if len(plan) == 0 {
		return sleep(ctx, clock, c.Duration)
	}

	deadline := clock.Now().Add(c.Duration)
	for _, e := range plan {
		if err := sleep(ctx, clock, deadline.Add(-e.Before).Sub(clock.Now())); err != nil {
			return err
		}
		if err := c.Sender.SendCommand(ctx, e.Command); err != nil {
			return fmt.Errorf("countdown command %q: %w", e.Command, err)
		}
		if c.Log != nil {
			c.Log.Debugf("sent %q at T-%v", e.Command, e.Before)
		}
	}
	return sleep(ctx, clock, deadline.Sub(clock.Now()))
}
