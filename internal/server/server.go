// Package server runs the game server as a foreground child process and
// relays its console output.
package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"regexp"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const DefaultStopGrace = 30 * time.Second

// MaxLineBytes caps a relayed console line; the remainder is dropped.
const MaxLineBytes = 1024 * 1024

// LineFilter rewrites or drops a console line. Returning false drops it.
type LineFilter func(line string) (string, bool)

// Process is one server invocation.
type Process struct {
	Command string
	Dir     string
	Stdin   io.Reader
	Out     io.Writer
	Filter  LineFilter
	// StopGrace is how long the server gets to exit after an interrupt
	// before it is killed.
	StopGrace time.Duration
}

// Run starts command through sh -c and streams its output through filter to
// out. Cancelling ctx interrupts the server.
func Run(ctx context.Context, command string, filter LineFilter, out io.Writer) error {
	p := &Process{Command: command, Stdin: os.Stdin, Out: out, Filter: filter}
	return p.Run(ctx)
}

func (p *Process) Run(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "sh", "-c", p.Command)
	cmd.Dir = p.Dir
	cmd.Stdin = p.Stdin
	cmd.Cancel = func() error { return cmd.Process.Signal(os.Interrupt) }
	cmd.WaitDelay = p.StopGrace
	if cmd.WaitDelay <= 0 {
		cmd.WaitDelay = DefaultStopGrace
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}

	var mu sync.Mutex
	var g errgroup.Group
	g.Go(func() error { return p.relay(stdout, &mu) })
	g.Go(func() error { return p.relay(stderr, &mu) })
	relayErr := g.Wait()

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("server exited: %w", err)
	}
	return relayErr
}

// relay copies r to Out line by line. Lines longer than MaxLineBytes are
// cut. r is always drained to EOF so the server never blocks on a full pipe.
func (p *Process) relay(r io.Reader, mu *sync.Mutex) error {
	br := bufio.NewReaderSize(r, 64*1024)
	var line []byte
	for {
		chunk, isPrefix, err := br.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if room := MaxLineBytes - len(line); room > 0 {
			if len(chunk) > room {
				chunk = chunk[:room]
			}
			line = append(line, chunk...)
		}
		if isPrefix {
			continue
		}
		if err := p.emit(string(line), mu); err != nil {
			_, _ = io.Copy(io.Discard, br)
			return err
		}
		line = line[:0]
	}
}

func (p *Process) emit(line string, mu *sync.Mutex) error {
	if p.Filter != nil {
		var keep bool
		if line, keep = p.Filter(line); !keep {
			return nil
		}
	}
	mu.Lock()
	defer mu.Unlock()
	_, err := io.WriteString(p.Out, line+"\n")
	return err
}

// DropMatching returns a filter that drops every line matching one of
// patterns. No patterns yields a nil filter.
func DropMatching(patterns []string) (LineFilter, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("console filter %q: %w", p, err)
		}
		res = append(res, re)
	}
	return func(line string) (string, bool) {
		for _, re := range res {
			if re.MatchString(line) {
				return "", false
			}
		}
		return line, true
	}, nil
}
