package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// HookPayload is the JSON structure passed to hook scripts via stdin.
type HookPayload struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Fields      []Field `json:"fields,omitempty"`
	Timestamp   string  `json:"timestamp"`
}

// HookRunner executes a shell hook script with a JSON payload on stdin.
type HookRunner struct {
	ScriptPath string
	Timeout    time.Duration
}

// NewHookRunner creates a HookRunner for the given script path.
func NewHookRunner(scriptPath string) *HookRunner {
	return &HookRunner{ScriptPath: scriptPath, Timeout: 30 * time.Second}
}

// Send runs the hook with the notification as its payload.
func (h *HookRunner) Send(n Notification) error {
	ts := n.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return h.Execute(HookPayload{
		Title:       n.Title,
		Description: n.Description,
		Fields:      n.Fields,
		Timestamp:   ts.UTC().Format(time.RFC3339),
	})
}

// Name returns the name of this notifier.
func (h *HookRunner) Name() string { return "hook" }

// Execute runs the hook script, bounded by h.Timeout.
// The JSON-encoded payload is passed via stdin.
func (h *HookRunner) Execute(payload HookPayload) error {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, h.ScriptPath)
	cmd.WaitDelay = 2 * time.Second

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("hook marshal payload: %w", err)
	}
	cmd.Stdin = strings.NewReader(string(data))

	output, err := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("hook timed out after %v: %s", timeout, h.ScriptPath)
	}
	if err != nil {
		return fmt.Errorf("hook execution failed: %w (output: %s)", err, string(output))
	}
	return nil
}
