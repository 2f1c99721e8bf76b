package notify

import (
	"strings"
	"time"
)

// Field is a name/value pair shown under the notification body.
type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// Notification represents a notification to be sent.
type Notification struct {
	Title       string
	Description string
	Fields      []Field
	Color       int
	Timestamp   time.Time
}

// Text renders the notification as a single line of plain text.
func (n Notification) Text() string {
	var b strings.Builder
	b.WriteString(n.Title)
	if n.Description != "" {
		b.WriteString(": ")
		b.WriteString(n.Description)
	}
	for _, f := range n.Fields {
		b.WriteString(" | ")
		b.WriteString(f.Name)
		b.WriteString(": ")
		b.WriteString(f.Value)
	}
	return b.String()
}

// Notifier sends notifications.
type Notifier interface {
	Send(n Notification) error
	Name() string
}

// MultiNotifier sends notifications to multiple notifiers.
type MultiNotifier struct {
	notifiers []Notifier
}

// NewMultiNotifier creates a MultiNotifier from the given notifiers.
func NewMultiNotifier(ns ...Notifier) *MultiNotifier {
	return &MultiNotifier{notifiers: ns}
}

// Send dispatches the notification to all registered notifiers.
// Returns the first error encountered, but attempts all notifiers.
func (m *MultiNotifier) Send(n Notification) error {
	var firstErr error
	for _, notifier := range m.notifiers {
		if err := notifier.Send(n); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Len reports how many notifiers are registered.
func (m *MultiNotifier) Len() int { return len(m.notifiers) }

// Name returns the name of this notifier.
func (m *MultiNotifier) Name() string {
	names := make([]string, len(m.notifiers))
	for i, n := range m.notifiers {
		names[i] = n.Name()
	}
	return "multi(" + strings.Join(names, ",") + ")"
}
