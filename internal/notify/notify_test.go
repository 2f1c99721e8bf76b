package notify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestMultiNotifier_Send(t *testing.T) {
	var called []string

	n1 := &mockNotifier{name: "a", sendFn: func(n Notification) error {
		called = append(called, "a")
		return nil
	}}
	n2 := &mockNotifier{name: "b", sendFn: func(n Notification) error {
		called = append(called, "b")
		return nil
	}}

	m := NewMultiNotifier(n1, n2)
	err := m.Send(Notification{Title: "test", Description: "hello"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(called) != 2 || called[0] != "a" || called[1] != "b" {
		t.Fatalf("expected both notifiers called, got: %v", called)
	}
}

func TestMultiNotifier_Name(t *testing.T) {
	m := NewMultiNotifier(
		&mockNotifier{name: "x"},
		&mockNotifier{name: "y"},
	)
	got := m.Name()
	want := "multi(x,y)"
	if got != want {
		t.Fatalf("Name() = %q, want %q", got, want)
	}
	if m.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", m.Len())
	}
}

func TestNotification_Text(t *testing.T) {
	n := Notification{
		Title:       "Update",
		Description: "restart soon",
		Fields:      []Field{{Name: "Countdown", Value: "300s"}},
	}
	want := "Update: restart soon | Countdown: 300s"
	if got := n.Text(); got != want {
		t.Fatalf("Text() = %q, want %q", got, want)
	}
}

func TestWebhookNotifier_Discord(t *testing.T) {
	var received struct {
		Embeds []struct {
			Title       string  `json:"title"`
			Description string  `json:"description"`
			Color       int     `json:"color"`
			Fields      []Field `json:"fields"`
			Timestamp   string  `json:"timestamp"`
		} `json:"embeds"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&received)
		w.WriteHeader(204)
	}))
	defer srv.Close()

	wh := NewWebhookNotifier(srv.URL, "discord", nil)
	err := wh.Send(Notification{
		Title:       "Counter-Strike 2 update detected",
		Description: "Server restarts in 300 seconds",
		Color:       0xF39C12,
		Fields:      []Field{{Name: "Countdown", Value: "300s", Inline: true}},
		Timestamp:   time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(received.Embeds) != 1 {
		t.Fatalf("expected one embed, got: %+v", received)
	}
	e := received.Embeds[0]
	if e.Title != "Counter-Strike 2 update detected" || e.Color != 0xF39C12 {
		t.Fatalf("unexpected embed: %+v", e)
	}
	if e.Timestamp != "2026-03-04T05:06:07Z" {
		t.Fatalf("unexpected timestamp: %q", e.Timestamp)
	}
	if len(e.Fields) != 1 || !e.Fields[0].Inline {
		t.Fatalf("unexpected fields: %+v", e.Fields)
	}
}

func TestWebhookNotifier_Slack(t *testing.T) {
	var received map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&received)
		w.WriteHeader(200)
	}))
	defer srv.Close()

	wh := NewWebhookNotifier(srv.URL, "slack", nil)
	err := wh.Send(Notification{Title: "update", Description: "restarting"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if received["text"] != "update: restarting" {
		t.Fatalf("unexpected payload: %v", received)
	}
}

func TestWebhookNotifier_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
	}))
	defer srv.Close()

	wh := NewWebhookNotifier(srv.URL, "discord", nil)
	err := wh.Send(Notification{Title: "test", Description: "msg"})
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestWebhookNotifier_Custom(t *testing.T) {
	var received map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&received)
		w.WriteHeader(200)
	}))
	defer srv.Close()

	extra := map[string]string{
		"template": `{"body": "{{.Title}} - {{.Description}}", "combined": "{{.Text}}"}`,
	}
	wh := NewWebhookNotifier(srv.URL, "custom", extra)
	err := wh.Send(Notification{Title: "patch", Description: "1.40.0.1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if received["body"] != "patch - 1.40.0.1" {
		t.Fatalf("unexpected body: %v", received["body"])
	}
	if received["combined"] != "patch: 1.40.0.1" {
		t.Fatalf("unexpected combined: %v", received["combined"])
	}
}

func TestWebhookNotifier_Custom_MissingTemplate(t *testing.T) {
	wh := NewWebhookNotifier("http://localhost", "custom", nil)
	err := wh.Send(Notification{Title: "test", Description: "msg"})
	if err == nil {
		t.Fatal("expected error for missing template")
	}
}

// mockNotifier is a test helper.
type mockNotifier struct {
	name   string
	sendFn func(Notification) error
}

func (m *mockNotifier) Send(n Notification) error {
	if m.sendFn != nil {
		return m.sendFn(n)
	}
	return nil
}

func (m *mockNotifier) Name() string { return m.name }
