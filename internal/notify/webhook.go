package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"text/template"
	"time"
)

// WebhookNotifier sends notifications to a webhook URL.
type WebhookNotifier struct {
	URL    string            // webhook endpoint
	Format string            // "discord", "slack", "custom"
	Extra  map[string]string // format-specific parameters (e.g. template)
	client *http.Client
}

// NewWebhookNotifier creates a webhook notifier for the given URL, format, and extra parameters.
func NewWebhookNotifier(url, format string, extra map[string]string) *WebhookNotifier {
	return &WebhookNotifier{
		URL:    url,
		Format: format,
		Extra:  extra,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type embed struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Color       int     `json:"color,omitempty"`
	Fields      []Field `json:"fields,omitempty"`
	Timestamp   string  `json:"timestamp,omitempty"`
}

// Send posts the notification to the configured webhook.
func (w *WebhookNotifier) Send(n Notification) error {
	var payload any

	ts := n.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	switch w.Format {
	case "slack":
		payload = map[string]string{
			"text": n.Text(),
		}
	case "custom":
		tmplStr := w.Extra["template"]
		if tmplStr == "" {
			return fmt.Errorf("webhook custom format: missing 'template' in extra")
		}
		tmpl, err := template.New("webhook").Parse(tmplStr)
		if err != nil {
			return fmt.Errorf("webhook custom template parse: %w", err)
		}
		data := map[string]any{
			"Title":       n.Title,
			"Description": n.Description,
			"Fields":      n.Fields,
			"Text":        n.Text(),
			"Timestamp":   ts.UTC().Format(time.RFC3339),
		}
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return fmt.Errorf("webhook custom template execute: %w", err)
		}
		// Parse rendered template as JSON to validate it
		if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
			return fmt.Errorf("webhook custom template produced invalid JSON: %w", err)
		}
	default: // "discord" and any other format
		payload = map[string]any{
			"embeds": []embed{{
				Title:       n.Title,
				Description: n.Description,
				Color:       n.Color,
				Fields:      n.Fields,
				Timestamp:   ts.UTC().Format(time.RFC3339),
			}},
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("webhook marshal: %w", err)
	}

	resp, err := w.client.Post(w.URL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// Name returns the name of this notifier.
func (w *WebhookNotifier) Name() string { return "webhook" }
