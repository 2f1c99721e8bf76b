// Package panel talks to the game panel's client API: console commands and
// power signals for one server.
package panel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// StatusError is returned when the panel answers with a non-2xx status.
type StatusError struct {
	Op     string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("panel %s returned %d", e.Op, e.Status)
	}
	return fmt.Sprintf("panel %s returned %d: %s", e.Op, e.Status, e.Body)
}

// Client sends requests for a single server.
type Client struct {
	BaseURL  string
	Token    string
	ServerID string
	HTTP     *http.Client
}

// New returns a Client with a 10 second request timeout.
func New(baseURL, token, serverID string) *Client {
	return &Client{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Token:    token,
		ServerID: serverID,
		HTTP:     &http.Client{Timeout: 10 * time.Second},
	}
}

// SendCommand runs command on the server console.
func (c *Client) SendCommand(ctx context.Context, command string) error {
	return c.post(ctx, "command", map[string]string{"command": command})
}

// Restart asks the panel to restart the server.
func (c *Client) Restart(ctx context.Context) error {
	return c.post(ctx, "power", map[string]string{"signal": "restart"})
}

func (c *Client) post(ctx context.Context, op string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("panel %s marshal: %w", op, err)
	}

	url := fmt.Sprintf("%s/api/client/servers/%s/%s", c.BaseURL, c.ServerID, op)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("panel %s request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("panel %s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Op: op, Status: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	return nil
}
