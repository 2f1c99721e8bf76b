// Package steamnews reads the publish time of the newest news item for a
// Steam app, which is how game patches are detected.
package steamnews

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.steampowered.com"
	CS2AppID       = 730
)

// ErrNoNews is returned when the feed has no items.
var ErrNoNews = errors.New("news feed is empty")

type newsResponse struct {
	AppNews struct {
		AppID     int        `json:"appid"`
		NewsItems []NewsItem `json:"newsitems"`
	} `json:"appnews"`
}

// NewsItem is one entry of the feed.
type NewsItem struct {
	GID   string `json:"gid"`
	Title string `json:"title"`
	URL   string `json:"url"`
	Date  int64  `json:"date"`
}

// Client queries ISteamNews/GetNewsForApp.
type Client struct {
	BaseURL string
	APIKey  string
	AppID   int
	HTTP    *http.Client
}

// New returns a Client for appID with a 15 second request timeout.
func New(apiKey string, appID int) *Client {
	return &Client{
		BaseURL: DefaultBaseURL,
		APIKey:  apiKey,
		AppID:   appID,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Latest returns the newest news item.
func (c *Client) Latest(ctx context.Context) (NewsItem, error) {
	q := url.Values{}
	q.Set("appid", strconv.Itoa(c.AppID))
	q.Set("count", "1")
	q.Set("maxlength", "300")
	q.Set("format", "json")
	if c.APIKey != "" {
		q.Set("key", c.APIKey)
	}
	u := strings.TrimRight(c.BaseURL, "/") + "/ISteamNews/GetNewsForApp/v0002/?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return NewsItem{}, err
	}
	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return NewsItem{}, fmt.Errorf("fetch news: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return NewsItem{}, fmt.Errorf("news feed returned %d", resp.StatusCode)
	}

	var nr newsResponse
	if err := json.NewDecoder(resp.Body).Decode(&nr); err != nil {
		return NewsItem{}, fmt.Errorf("decode news: %w", err)
	}
	if len(nr.AppNews.NewsItems) == 0 {
		return NewsItem{}, ErrNoNews
	}
	return nr.AppNews.NewsItems[0], nil
}

// LatestPublished returns the publish time, in Unix seconds, of the newest item.
func (c *Client) LatestPublished(ctx context.Context) (int64, error) {
	item, err := c.Latest(ctx)
	if err != nil {
		return 0, err
	}
	if item.Date <= 0 {
		return 0, fmt.Errorf("news item %s has no publish date", item.GID)
	}
	return item.Date, nil
}
