// Package watchtui is a compact terminal dashboard that follows a running
// daemon over its HTTP API.
package watchtui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pedrodeoliamarante/shorts-blocker-app/internal/model"
)

// Stats mirrors the /api/stats response.
type Stats struct {
	Total     int64                `json:"total"`
	Outcomes  map[string]int64     `json:"outcomes"`
	Apps      []model.AppCount     `json:"apps"`
	PerMinute []model.MinuteCounts `json:"per_minute"`
}

// Client is a thin HTTP client for the daemon API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the daemon at baseURL, e.g. "http://127.0.0.1:3000".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *Client) getJSON(path string, dest interface{}) error {
	resp, err := c.http.Get(c.baseURL + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}

// Stats fetches aggregate decision stats.
func (c *Client) Stats() (Stats, error) {
	var s Stats
	err := c.getJSON("/api/stats", &s)
	return s, err
}

// RecentDecisions fetches the newest decisions in chronological order.
func (c *Client) RecentDecisions(limit int) ([]model.Decision, error) {
	var body struct {
		Decisions []model.Decision `json:"decisions"`
	}
	err := c.getJSON(fmt.Sprintf("/api/decisions?limit=%d", limit), &body)
	return body.Decisions, err
}

// Action fetches the currently configured block action.
func (c *Client) Action() (model.ActionKind, error) {
	var body struct {
		Action model.ActionKind `json:"action"`
	}
	err := c.getJSON("/api/action", &body)
	return body.Action, err
}

// SetAction updates the configured block action on the daemon.
func (c *Client) SetAction(kind model.ActionKind) error {
	payload, err := json.Marshal(map[string]string{"action": string(kind)})
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPut, c.baseURL+"/api/action", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("PUT /api/action: status %d", resp.StatusCode)
	}
	return nil
}
