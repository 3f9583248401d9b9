package mirror

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is the HTTP client for the tickd sync server. A zero principal id
// disables syncing; callers check PrincipalID before constructing one.
type Client struct {
	baseURL   string
	principal string
	http      *http.Client
}

// NewClient builds a client against the given server base URL for one
// principal. The base URL must not include the /api/v1 prefix.
func NewClient(baseURL, principal string) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		principal: principal,
		http:      &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) PrincipalID() string { return c.principal }

func (c *Client) timersURL() string {
	return fmt.Sprintf("%s/api/v1/principals/%s/timers", c.baseURL, url.PathEscape(c.principal))
}

// FetchTimers returns all mirrored timer records for the principal.
func (c *Client) FetchTimers(ctx context.Context) ([]Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.timersURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("build fetch request: %w", err)
	}
	var records []Record
	if err := c.do(req, &records); err != nil {
		return nil, fmt.Errorf("fetch timers: %w", err)
	}
	return records, nil
}

// UpsertTimers replaces the server rows for the given records.
func (c *Client) UpsertTimers(ctx context.Context, records []Record) error {
	body, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode timers: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.timersURL(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build upsert request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("upsert timers: %w", err)
	}
	return nil
}

// DeleteTimer removes one timer row by name.
func (c *Client) DeleteTimer(ctx context.Context, name string) error {
	u := c.timersURL() + "/" + url.PathEscape(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return fmt.Errorf("build delete request: %w", err)
	}
	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("delete timer %q: %w", name, err)
	}
	return nil
}

// InsertActivity appends one completed activity record.
func (c *Client) InsertActivity(ctx context.Context, rec ActivityRecord) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode activity: %w", err)
	}
	u := fmt.Sprintf("%s/api/v1/principals/%s/activities", c.baseURL, url.PathEscape(c.principal))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build activity request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("server returned %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
