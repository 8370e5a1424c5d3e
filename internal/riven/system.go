package riven

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
)

// Stats summarizes the library and backend state.
type Stats struct {
	TotalItems    int            `json:"total_items"`
	TotalMovies   int            `json:"total_movies"`
	TotalShows    int            `json:"total_shows"`
	TotalEpisodes int            `json:"total_episodes"`
	States        map[string]int `json:"states"`
}

// Stats fetches library totals and per-state counts.
func (c *Client) Stats(ctx context.Context) (Stats, error) {
	endpoint := c.baseURL.JoinPath("api", "v1", "stats")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return Stats{}, fmt.Errorf("riven: build stats request: %w", err)
	}
	c.applyHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return Stats{}, fmt.Errorf("riven: get stats: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Stats{}, newAPIError(resp)
	}

	var stats Stats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return Stats{}, fmt.Errorf("riven: decode stats response: %w", err)
	}
	return stats, nil
}

// Services reports per-service health as a name to ok map.
func (c *Client) Services(ctx context.Context) (map[string]bool, error) {
	endpoint := c.baseURL.JoinPath("api", "v1", "services")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("riven: build services request: %w", err)
	}
	c.applyHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("riven: get services: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, newAPIError(resp)
	}

	var services map[string]bool
	if err := json.NewDecoder(resp.Body).Decode(&services); err != nil {
		return nil, fmt.Errorf("riven: decode services response: %w", err)
	}
	return services, nil
}

// CalendarEntry is a single upcoming release.
type CalendarEntry struct {
	ItemType  string `json:"item_type"`
	Title     string `json:"title"`
	ShowTitle string `json:"show_title"`
	Season    *int   `json:"season"`
	Episode   *int   `json:"episode"`
	AiredAt   string `json:"aired_at"`
}

// DisplayTitle prefers the parent show title for episode and season entries.
func (e CalendarEntry) DisplayTitle() string {
	if e.ShowTitle != "" {
		return e.ShowTitle
	}
	if e.Title != "" {
		return e.Title
	}
	return "Unknown"
}

// AiredTime parses the entry's air date.
func (e CalendarEntry) AiredTime() (time.Time, bool) {
	return parseBackendTime(e.AiredAt)
}

// parseBackendTime accepts both ISO-8601 and space-separated timestamps;
// the backend emits either depending on the endpoint.
func parseBackendTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	layout := "2006-01-02 15:04:05"
	if strings.Contains(s, "T") {
		layout = time.RFC3339
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Calendar fetches upcoming releases, ordered by air date.
func (c *Client) Calendar(ctx context.Context) ([]CalendarEntry, error) {
	endpoint := c.baseURL.JoinPath("api", "v1", "calendar")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("riven: build calendar request: %w", err)
	}
	c.applyHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("riven: get calendar: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, newAPIError(resp)
	}

	// The calendar endpoint keys entries by item id.
	var payload struct {
		Data map[string]CalendarEntry `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("riven: decode calendar response: %w", err)
	}

	entries := make([]CalendarEntry, 0, len(payload.Data))
	for _, entry := range payload.Data {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].AiredAt != entries[j].AiredAt {
			return entries[i].AiredAt < entries[j].AiredAt
		}
		return entries[i].DisplayTitle() < entries[j].DisplayTitle()
	})
	return entries, nil
}

// UploadLogs asks the backend to publish its logs and returns the share URL.
func (c *Client) UploadLogs(ctx context.Context) (string, error) {
	endpoint := c.baseURL.JoinPath("api", "v1", "upload_logs")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), nil)
	if err != nil {
		return "", fmt.Errorf("riven: build upload request: %w", err)
	}
	c.applyHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("riven: upload logs: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", newAPIError(resp)
	}

	var payload struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("riven: decode upload response: %w", err)
	}
	if payload.URL == "" {
		return "", errors.New("riven: upload response missing url")
	}
	return payload.URL, nil
}

// FetchLogText downloads the published log text from a share URL.
func (c *Client) FetchLogText(ctx context.Context, logURL string) (string, error) {
	if strings.TrimSpace(logURL) == "" {
		return "", errors.New("riven: log url is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, logURL, nil)
	if err != nil {
		return "", fmt.Errorf("riven: build log fetch request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("riven: fetch log text: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", newAPIError(resp)
	}

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("riven: read log text: %w", err)
	}
	return string(text), nil
}
