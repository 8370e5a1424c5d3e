// Package mdblist fetches the public JSON export of an MDBList list. The
// mass manager matches the entries against the Riven library to build bulk
// action targets.
package mdblist

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

// DefaultBaseURL is the public MDBList site root.
const DefaultBaseURL = "https://mdblist.com"

const defaultTimeout = 15 * time.Second

// ErrBadListRef is returned when a list reference cannot be normalized.
var ErrBadListRef = errors.New("mdblist: list reference must be a list URL or user/slug pair")

// Config describes the MDBList client configuration.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
}

// Client fetches public MDBList lists. No authentication is required for
// the JSON export of public lists.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates an MDBList client.
func New(cfg Config) *Client {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// ListItem is a single entry of an MDBList list. The primary ID is a TMDB
// id for movies and usually a TVDB id for shows; imdb is carried alongside
// when the export includes it.
type ListItem struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	MediaType   string `json:"mediatype"`
	IMDBID      string `json:"imdb_id"`
	TVDBID      int64  `json:"tvdbid"`
	ReleaseYear int    `json:"release_year"`
}

// Label renders the entry for confirmation listings.
func (i ListItem) Label() string {
	title := i.Title
	if title == "" {
		title = fmt.Sprintf("list item %d", i.ID)
	}
	if i.ReleaseYear > 0 {
		return fmt.Sprintf("%s (%d)", title, i.ReleaseYear)
	}
	return title
}

// ExternalID returns the id an add request should use: the tvdb id for
// shows when the export carries one, the primary id otherwise.
func (i ListItem) ExternalID() string {
	switch strings.ToLower(i.MediaType) {
	case "show", "tv":
		if i.TVDBID != 0 {
			return strconv.FormatInt(i.TVDBID, 10)
		}
	}
	if i.ID == 0 {
		return ""
	}
	return strconv.FormatInt(i.ID, 10)
}

// NormalizeRef turns a user-supplied list reference into the JSON export
// URL. Accepted forms:
//
//	https://mdblist.com/lists/<user>/<slug>
//	https://mdblist.com/lists/<user>/<slug>/json
//	<user>/<slug>
func (c *Client) NormalizeRef(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", ErrBadListRef
	}

	path := ref
	if strings.Contains(ref, "://") {
		u, err := url.Parse(ref)
		if err != nil {
			return "", fmt.Errorf("%w: %s", ErrBadListRef, ref)
		}
		path = strings.TrimPrefix(u.Path, "/")
		path = strings.TrimPrefix(path, "lists/")
	}

	path = strings.Trim(path, "/")
	path = strings.TrimSuffix(path, "/json")
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", fmt.Errorf("%w: %s", ErrBadListRef, ref)
	}

	return fmt.Sprintf("%s/lists/%s/%s/json", c.baseURL, parts[0], parts[1]), nil
}

// Items fetches every entry of the referenced list.
func (c *Client) Items(ctx context.Context, ref string) ([]ListItem, error) {
	endpoint, err := c.NormalizeRef(ref)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("mdblist: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mdblist: fetch list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mdblist: fetch list returned %d", resp.StatusCode)
	}

	var items []ListItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("mdblist: decode list response: %w", err)
	}
	return items, nil
}
