package riven

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Item states reported by the backend, in pipeline order.
const (
	StateUnknown            = "Unknown"
	StateUnreleased         = "Unreleased"
	StateOngoing            = "Ongoing"
	StateRequested          = "Requested"
	StateIndexed            = "Indexed"
	StateScraped            = "Scraped"
	StateDownloaded         = "Downloaded"
	StateSymlinked          = "Symlinked"
	StateCompleted          = "Completed"
	StatePartiallyCompleted = "PartiallyCompleted"
	StateFailed             = "Failed"
	StatePaused             = "Paused"
)

// States returns every item state the backend reports, in pipeline order.
func States() []string {
	return []string{
		StateUnknown,
		StateUnreleased,
		StateOngoing,
		StateRequested,
		StateIndexed,
		StateScraped,
		StateDownloaded,
		StateSymlinked,
		StateCompleted,
		StatePartiallyCompleted,
		StateFailed,
		StatePaused,
	}
}

// Media types accepted by the library list filter.
const (
	TypeMovie = "movie"
	TypeShow  = "show"
	TypeAnime = "anime"
)

// Sort orders accepted by the list endpoint.
const (
	SortDateDesc  = "date_desc"
	SortDateAsc   = "date_asc"
	SortTitleAsc  = "title_asc"
	SortTitleDesc = "title_desc"
)

// ExternalID tolerates both string and numeric JSON encodings. The backend
// emits numbers for tmdb/tvdb ids and strings for imdb ids.
type ExternalID string

// UnmarshalJSON implements json.Unmarshaler.
func (e *ExternalID) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*e = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*e = ExternalID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*e = ExternalID(n.String())
	return nil
}

// ParentIDs holds the external ids of an episode's or season's parent show.
type ParentIDs struct {
	TMDBID ExternalID `json:"tmdb_id"`
	TVDBID ExternalID `json:"tvdb_id"`
	IMDBID ExternalID `json:"imdb_id"`
}

// MediaItem is a single entry in the Riven library.
type MediaItem struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Type        string     `json:"type"`
	State       string     `json:"state"`
	TMDBID      ExternalID `json:"tmdb_id"`
	TVDBID      ExternalID `json:"tvdb_id"`
	IMDBID      ExternalID `json:"imdb_id"`
	AiredAt     string     `json:"aired_at"`
	RequestedAt string     `json:"requested_at"`
	ParentIDs   *ParentIDs `json:"parent_ids"`
}

// Label renders the item for confirmation listings and progress lines.
func (m MediaItem) Label() string {
	title := m.Title
	if title == "" {
		title = fmt.Sprintf("item %d", m.ID)
	}
	if len(m.AiredAt) >= 4 {
		return fmt.Sprintf("%s (%s)", title, m.AiredAt[:4])
	}
	return title
}

// RequestedTime parses the item's request timestamp.
func (m MediaItem) RequestedTime() (time.Time, bool) {
	return parseBackendTime(m.RequestedAt)
}

// StringID returns the item ID in the form the mutation endpoints expect.
func (m MediaItem) StringID() string {
	return strconv.FormatInt(m.ID, 10)
}

// ListParams are the filters accepted by the library list endpoint.
type ListParams struct {
	Limit     int
	Page      int
	Sort      string
	Search    string
	Type      string
	States    []string
	Extended  bool
	CountOnly bool
}

// ItemPage is one page of library items.
type ItemPage struct {
	Items      []MediaItem `json:"items"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalItems int         `json:"total_items"`
	TotalPages int         `json:"total_pages"`
}

// ListItems fetches a page of library items.
func (c *Client) ListItems(ctx context.Context, params ListParams) (ItemPage, error) {
	endpoint := c.baseURL.JoinPath("api", "v1", "items")

	q := url.Values{}
	q.Set("limit", strconv.Itoa(params.Limit))
	q.Set("page", strconv.Itoa(params.Page))
	q.Set("extended", strconv.FormatBool(params.Extended))
	q.Set("count_only", strconv.FormatBool(params.CountOnly))
	if params.Sort != "" {
		q.Set("sort", params.Sort)
	}
	if params.Search != "" {
		q.Set("search", params.Search)
	}
	if params.Type != "" {
		q.Set("type", params.Type)
	}
	for _, state := range params.States {
		q.Add("states", state)
	}
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return ItemPage{}, fmt.Errorf("riven: build list request: %w", err)
	}
	c.applyHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return ItemPage{}, fmt.Errorf("riven: list items: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ItemPage{}, newAPIError(resp)
	}

	var page ItemPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return ItemPage{}, fmt.Errorf("riven: decode list response: %w", err)
	}
	return page, nil
}

// GetItem fetches a single item by its library ID.
func (c *Client) GetItem(ctx context.Context, id string, mediaType string) (MediaItem, error) {
	if id == "" {
		return MediaItem{}, errors.New("riven: item id is required")
	}
	endpoint := c.baseURL.JoinPath("api", "v1", "items", id)
	if mediaType != "" {
		q := url.Values{}
		q.Set("media_type", mediaType)
		endpoint.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return MediaItem{}, fmt.Errorf("riven: build get request: %w", err)
	}
	c.applyHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return MediaItem{}, fmt.Errorf("riven: get item: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return MediaItem{}, newAPIError(resp)
	}

	var item MediaItem
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		return MediaItem{}, fmt.Errorf("riven: decode item response: %w", err)
	}
	return item, nil
}

// IDKind selects which external-ID namespace an add request uses.
type IDKind string

// External-ID namespaces the add endpoint accepts.
const (
	IDKindTMDB IDKind = "tmdb"
	IDKindTVDB IDKind = "tvdb"
)

func (k IDKind) payloadKey() (string, error) {
	switch k {
	case IDKindTMDB:
		return "tmdb_ids", nil
	case IDKindTVDB:
		return "tvdb_ids", nil
	default:
		return "", fmt.Errorf("riven: unknown id kind %q", string(k))
	}
}

// AddItems requests new items by external ID. Movies are added by tmdb id,
// shows by tvdb id with media type "tv".
func (c *Client) AddItems(ctx context.Context, mediaType string, kind IDKind, ids []string) error {
	if len(ids) == 0 {
		return errors.New("riven: no external ids given")
	}
	key, err := kind.payloadKey()
	if err != nil {
		return err
	}

	payload, err := json.Marshal(map[string]any{
		"media_type": mediaType,
		key:          ids,
	})
	if err != nil {
		return fmt.Errorf("riven: encode add request: %w", err)
	}

	endpoint := c.baseURL.JoinPath("api", "v1", "items", "add")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("riven: build add request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.applyHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("riven: add items: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return newAPIError(resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// RemoveItems removes items from the library by ID.
func (c *Client) RemoveItems(ctx context.Context, ids []string) error {
	return c.mutateItems(ctx, http.MethodDelete, "remove", ids)
}

// ResetItems resets items back to the start of the pipeline.
func (c *Client) ResetItems(ctx context.Context, ids []string) error {
	return c.mutateItems(ctx, http.MethodPost, "reset", ids)
}

// RetryItems re-queues failed items.
func (c *Client) RetryItems(ctx context.Context, ids []string) error {
	return c.mutateItems(ctx, http.MethodPost, "retry", ids)
}

// PauseItems stops the backend from processing items.
func (c *Client) PauseItems(ctx context.Context, ids []string) error {
	return c.mutateItems(ctx, http.MethodPost, "pause", ids)
}

// UnpauseItems resumes processing of paused items.
func (c *Client) UnpauseItems(ctx context.Context, ids []string) error {
	return c.mutateItems(ctx, http.MethodPost, "unpause", ids)
}

// mutateItems posts an id-list payload to one of the sibling item mutation
// endpoints, which all share the same wire shape.
func (c *Client) mutateItems(ctx context.Context, method, action string, ids []string) error {
	if len(ids) == 0 {
		return errors.New("riven: no item ids given")
	}

	payload, err := json.Marshal(map[string][]string{"ids": ids})
	if err != nil {
		return fmt.Errorf("riven: encode %s request: %w", action, err)
	}

	endpoint := c.baseURL.JoinPath("api", "v1", "items", action)
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("riven: build %s request: %w", action, err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.applyHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("riven: %s items: %w", action, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return newAPIError(resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
