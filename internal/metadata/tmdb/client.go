// Package tmdb provides a client for The Movie Database API, used for
// search, trending, and external-id lookups.
package tmdb

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

// DefaultBaseURL is the public TMDB v3 API root.
const DefaultBaseURL = "https://api.themoviedb.org/3"

const defaultTimeout = 10 * time.Second

// Trending windows accepted by the trending endpoint.
const (
	TrendingDay  = "day"
	TrendingWeek = "week"
)

// External-id sources accepted by the find endpoint.
const (
	SourceIMDB = "imdb_id"
	SourceTVDB = "tvdb_id"
)

// ErrNoMatch is returned when a find lookup has no movie or TV result.
var ErrNoMatch = errors.New("tmdb: no match for external id")

// Config describes the TMDB client configuration.
type Config struct {
	BearerToken string
	BaseURL     string
	HTTPClient  *http.Client
}

// Client provides access to the TMDB API.
type Client struct {
	token   string
	baseURL string
	http    *http.Client
}

// New creates a TMDB client.
func New(cfg Config) (*Client, error) {
	token := strings.TrimSpace(cfg.BearerToken)
	if token == "" {
		return nil, errors.New("tmdb: bearer token is required")
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	return &Client{
		token:   token,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}, nil
}

func (c *Client) applyHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
}

// Result represents a single TMDB search or trending match.
type Result struct {
	ID           int64   `json:"id"`
	MediaType    string  `json:"media_type"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	Popularity   float64 `json:"popularity"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int64   `json:"vote_count"`
}

// DisplayTitle returns the movie title or show name, whichever is set.
func (r Result) DisplayTitle() string {
	if r.Title != "" {
		return r.Title
	}
	if r.Name != "" {
		return r.Name
	}
	return "Unknown"
}

// Year returns the release year, or an empty string when unknown.
func (r Result) Year() string {
	date := r.ReleaseDate
	if date == "" {
		date = r.FirstAirDate
	}
	if len(date) < 4 {
		return ""
	}
	return date[:4]
}

// Page models the TMDB paginated response envelope.
type Page struct {
	Page         int      `json:"page"`
	Results      []Result `json:"results"`
	TotalPages   int      `json:"total_pages"`
	TotalResults int      `json:"total_results"`
}

// SearchMulti searches movies and shows for the supplied query. Person
// results are dropped.
func (c *Client) SearchMulti(ctx context.Context, query string, page int) (Page, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Page{}, errors.New("tmdb: query must not be empty")
	}
	if page <= 0 {
		page = 1
	}

	endpoint, err := url.Parse(c.baseURL + "/search/multi")
	if err != nil {
		return Page{}, fmt.Errorf("tmdb: parse url: %w", err)
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", "false")
	params.Set("language", "en-US")
	params.Set("page", strconv.Itoa(page))
	endpoint.RawQuery = params.Encode()

	return c.fetchPage(ctx, endpoint.String(), "multi search")
}

// Trending fetches trending movies and shows for the given window.
func (c *Client) Trending(ctx context.Context, window string, page int) (Page, error) {
	if window != TrendingDay && window != TrendingWeek {
		return Page{}, fmt.Errorf("tmdb: unknown trending window %q", window)
	}
	if page <= 0 {
		page = 1
	}

	endpoint, err := url.Parse(fmt.Sprintf("%s/trending/all/%s", c.baseURL, window))
	if err != nil {
		return Page{}, fmt.Errorf("tmdb: parse url: %w", err)
	}
	params := url.Values{}
	params.Set("language", "en-US")
	params.Set("page", strconv.Itoa(page))
	endpoint.RawQuery = params.Encode()

	return c.fetchPage(ctx, endpoint.String(), "trending")
}

func (c *Client) fetchPage(ctx context.Context, endpoint, op string) (Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Page{}, fmt.Errorf("tmdb: build request: %w", err)
	}
	c.applyHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("tmdb: %s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Page{}, fmt.Errorf("tmdb: %s returned %d", op, resp.StatusCode)
	}

	var payload Page
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Page{}, fmt.Errorf("tmdb: decode %s response: %w", op, err)
	}

	// People show up in multi and trending payloads; only movies and
	// shows are actionable here.
	kept := payload.Results[:0]
	for _, r := range payload.Results {
		if r.MediaType == "person" {
			continue
		}
		kept = append(kept, r)
	}
	payload.Results = kept

	return payload, nil
}

// ExternalIDs carries the cross-provider ids attached to a details payload.
type ExternalIDs struct {
	IMDBID string `json:"imdb_id"`
	TVDBID int64  `json:"tvdb_id"`
}

// Details is the full metadata payload for one movie or show.
type Details struct {
	Result
	Runtime     int         `json:"runtime"`
	Status      string      `json:"status"`
	ExternalIDs ExternalIDs `json:"external_ids"`
}

// Details fetches metadata for a movie or show, external ids included.
func (c *Client) Details(ctx context.Context, mediaType string, id int64) (Details, error) {
	if mediaType != "movie" && mediaType != "tv" {
		return Details{}, fmt.Errorf("tmdb: unknown media type %q", mediaType)
	}
	if id <= 0 {
		return Details{}, errors.New("tmdb: id must be positive")
	}

	endpoint, err := url.Parse(fmt.Sprintf("%s/%s/%d", c.baseURL, mediaType, id))
	if err != nil {
		return Details{}, fmt.Errorf("tmdb: parse url: %w", err)
	}
	params := url.Values{}
	params.Set("append_to_response", "external_ids")
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return Details{}, fmt.Errorf("tmdb: build request: %w", err)
	}
	c.applyHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return Details{}, fmt.Errorf("tmdb: details: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Details{}, fmt.Errorf("tmdb: details returned %d", resp.StatusCode)
	}

	var payload Details
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Details{}, fmt.Errorf("tmdb: decode details response: %w", err)
	}
	payload.MediaType = mediaType
	return payload, nil
}

// FindByExternalID resolves an imdb or tvdb id to a TMDB entry. Movie
// results win over TV results when both match.
func (c *Client) FindByExternalID(ctx context.Context, externalID, source string) (Result, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return Result{}, errors.New("tmdb: external id must not be empty")
	}
	if source != SourceIMDB && source != SourceTVDB {
		return Result{}, fmt.Errorf("tmdb: unknown external source %q", source)
	}

	endpoint, err := url.Parse(c.baseURL + "/find/" + url.PathEscape(externalID))
	if err != nil {
		return Result{}, fmt.Errorf("tmdb: parse url: %w", err)
	}
	params := url.Values{}
	params.Set("external_source", source)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return Result{}, fmt.Errorf("tmdb: build request: %w", err)
	}
	c.applyHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("tmdb: find: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("tmdb: find returned %d", resp.StatusCode)
	}

	var payload struct {
		MovieResults []Result `json:"movie_results"`
		TVResults    []Result `json:"tv_results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Result{}, fmt.Errorf("tmdb: decode find response: %w", err)
	}

	if len(payload.MovieResults) > 0 {
		r := payload.MovieResults[0]
		r.MediaType = "movie"
		return r, nil
	}
	if len(payload.TVResults) > 0 {
		r := payload.TVResults[0]
		r.MediaType = "tv"
		return r, nil
	}
	return Result{}, ErrNoMatch
}
