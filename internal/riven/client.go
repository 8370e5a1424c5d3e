// Package riven provides an HTTP client for the Riven media server API.
//
// Every endpoint authenticates with an x-api-key header. The mutating item
// endpoints accept lists of item IDs; Gateway adapts them to the
// one-item-per-dispatch model the batch executor works in.
package riven

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds a single API call when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// Config describes the Riven client configuration.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client wraps the Riven REST API.
type Client struct {
	baseURL *url.URL
	apiKey  string
	http    *http.Client
}

// New creates a Client from the supplied configuration.
func New(cfg Config) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		return nil, errors.New("riven: base url is required")
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("riven: api key is required")
	}
	baseURL, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return nil, fmt.Errorf("riven: parse base url: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    httpClient,
	}, nil
}

func (c *Client) applyHeaders(req *http.Request) {
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")
}

// APIError is a non-2xx response from the Riven API. Detail carries the
// backend's own message when the error body had one.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("riven: status %d", e.Status)
	}
	return fmt.Sprintf("riven: %s (status %d)", e.Detail, e.Status)
}

// newAPIError reads up to 4KiB of the response body and pulls the "detail"
// field out of JSON error payloads, falling back to the raw body text.
func newAPIError(resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	detail := strings.TrimSpace(string(body))

	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		detail = payload.Detail
	}

	return &APIError{Status: resp.StatusCode, Detail: detail}
}
