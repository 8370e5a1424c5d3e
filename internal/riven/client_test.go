package riven

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(Config{BaseURL: server.URL, APIKey: "secret"})
	require.NoError(t, err)
	return client
}

func TestNew_requires_base_url(t *testing.T) {
	_, err := New(Config{APIKey: "secret"})
	require.Error(t, err)
}

func TestNew_requires_api_key(t *testing.T) {
	_, err := New(Config{BaseURL: "http://localhost:8080"})
	require.Error(t, err)
}

func TestNew_trims_trailing_slash(t *testing.T) {
	var gotPath string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))

	_, err := client.ListItems(context.Background(), ListParams{Limit: 10, Page: 1})
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/items", gotPath)
}

func TestClient_sends_api_key_header(t *testing.T) {
	var gotKey string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))

	_, err := client.ListItems(context.Background(), ListParams{Limit: 10, Page: 1})
	require.NoError(t, err)
	assert.Equal(t, "secret", gotKey)
}

func TestAPIError_extracts_detail(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Item not found"}`))
	}))

	err := client.RemoveItems(context.Background(), []string{"42"})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Item not found", apiErr.Detail)
	assert.Contains(t, apiErr.Error(), "Item not found")
}

func TestAPIError_falls_back_to_body_text(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream exploded"))
	}))

	err := client.ResetItems(context.Background(), []string{"1"})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "upstream exploded", apiErr.Detail)
}
