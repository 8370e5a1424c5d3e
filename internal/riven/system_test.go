package riven

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStats_decodes_totals_and_states(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/stats", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"total_items": 120,
			"total_movies": 80,
			"total_shows": 40,
			"states": {"Completed": 100, "Failed": 3, "Downloaded": 17}
		}`))
	}))

	stats, err := client.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 120, stats.TotalItems)
	assert.Equal(t, 80, stats.TotalMovies)
	assert.Equal(t, 3, stats.States["Failed"])
}

func TestServices_decodes_health_map(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/services", r.URL.Path)
		_, _ = w.Write([]byte(`{"realdebrid": true, "torrentio": false}`))
	}))

	services, err := client.Services(context.Background())
	require.NoError(t, err)
	assert.True(t, services["realdebrid"])
	assert.False(t, services["torrentio"])
}

func TestCalendar_flattens_and_orders_entries(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/calendar", r.URL.Path)
		_, _ = w.Write([]byte(`{"data": {
			"2": {"item_type": "episode", "show_title": "Severance", "title": "Hide and Seek", "season": 3, "episode": 4, "aired_at": "2026-09-02T20:00:00Z"},
			"1": {"item_type": "movie", "title": "Dune Part Three", "aired_at": "2026-08-29 00:00:00"}
		}}`))
	}))

	entries, err := client.Calendar(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "Dune Part Three", entries[0].DisplayTitle())
	assert.Equal(t, "Severance", entries[1].DisplayTitle())

	aired, ok := entries[0].AiredTime()
	require.True(t, ok)
	assert.Equal(t, 29, aired.Day())

	aired, ok = entries[1].AiredTime()
	require.True(t, ok)
	assert.Equal(t, 2, aired.Day())

	require.NotNil(t, entries[1].Season)
	assert.Equal(t, 3, *entries[1].Season)
}

func TestUploadLogs_returns_share_url(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/upload_logs", r.URL.Path)
		_, _ = w.Write([]byte(`{"url": "https://paste.example/abc"}`))
	}))

	url, err := client.UploadLogs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://paste.example/abc", url)
}

func TestUploadLogs_missing_url_is_error(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))

	_, err := client.UploadLogs(context.Background())
	require.Error(t, err)
}

func TestFetchLogText_reads_body(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("line one\nline two\n"))
	}))

	// FetchLogText takes a full URL, not a path on the API base.
	text, err := client.FetchLogText(context.Background(), clientBaseURL(client)+"/logs/abc")
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two\n", text)
}

func clientBaseURL(c *Client) string {
	return c.baseURL.String()
}
