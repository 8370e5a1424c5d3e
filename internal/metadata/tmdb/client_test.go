package tmdb

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

	client, err := New(Config{BearerToken: "token", BaseURL: server.URL})
	require.NoError(t, err)
	return client
}

func TestNew_requires_bearer_token(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)

	_, err = New(Config{BearerToken: "   "})
	require.Error(t, err)
}

func TestClient_sends_bearer_header(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"page":1,"results":[]}`))
	}))

	_, err := client.SearchMulti(context.Background(), "heat", 1)
	require.NoError(t, err)
	assert.Equal(t, "Bearer token", gotAuth)
}

func TestSearchMulti_filters_people(t *testing.T) {
	var gotQuery string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		_, _ = w.Write([]byte(`{
			"page": 1,
			"results": [
				{"id": 949, "media_type": "movie", "title": "Heat", "release_date": "1995-12-15"},
				{"id": 1158, "media_type": "person", "name": "Al Pacino"},
				{"id": 1396, "media_type": "tv", "name": "Breaking Bad", "first_air_date": "2008-01-20"}
			],
			"total_pages": 1,
			"total_results": 3
		}`))
	}))

	page, err := client.SearchMulti(context.Background(), "heat", 1)
	require.NoError(t, err)
	assert.Equal(t, "heat", gotQuery)
	require.Len(t, page.Results, 2)
	assert.Equal(t, "Heat", page.Results[0].DisplayTitle())
	assert.Equal(t, "Breaking Bad", page.Results[1].DisplayTitle())
}

func TestSearchMulti_rejects_empty_query(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}))

	_, err := client.SearchMulti(context.Background(), "  ", 1)
	require.Error(t, err)
}

func TestTrending_validates_window(t *testing.T) {
	var gotPath string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"page":1,"results":[]}`))
	}))

	_, err := client.Trending(context.Background(), "month", 1)
	require.Error(t, err)

	_, err = client.Trending(context.Background(), TrendingDay, 1)
	require.NoError(t, err)
	assert.Equal(t, "/trending/all/day", gotPath)
}

func TestDetails_appends_external_ids(t *testing.T) {
	var gotAppend string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAppend = r.URL.Query().Get("append_to_response")
		_, _ = w.Write([]byte(`{
			"id": 949, "title": "Heat", "runtime": 170, "status": "Released",
			"external_ids": {"imdb_id": "tt0113277", "tvdb_id": 0}
		}`))
	}))

	details, err := client.Details(context.Background(), "movie", 949)
	require.NoError(t, err)
	assert.Equal(t, "external_ids", gotAppend)
	assert.Equal(t, "movie", details.MediaType)
	assert.Equal(t, "tt0113277", details.ExternalIDs.IMDBID)
	assert.Equal(t, 170, details.Runtime)
}

func TestDetails_rejects_bad_input(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}))

	_, err := client.Details(context.Background(), "book", 1)
	require.Error(t, err)

	_, err = client.Details(context.Background(), "movie", 0)
	require.Error(t, err)
}

func TestFindByExternalID_movie_wins(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "imdb_id", r.URL.Query().Get("external_source"))
		_, _ = w.Write([]byte(`{
			"movie_results": [{"id": 949, "title": "Heat"}],
			"tv_results": [{"id": 1396, "name": "Breaking Bad"}]
		}`))
	}))

	result, err := client.FindByExternalID(context.Background(), "tt0113277", SourceIMDB)
	require.NoError(t, err)
	assert.Equal(t, "movie", result.MediaType)
	assert.EqualValues(t, 949, result.ID)
}

func TestFindByExternalID_falls_back_to_tv(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"movie_results": [],
			"tv_results": [{"id": 81189, "name": "Narcos"}]
		}`))
	}))

	result, err := client.FindByExternalID(context.Background(), "81189", SourceTVDB)
	require.NoError(t, err)
	assert.Equal(t, "tv", result.MediaType)
}

func TestFindByExternalID_no_match(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"movie_results": [], "tv_results": []}`))
	}))

	_, err := client.FindByExternalID(context.Background(), "tt0000000", SourceIMDB)
	require.True(t, errors.Is(err, ErrNoMatch))
}

func TestFetchPage_non_200(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := client.SearchMulti(context.Background(), "heat", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestResult_Year(t *testing.T) {
	assert.Equal(t, "1995", Result{ReleaseDate: "1995-12-15"}.Year())
	assert.Equal(t, "2008", Result{FirstAirDate: "2008-01-20"}.Year())
	assert.Empty(t, Result{}.Year())
}
