package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rivenmedia/riven-tui/internal/batch"
	"github.com/rivenmedia/riven-tui/internal/metadata/mdblist"
	"github.com/rivenmedia/riven-tui/internal/riven"
)

func testIndex(t *testing.T, items ...riven.MediaItem) libraryIndex {
	t.Helper()
	index := make(libraryIndex)
	for _, item := range items {
		indexItem(index, item)
	}
	return index
}

func TestMatchEntries_movies_match_by_tmdb_id(t *testing.T) {
	index := testIndex(t,
		riven.MediaItem{ID: 10, Title: "Heat", Type: "movie", TMDBID: "949"},
		riven.MediaItem{ID: 11, Title: "Ronin", Type: "movie", TMDBID: "8834"},
	)

	report := matchEntries(index, []mdblist.ListItem{
		{ID: 949, Title: "Heat", MediaType: "movie"},
		{ID: 77777, Title: "Not In Library", MediaType: "movie"},
	})

	require.Len(t, report.Matched, 1)
	assert.Equal(t, "10", report.Matched[0].ID)
	require.Len(t, report.Unmatched, 1)
	assert.Equal(t, "Not In Library", report.Unmatched[0].Title)
}

func TestMatchEntries_shows_match_by_tvdb_then_imdb(t *testing.T) {
	index := testIndex(t,
		riven.MediaItem{ID: 20, Title: "Severance", Type: "show", TVDBID: "371980"},
		riven.MediaItem{ID: 21, Title: "Dark", Type: "show", IMDBID: "tt5753856"},
	)

	report := matchEntries(index, []mdblist.ListItem{
		{ID: 95396, Title: "Severance", MediaType: "show", TVDBID: 371980},
		{ID: 70523, Title: "Dark", MediaType: "show", IMDBID: "tt5753856"},
	})

	require.Len(t, report.Matched, 2)
	assert.Equal(t, "20", report.Matched[0].ID)
	assert.Equal(t, "21", report.Matched[1].ID)
	assert.Empty(t, report.Unmatched)
}

func TestMatchEntries_parent_ids_match_episode_only_libraries(t *testing.T) {
	// The library holds an episode; the list names the show by tvdb id.
	index := testIndex(t, riven.MediaItem{
		ID:   300,
		Type: "episode",
		ParentIDs: &riven.ParentIDs{
			TVDBID: "81189",
		},
	})

	report := matchEntries(index, []mdblist.ListItem{
		{ID: 1396, Title: "Breaking Bad", MediaType: "show", TVDBID: 81189},
	})

	require.Len(t, report.Matched, 1)
	assert.Equal(t, "300", report.Matched[0].ID)
}

func TestMatchEntries_deduplicates_preserving_order(t *testing.T) {
	index := testIndex(t,
		riven.MediaItem{ID: 1, Title: "Alien", Type: "movie", TMDBID: "348", IMDBID: "tt0078748"},
		riven.MediaItem{ID: 2, Title: "Aliens", Type: "movie", TMDBID: "679"},
	)

	report := matchEntries(index, []mdblist.ListItem{
		{ID: 348, Title: "Alien", MediaType: "movie"},
		{ID: 0, Title: "Alien again", MediaType: "movie", IMDBID: "tt0078748"},
		{ID: 679, Title: "Aliens", MediaType: "movie"},
	})

	require.Len(t, report.Matched, 2)
	assert.Equal(t, "1", report.Matched[0].ID)
	assert.Equal(t, "2", report.Matched[1].ID)
	assert.Empty(t, report.Unmatched)
}

func TestMatchEntries_type_mismatch_does_not_match(t *testing.T) {
	index := testIndex(t,
		riven.MediaItem{ID: 5, Title: "Fargo", Type: "movie", TMDBID: "275"},
	)

	report := matchEntries(index, []mdblist.ListItem{
		{ID: 275, Title: "Fargo", MediaType: "show", TVDBID: 275},
	})

	assert.Empty(t, report.Matched)
	require.Len(t, report.Unmatched, 1)
}

func TestMatchReport_MatchedPlan(t *testing.T) {
	report := MatchReport{
		Matched: []batch.TargetItem{
			{ID: "1", Label: "Alien (1979)", Kind: "movie"},
		},
	}

	plan := report.MatchedPlan(batch.ActionRetry)
	assert.Equal(t, batch.ActionRetry, plan.Action)
	require.Len(t, plan.Items, 1)
	assert.Equal(t, "1", plan.Items[0].ID)
}

func TestMatchReport_AddPlan_uses_external_ids(t *testing.T) {
	report := MatchReport{
		Unmatched: []mdblist.ListItem{
			{ID: 603, Title: "The Matrix", MediaType: "movie"},
			{ID: 95396, Title: "Severance", MediaType: "show", TVDBID: 371980},
			{Title: "No IDs At All", MediaType: "movie"},
		},
	}

	plan, unaddable := report.AddPlan()
	assert.Equal(t, batch.ActionAdd, plan.Action)
	require.Len(t, plan.Items, 2)
	assert.Equal(t, "603", plan.Items[0].ID)
	assert.Equal(t, "movie", plan.Items[0].Kind)
	assert.Equal(t, "371980", plan.Items[1].ID)
	assert.Equal(t, "show", plan.Items[1].Kind)
	require.Len(t, unaddable, 1)
	assert.Equal(t, "No IDs At All", unaddable[0].Title)
}

func TestCanonicalType(t *testing.T) {
	assert.Equal(t, "show", canonicalType("tv"))
	assert.Equal(t, "show", canonicalType("Show"))
	assert.Equal(t, "show", canonicalType("episode"))
	assert.Equal(t, "movie", canonicalType("movie"))
	assert.Equal(t, "movie", canonicalType(""))
}
