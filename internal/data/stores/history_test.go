package stores

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rivenmedia/riven-tui/internal/batch"
)

func testSummary(jobID string, finished time.Time) batch.Summary {
	return batch.Summary{
		JobID:  jobID,
		Action: batch.ActionRemove,
		Outcomes: []batch.Outcome{
			{Item: batch.TargetItem{ID: "1", Label: "Heat (1995)"}, Status: batch.StatusSucceeded},
			{Item: batch.TargetItem{ID: "2", Label: "Ronin (1998)"}, Status: batch.StatusFailed, Reason: "not found"},
			{Item: batch.TargetItem{ID: "3", Label: "Thief (1981)"}, Status: batch.StatusSkipped, Reason: "cancelled"},
		},
		Counts:     batch.Counts{Total: 3, Done: 3, Succeeded: 1, Failed: 1, Skipped: 1},
		Cancelled:  true,
		StartedAt:  finished.Add(-2 * time.Second),
		FinishedAt: finished,
	}
}

func TestHistoryStore_ArchiveAndList(t *testing.T) {
	store := NewHistoryStore(openTestDB(t))
	ctx := context.Background()

	sum := testSummary("job-1", time.Now())
	require.NoError(t, store.Archive(ctx, sum))

	entries, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entry := entries[0]
	assert.Equal(t, "job-1", entry.JobID)
	assert.Equal(t, batch.ActionRemove, entry.Action)
	assert.Equal(t, sum.Counts, entry.Counts)
	assert.True(t, entry.Cancelled)
	require.Len(t, entry.Failures, 1)
	assert.Equal(t, HistoryFailure{ID: "2", Label: "Ronin (1998)", Reason: "not found"}, entry.Failures[0])
	assert.WithinDuration(t, sum.FinishedAt, entry.FinishedAt, time.Millisecond)
}

func TestHistoryStore_ListNewestFirstWithLimit(t *testing.T) {
	store := NewHistoryStore(openTestDB(t))
	ctx := context.Background()

	base := time.Now()
	require.NoError(t, store.Archive(ctx, testSummary("old", base.Add(-time.Hour))))
	require.NoError(t, store.Archive(ctx, testSummary("mid", base.Add(-time.Minute))))
	require.NoError(t, store.Archive(ctx, testSummary("new", base)))

	entries, err := store.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "new", entries[0].JobID)
	assert.Equal(t, "mid", entries[1].JobID)
}

func TestHistoryStore_ListEmpty(t *testing.T) {
	store := NewHistoryStore(openTestDB(t))

	entries, err := store.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestHistoryStore_Prune(t *testing.T) {
	store := NewHistoryStore(openTestDB(t))
	ctx := context.Background()

	require.NoError(t, store.Archive(ctx, testSummary("ancient", time.Now().Add(-48*time.Hour))))
	require.NoError(t, store.Archive(ctx, testSummary("recent", time.Now())))

	pruned, err := store.Prune(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 1, pruned)

	entries, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "recent", entries[0].JobID)
}

func TestHistoryStore_DuplicateJobID(t *testing.T) {
	store := NewHistoryStore(openTestDB(t))
	ctx := context.Background()

	sum := testSummary("job-1", time.Now())
	require.NoError(t, store.Archive(ctx, sum))
	assert.Error(t, store.Archive(ctx, sum), "job ids are the primary key")
}
