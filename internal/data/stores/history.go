package stores

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rivenmedia/riven-tui/internal/batch"
	"github.com/rivenmedia/riven-tui/internal/data/db"
)

// HistoryStore archives completed batch summaries.
type HistoryStore struct {
	db *db.DB
}

// NewHistoryStore creates a new SQLite-backed batch history store.
func NewHistoryStore(db *db.DB) *HistoryStore {
	return &HistoryStore{db: db}
}

// HistoryFailure is one failed item preserved with its reason.
type HistoryFailure struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Reason string `json:"reason"`
}

// HistoryEntry is an archived batch summary.
type HistoryEntry struct {
	JobID      string
	Action     batch.Action
	Counts     batch.Counts
	Cancelled  bool
	Failures   []HistoryFailure
	StartedAt  time.Time
	FinishedAt time.Time
}

// Archive persists a completed batch summary.
func (s *HistoryStore) Archive(ctx context.Context, sum batch.Summary) error {
	failures := make([]HistoryFailure, 0, sum.Counts.Failed)
	for _, oc := range sum.FailedOutcomes() {
		failures = append(failures, HistoryFailure{
			ID:     oc.Item.ID,
			Label:  oc.Item.Label,
			Reason: oc.Reason,
		})
	}
	failuresJSON, err := json.Marshal(failures)
	if err != nil {
		return fmt.Errorf("history archive %s marshal failures: %w", sum.JobID, err)
	}

	_, err = s.db.Conn().ExecContext(ctx, `
		INSERT INTO batch_history (id, action, total, succeeded, failed, skipped, cancelled, failures, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sum.JobID,
		string(sum.Action),
		sum.Counts.Total,
		sum.Counts.Succeeded,
		sum.Counts.Failed,
		sum.Counts.Skipped,
		boolToInt(sum.Cancelled),
		string(failuresJSON),
		sum.StartedAt.UnixNano(),
		sum.FinishedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("history archive %s: %w", sum.JobID, err)
	}
	return nil
}

// List returns archived summaries, newest first. A non-positive limit
// returns everything.
func (s *HistoryStore) List(ctx context.Context, limit int) ([]HistoryEntry, error) {
	query := `
		SELECT id, action, total, succeeded, failed, skipped, cancelled, failures, started_at, finished_at
		FROM batch_history
		ORDER BY finished_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Conn().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("history list: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []HistoryEntry
	for rows.Next() {
		var (
			entry        HistoryEntry
			action       string
			cancelled    int
			failuresJSON string
			startedAt    int64
			finishedAt   int64
		)
		err := rows.Scan(
			&entry.JobID,
			&action,
			&entry.Counts.Total,
			&entry.Counts.Succeeded,
			&entry.Counts.Failed,
			&entry.Counts.Skipped,
			&cancelled,
			&failuresJSON,
			&startedAt,
			&finishedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("history list scan: %w", err)
		}

		if err := json.Unmarshal([]byte(failuresJSON), &entry.Failures); err != nil {
			return nil, fmt.Errorf("history list %s unmarshal failures: %w", entry.JobID, err)
		}

		entry.Action = batch.Action(action)
		entry.Cancelled = cancelled != 0
		entry.Counts.Done = entry.Counts.Succeeded + entry.Counts.Failed + entry.Counts.Skipped
		entry.StartedAt = time.Unix(0, startedAt)
		entry.FinishedAt = time.Unix(0, finishedAt)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Prune deletes entries that finished more than olderThan ago and returns
// how many were removed.
func (s *HistoryStore) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan).UnixNano()
	res, err := s.db.Conn().ExecContext(ctx,
		"DELETE FROM batch_history WHERE finished_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("history prune: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("history prune rows affected: %w", err)
	}
	return n, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
