package tui

import (
	"time"

	"github.com/rivenmedia/riven-tui/internal/batch"
	"github.com/rivenmedia/riven-tui/internal/core/notify"
	"github.com/rivenmedia/riven-tui/internal/library"
	"github.com/rivenmedia/riven-tui/internal/metadata/tmdb"
	"github.com/rivenmedia/riven-tui/internal/riven"
	"github.com/rivenmedia/riven-tui/internal/updatecheck"
)

// errMsg carries a failed fetch into the update loop. op names what was
// being fetched for the toast.
type errMsg struct {
	op  string
	err error
}

type dashboardMsg struct {
	dash library.Dashboard
}

type libraryPageMsg struct {
	page riven.ItemPage
}

type searchResultsMsg struct {
	query string
	page  tmdb.Page
}

type itemDetailMsg struct {
	item riven.MediaItem
}

type calendarMsg struct {
	entries []riven.CalendarEntry
}

type scanResultMsg struct {
	report library.MatchReport
}

type logsUploadedMsg struct {
	url string
}

type notificationMsg struct {
	notification notify.Notification
}

type updateAvailableMsg struct {
	result *updatecheck.Result
}

// refreshTickMsg drives the dashboard auto-refresh.
type refreshTickMsg time.Time

// batchEventMsg is one per-item outcome streamed from a running batch.
type batchEventMsg struct {
	outcome batch.Outcome
	counts  batch.Counts
}

// batchDoneMsg ends a batch run.
type batchDoneMsg struct {
	summary batch.Summary
}

type batchErrMsg struct {
	err error
}
