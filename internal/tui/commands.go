package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rivenmedia/riven-tui/internal/batch"
	"github.com/rivenmedia/riven-tui/internal/riven"
	"github.com/rivenmedia/riven-tui/internal/updatecheck"
)

// fetchTimeout bounds every view-triggered read so a dead backend cannot
// wedge the update loop's in-flight commands.
const fetchTimeout = 30 * time.Second

func fetchCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), fetchTimeout)
}

func (m *Model) fetchDashboardCmd() tea.Cmd {
	svc := m.deps.Service
	return func() tea.Msg {
		ctx, cancel := fetchCtx()
		defer cancel()
		return dashboardMsg{dash: svc.Dashboard(ctx)}
	}
}

func (m *Model) fetchLibraryPageCmd(params riven.ListParams) tea.Cmd {
	svc := m.deps.Service
	return func() tea.Msg {
		ctx, cancel := fetchCtx()
		defer cancel()
		page, err := svc.ListItems(ctx, params)
		if err != nil {
			return errMsg{op: "load library", err: err}
		}
		return libraryPageMsg{page: page}
	}
}

func (m *Model) searchCmd(query string, page int) tea.Cmd {
	svc := m.deps.Service
	return func() tea.Msg {
		ctx, cancel := fetchCtx()
		defer cancel()
		results, err := svc.Search(ctx, query, page)
		if err != nil {
			return errMsg{op: "search", err: err}
		}
		return searchResultsMsg{query: query, page: results}
	}
}

func (m *Model) fetchItemCmd(id, mediaType string) tea.Cmd {
	svc := m.deps.Service
	return func() tea.Msg {
		ctx, cancel := fetchCtx()
		defer cancel()
		item, err := svc.GetItem(ctx, id, mediaType)
		if err != nil {
			return errMsg{op: "load item", err: err}
		}
		return itemDetailMsg{item: item}
	}
}

func (m *Model) fetchCalendarCmd() tea.Cmd {
	svc := m.deps.Service
	return func() tea.Msg {
		ctx, cancel := fetchCtx()
		defer cancel()
		entries, err := svc.Calendar(ctx)
		if err != nil {
			return errMsg{op: "load calendar", err: err}
		}
		return calendarMsg{entries: entries}
	}
}

func (m *Model) scanListCmd(ref string) tea.Cmd {
	svc := m.deps.Service
	return func() tea.Msg {
		// List scans download the whole library; give them more room than
		// an ordinary page fetch.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		report, err := svc.ScanList(ctx, ref)
		if err != nil {
			return errMsg{op: "scan list", err: err}
		}
		return scanResultMsg{report: report}
	}
}

func (m *Model) uploadLogsCmd() tea.Cmd {
	svc := m.deps.Service
	return func() tea.Msg {
		ctx, cancel := fetchCtx()
		defer cancel()
		url, err := svc.UploadLogs(ctx)
		if err != nil {
			return errMsg{op: "upload logs", err: err}
		}
		return logsUploadedMsg{url: url}
	}
}

func (m *Model) updateCheckCmd() tea.Cmd {
	kvStore := m.deps.KV
	version := m.deps.Version
	return func() tea.Msg {
		ctx, cancel := fetchCtx()
		defer cancel()
		result, err := updatecheck.Check(ctx, kvStore, version)
		if err != nil || result == nil {
			return nil
		}
		return updateAvailableMsg{result: result}
	}
}

func (m *Model) scheduleRefreshTick() tea.Cmd {
	interval := m.deps.Config.UI.RefreshInterval()
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return refreshTickMsg(t)
	})
}

// startBatch launches a confirmed plan in a background goroutine and wires
// its progress events into the update loop. The modal already served as the
// confirmation gate, so the service runs gateless. Events arrive through a
// buffered channel; Update re-arms waitForBatchEvent after each one.
func (m *Model) startBatch(plan batch.Plan) tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	events := make(chan tea.Msg, len(plan.Items)+1)
	m.batchCancel = cancel
	m.batchEvents = events

	svc := m.deps.Service
	go func() {
		defer cancel()
		reporter := batch.ReporterFunc(func(outcome batch.Outcome, counts batch.Counts) {
			events <- batchEventMsg{outcome: outcome, counts: counts}
		})
		summary, _, err := svc.RunBatch(ctx, plan, nil, reporter)
		if err != nil {
			events <- batchErrMsg{err: err}
		} else {
			events <- batchDoneMsg{summary: summary}
		}
		close(events)
	}()

	return waitForBatchEvent(events)
}

func waitForBatchEvent(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-events
		if !ok {
			return nil
		}
		return msg
	}
}
