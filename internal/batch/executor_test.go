package batch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGateway records calls and fails items on demand.
type fakeGateway struct {
	mu      sync.Mutex
	calls   []string
	failure func(item TargetItem) error
	onCall  func(item TargetItem)
}

func (g *fakeGateway) Perform(_ context.Context, _ Action, item TargetItem) error {
	g.mu.Lock()
	g.calls = append(g.calls, item.ID)
	g.mu.Unlock()

	if g.onCall != nil {
		g.onCall(item)
	}
	if g.failure != nil {
		return g.failure(item)
	}
	return nil
}

func (g *fakeGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

// recordingReporter collects progress events in arrival order.
type recordingReporter struct {
	mu     sync.Mutex
	events []Counts
}

func (r *recordingReporter) Progress(_ Outcome, counts Counts) {
	r.mu.Lock()
	r.events = append(r.events, counts)
	r.mu.Unlock()
}

func newTestExecutor(t *testing.T, gateway Gateway, burstSize int, interval time.Duration) *Executor {
	t.Helper()
	th, err := NewThrottle(burstSize, interval)
	require.NoError(t, err)
	return NewExecutor(gateway, th, zerolog.Nop())
}

func TestExecutor_Submit_empty_job_is_rejected(t *testing.T) {
	gw := &fakeGateway{}
	ex := newTestExecutor(t, gw, 5, 20*time.Millisecond)

	_, err := ex.Submit(context.Background(), Job{Action: ActionReset}, nil)

	require.ErrorIs(t, err, ErrBatchEmpty)
	assert.Equal(t, 0, gw.callCount(), "no gateway calls before pre-flight validation")
}

func TestExecutor_Submit_all_succeed(t *testing.T) {
	gw := &fakeGateway{}
	ex := newTestExecutor(t, gw, 5, 20*time.Millisecond)

	job := NewJob(Plan{Items: makeItems(7), Action: ActionReset})
	summary, err := ex.Submit(context.Background(), job, nil)

	require.NoError(t, err)
	assert.Equal(t, job.ID, summary.JobID)
	assert.Equal(t, ActionReset, summary.Action)
	assert.False(t, summary.Cancelled)
	require.Len(t, summary.Outcomes, 7)
	assert.Equal(t, Counts{Total: 7, Done: 7, Succeeded: 7}, summary.Counts)
	assert.Equal(t, 7, gw.callCount())
	assert.Empty(t, summary.FailedOutcomes())
}

func TestExecutor_Submit_two_bursts_are_interval_apart(t *testing.T) {
	const interval = 60 * time.Millisecond

	var (
		mu    sync.Mutex
		times []time.Time
	)
	gw := &fakeGateway{onCall: func(TargetItem) {
		mu.Lock()
		times = append(times, time.Now())
		mu.Unlock()
	}}
	ex := newTestExecutor(t, gw, 5, interval)

	job := NewJob(Plan{Items: makeItems(7), Action: ActionRetry})
	summary, err := ex.Submit(context.Background(), job, nil)

	require.NoError(t, err)
	assert.Equal(t, 7, summary.Counts.Succeeded)
	require.Len(t, times, 7)

	// Five calls land in the first burst and two in the second. Exact
	// spacing is asserted in the throttle tests; here the midpoint of the
	// interval cleanly separates the two groups.
	mu.Lock()
	defer mu.Unlock()
	first := times[0]
	late := 0
	for _, ts := range times {
		if ts.Sub(first) >= interval/2 {
			late++
		}
	}
	assert.Equal(t, 2, late)
}

func TestExecutor_Submit_item_failure_does_not_abort(t *testing.T) {
	gw := &fakeGateway{failure: func(item TargetItem) error {
		if item.ID == "2" {
			return errors.New("not found")
		}
		return nil
	}}
	ex := newTestExecutor(t, gw, 5, 20*time.Millisecond)

	job := NewJob(Plan{Items: makeItems(2), Action: ActionRemove})
	summary, err := ex.Submit(context.Background(), job, nil)

	require.NoError(t, err)
	assert.Equal(t, 2, gw.callCount())
	assert.Equal(t, 1, summary.Counts.Succeeded)
	assert.Equal(t, 1, summary.Counts.Failed)

	failed := summary.FailedOutcomes()
	require.Len(t, failed, 1)
	assert.Equal(t, "2", failed[0].Item.ID)
	assert.Equal(t, "not found", failed[0].Reason)
}

func TestExecutor_Submit_backend_outage_attempts_every_item(t *testing.T) {
	gw := &fakeGateway{failure: func(TargetItem) error {
		return errors.New("connection refused")
	}}
	ex := newTestExecutor(t, gw, 3, 20*time.Millisecond)

	job := NewJob(Plan{Items: makeItems(8), Action: ActionRetry})
	summary, err := ex.Submit(context.Background(), job, nil)

	require.NoError(t, err)
	assert.Equal(t, 8, gw.callCount(), "systemic failure must not truncate the batch")
	assert.Equal(t, 8, summary.Counts.Failed)
	assert.False(t, summary.Cancelled)
}

func TestExecutor_Submit_cancel_skips_undispatched_items(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	gw := &fakeGateway{onCall: func(TargetItem) {
		cancel()
	}}
	ex := newTestExecutor(t, gw, 2, 50*time.Millisecond)

	job := NewJob(Plan{Items: makeItems(6), Action: ActionPause})
	summary, err := ex.Submit(ctx, job, nil)

	require.NoError(t, err)
	assert.True(t, summary.Cancelled)
	require.Len(t, summary.Outcomes, 6, "every item still gets a terminal outcome")
	assert.Equal(t, 2, gw.callCount())
	assert.Equal(t, 2, summary.Counts.Succeeded)
	assert.Equal(t, 4, summary.Counts.Skipped)

	// Skipped entries are exactly the tail that was never released.
	skipped := summary.SkippedOutcomes()
	require.Len(t, skipped, 4)
	for i, oc := range skipped {
		assert.Equal(t, job.Items[2+i].ID, oc.Item.ID)
	}
}

func TestExecutor_Submit_reports_running_counts(t *testing.T) {
	gw := &fakeGateway{}
	ex := newTestExecutor(t, gw, 3, 20*time.Millisecond)
	reporter := &recordingReporter{}

	job := NewJob(Plan{Items: makeItems(5), Action: ActionUnpause})
	summary, err := ex.Submit(context.Background(), job, reporter)

	require.NoError(t, err)
	require.Len(t, reporter.events, 5)

	// Done climbs one event at a time and ends at the total.
	for i, counts := range reporter.events {
		assert.Equal(t, i+1, counts.Done)
		assert.Equal(t, 5, counts.Total)
	}
	assert.Equal(t, summary.Counts, reporter.events[len(reporter.events)-1])
}

func TestPlan_Validate(t *testing.T) {
	err := Plan{Action: ActionReset}.Validate()
	require.ErrorIs(t, err, ErrBatchEmpty)

	err = Plan{Items: makeItems(1), Action: Action("explode")}.Validate()
	require.Error(t, err)

	err = Plan{Items: makeItems(1), Action: ActionRemove}.Validate()
	require.NoError(t, err)
}

func TestParseAction(t *testing.T) {
	for _, a := range Actions() {
		got, err := ParseAction(string(a))
		require.NoError(t, err)
		assert.Equal(t, a, got)
	}

	_, err := ParseAction("destroy")
	require.Error(t, err)
}
