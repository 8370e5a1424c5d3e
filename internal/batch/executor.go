package batch

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Gateway performs one state-changing action against the backend. A nil
// return is a success; any error becomes that item's failure reason,
// whether it came from the transport or the remote side.
type Gateway interface {
	Perform(ctx context.Context, action Action, item TargetItem) error
}

// Executor drives a confirmed job to completion through the throttle and
// the gateway, recording exactly one terminal outcome per item. It holds
// no job state once Submit returns.
type Executor struct {
	gateway  Gateway
	throttle *Throttle
	log      zerolog.Logger
}

// NewExecutor creates an executor bound to a gateway and throttle.
func NewExecutor(gateway Gateway, throttle *Throttle, log zerolog.Logger) *Executor {
	return &Executor{
		gateway:  gateway,
		throttle: throttle,
		log:      log.With().Str("component", "batch").Logger(),
	}
}

// Submit runs the job and returns its summary. An empty job is rejected
// with ErrBatchEmpty before any gateway call. Per-item failures are
// recorded, never escalated, and never retried here; a backend outage
// still attempts every remaining item so the summary reflects true
// per-item state. Cancelling ctx takes effect at burst boundaries:
// in-flight dispatches finish, the remaining items are marked skipped,
// and the partial summary is returned with a nil error.
func (e *Executor) Submit(ctx context.Context, job Job, reporter Reporter) (Summary, error) {
	if len(job.Items) == 0 {
		return Summary{}, ErrBatchEmpty
	}
	if reporter == nil {
		reporter = NopReporter{}
	}

	log := e.log.With().Str("job_id", job.ID).Str("action", string(job.Action)).Logger()
	log.Info().
		Int("items", len(job.Items)).
		Int("burst_size", e.throttle.BurstSize()).
		Dur("interval", e.throttle.Interval()).
		Msg("batch started")

	started := time.Now()

	var (
		mu       sync.Mutex
		outcomes = make([]Outcome, 0, len(job.Items))
		counts   = Counts{Total: len(job.Items)}
	)
	// The reporter runs under the lock so events arrive in record order
	// with strictly increasing counts.
	record := func(item TargetItem, status Status, reason string) {
		oc := Outcome{Item: item, Status: status, Reason: reason}

		mu.Lock()
		defer mu.Unlock()

		outcomes = append(outcomes, oc)
		counts.Done++
		switch status {
		case StatusSucceeded:
			counts.Succeeded++
		case StatusFailed:
			counts.Failed++
		case StatusSkipped:
			counts.Skipped++
		}
		reporter.Progress(oc, counts)
	}

	// In-flight calls are allowed to finish even when ctx is cancelled;
	// the throttle stops admitting bursts at the next boundary instead.
	dispatchCtx := context.WithoutCancel(ctx)

	burstNum := 0
	unreleased := e.throttle.Run(ctx, job.Items, func(burst []TargetItem) {
		burstNum++
		log.Debug().Int("burst", burstNum).Int("size", len(burst)).Msg("dispatching burst")

		g := new(errgroup.Group)
		g.SetLimit(e.throttle.BurstSize())
		for _, item := range burst {
			g.Go(func() error {
				if err := e.gateway.Perform(dispatchCtx, job.Action, item); err != nil {
					log.Warn().Str("item_id", item.ID).Str("item", item.Label).Err(err).Msg("item failed")
					record(item, StatusFailed, err.Error())
					return nil
				}
				record(item, StatusSucceeded, "")
				return nil
			})
		}
		_ = g.Wait()
	})

	cancelled := unreleased > 0
	if cancelled {
		for _, item := range job.Items[len(job.Items)-unreleased:] {
			record(item, StatusSkipped, "")
		}
	}

	summary := Summary{
		JobID:      job.ID,
		Action:     job.Action,
		Outcomes:   outcomes,
		Counts:     counts,
		Cancelled:  cancelled,
		StartedAt:  started,
		FinishedAt: time.Now(),
	}

	log.Info().
		Int("succeeded", counts.Succeeded).
		Int("failed", counts.Failed).
		Int("skipped", counts.Skipped).
		Bool("cancelled", cancelled).
		Dur("elapsed", summary.FinishedAt.Sub(started)).
		Msg("batch finished")

	return summary, nil
}
