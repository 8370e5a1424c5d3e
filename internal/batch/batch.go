// Package batch implements the throttled bulk operation pipeline: a
// confirmation gate, a burst scheduler, and an executor that applies one
// state-changing action to many remote items with per-item outcomes.
package batch

import (
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// ErrBatchEmpty rejects a submission with zero target items. It is the
// only error that fails a whole batch; everything else is recorded
// per item in the summary.
var ErrBatchEmpty = errors.New("batch contains no items")

// Action is the operation applied uniformly to every item in a batch.
type Action string

const (
	ActionAdd     Action = "add"
	ActionReset   Action = "reset"
	ActionRetry   Action = "retry"
	ActionRemove  Action = "remove"
	ActionPause   Action = "pause"
	ActionUnpause Action = "unpause"
)

// Actions returns all supported actions in display order.
func Actions() []Action {
	return []Action{ActionAdd, ActionReset, ActionRetry, ActionRemove, ActionPause, ActionUnpause}
}

// ParseAction resolves a user-supplied action name.
func ParseAction(s string) (Action, error) {
	for _, a := range Actions() {
		if s == string(a) {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// Destructive reports whether the action permanently removes remote state.
// Destructive actions get stronger confirmation phrasing.
func (a Action) Destructive() bool {
	return a == ActionRemove
}

// TargetItem identifies one remote collection entry selected for a batch.
// The label is shown verbatim during confirmation; Kind is display only.
// Items are immutable once enqueued.
type TargetItem struct {
	ID    string
	Label string
	Kind  string
}

// Plan is a proposed batch awaiting confirmation. No job exists and no
// network call is made until a gate confirms the plan.
type Plan struct {
	Items  []TargetItem
	Action Action
}

// Validate rejects empty plans and unknown actions before review.
func (p Plan) Validate() error {
	if len(p.Items) == 0 {
		return ErrBatchEmpty
	}
	if _, err := ParseAction(string(p.Action)); err != nil {
		return err
	}
	return nil
}

// Job is a confirmed batch of work. Created by NewJob once a plan passes
// the gate; consumed exactly once by the Executor.
type Job struct {
	ID        string
	Action    Action
	Items     []TargetItem
	CreatedAt time.Time
}

// NewJob materializes a confirmed plan into a runnable job.
func NewJob(plan Plan) Job {
	return Job{
		ID:        ulid.Make().String(),
		Action:    plan.Action,
		Items:     plan.Items,
		CreatedAt: time.Now(),
	}
}

// Status classifies a terminal per-item outcome.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Outcome records the terminal result of one item. Appended to the job's
// result log under a mutex and never mutated afterwards.
type Outcome struct {
	Item   TargetItem
	Status Status
	Reason string
}

// Counts holds running totals for a batch in flight.
type Counts struct {
	Total     int
	Done      int
	Succeeded int
	Failed    int
	Skipped   int
}

// Summary aggregates the outcomes of a completed or cancelled job.
type Summary struct {
	JobID      string
	Action     Action
	Outcomes   []Outcome
	Counts     Counts
	Cancelled  bool
	StartedAt  time.Time
	FinishedAt time.Time
}

// FailedOutcomes returns the outcomes that failed, in dispatch order.
func (s Summary) FailedOutcomes() []Outcome {
	var failed []Outcome
	for _, oc := range s.Outcomes {
		if oc.Status == StatusFailed {
			failed = append(failed, oc)
		}
	}
	return failed
}

// SkippedOutcomes returns the outcomes skipped by cancellation.
func (s Summary) SkippedOutcomes() []Outcome {
	var skipped []Outcome
	for _, oc := range s.Outcomes {
		if oc.Status == StatusSkipped {
			skipped = append(skipped, oc)
		}
	}
	return skipped
}
