package batch

import "context"

// Decision is the outcome of reviewing a plan.
type Decision int

const (
	DecisionCancelled Decision = iota
	DecisionConfirmed
)

// Gate asks the user to acknowledge the exact target set and action
// before any network call is issued. Implementations must present every
// target label in full, never a truncated or sampled subset, so the scope
// of an irreversible action can be verified. A cancelled review has no
// side effects: no job is created and nothing is dispatched.
type Gate interface {
	Review(ctx context.Context, plan Plan) (Decision, error)
}

// GateFunc adapts a function to the Gate interface.
type GateFunc func(ctx context.Context, plan Plan) (Decision, error)

// Review implements Gate.
func (f GateFunc) Review(ctx context.Context, plan Plan) (Decision, error) {
	return f(ctx, plan)
}
