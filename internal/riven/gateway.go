package riven

import (
	"context"
	"fmt"

	"github.com/rivenmedia/riven-tui/internal/batch"
)

// Gateway adapts the client to the batch executor's dispatch interface.
// Every dispatch is a single-item call, so one item's rejection never taints
// the rest of its burst.
type Gateway struct {
	client *Client
}

// NewGateway wraps a client for use by the batch executor.
func NewGateway(client *Client) *Gateway {
	return &Gateway{client: client}
}

var _ batch.Gateway = (*Gateway)(nil)

// Perform dispatches one action against one target item.
//
// Library actions address items by their Riven ID. Add targets instead carry
// an external ID with Kind naming the media type: movies add by tmdb id,
// shows ("tv") by tvdb id, which is what the add endpoint accepts.
func (g *Gateway) Perform(ctx context.Context, action batch.Action, item batch.TargetItem) error {
	ids := []string{item.ID}

	switch action {
	case batch.ActionRemove:
		return g.client.RemoveItems(ctx, ids)
	case batch.ActionReset:
		return g.client.ResetItems(ctx, ids)
	case batch.ActionRetry:
		return g.client.RetryItems(ctx, ids)
	case batch.ActionPause:
		return g.client.PauseItems(ctx, ids)
	case batch.ActionUnpause:
		return g.client.UnpauseItems(ctx, ids)
	case batch.ActionAdd:
		switch item.Kind {
		case "tv", TypeShow:
			return g.client.AddItems(ctx, "tv", IDKindTVDB, ids)
		case TypeMovie:
			return g.client.AddItems(ctx, TypeMovie, IDKindTMDB, ids)
		default:
			return fmt.Errorf("add needs a movie or tv target, got kind %q", item.Kind)
		}
	default:
		return fmt.Errorf("unsupported action %q", action)
	}
}
