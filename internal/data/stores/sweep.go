package stores

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// RunSweeper periodically deletes expired KV entries. It blocks until the
// context is cancelled, so callers run it in a goroutine.
func RunSweeper(ctx context.Context, kvStore *KVStore, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := kvStore.SweepExpired(ctx); err != nil {
				log.Debug().Err(err).Msg("kv sweep failed")
			}
		}
	}
}
