package commands

import (
	"fmt"
	"time"

	"github.com/rivenmedia/riven-tui/internal/batch"
	"github.com/rivenmedia/riven-tui/internal/core/config"
	"github.com/rivenmedia/riven-tui/internal/core/kv"
	"github.com/rivenmedia/riven-tui/internal/data/db"
	"github.com/rivenmedia/riven-tui/internal/data/stores"
	"github.com/rivenmedia/riven-tui/internal/library"
	"github.com/rivenmedia/riven-tui/internal/tui/notify"
)

// App aggregates the shared dependencies built in main's Before hook.
// Commands hold a pointer to a pre-allocated App that is populated once
// config, database, and clients are ready.
type App struct {
	Config     *config.Config
	ConfigPath string
	Service    *library.Service
	DB         *db.DB
	KV         kv.KV
	History    *stores.HistoryStore
	Bus        *notify.Bus
	Version    string

	// ServiceDeps is the dependency set Service was built from, kept so a
	// command can rebuild the service with a different throttle.
	ServiceDeps library.Deps
}

// RequireService errors when no backend client could be built, which happens
// when backend.api_key is not configured yet.
func (a *App) RequireService() error {
	if a.Service == nil {
		return fmt.Errorf("backend is not configured: set backend.api_key in the config (run 'riven-tui config init' to create one)")
	}
	return nil
}

// ServiceWithThrottle builds a service identical to App.Service except for
// the burst size and interval of its executor.
func (a *App) ServiceWithThrottle(burstSize int, interval time.Duration) (*library.Service, error) {
	throttle, err := batch.NewThrottle(burstSize, interval)
	if err != nil {
		return nil, err
	}

	deps := a.ServiceDeps
	deps.Executor = batch.NewExecutor(deps.Gateway, throttle, deps.Logger)
	return library.NewService(deps), nil
}
