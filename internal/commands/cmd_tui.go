package commands

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/rivenmedia/riven-tui/internal/tui"
)

type TuiCmd struct {
	flags *Flags
	app   *App
}

// NewTuiCmd creates a new tui command.
func NewTuiCmd(flags *Flags, app *App) *TuiCmd {
	return &TuiCmd{
		flags: flags,
		app:   app,
	}
}

// Run executes the TUI. Exported for use as the default command.
func (cmd *TuiCmd) Run(ctx context.Context, c *cli.Command) error {
	if err := cmd.app.RequireService(); err != nil {
		return err
	}
	return tui.Run(tui.Deps{
		Service:    cmd.app.Service,
		Bus:        cmd.app.Bus,
		Config:     cmd.app.Config,
		ConfigPath: cmd.app.ConfigPath,
		KV:         cmd.app.KV,
		Version:    cmd.app.Version,
	})
}
