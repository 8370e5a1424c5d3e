package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"
)

type HistoryCmd struct {
	flags *Flags
	app   *App

	limit     int64
	failures  bool
	prune     bool
	olderThan int64
}

// NewHistoryCmd creates a new history command.
func NewHistoryCmd(flags *Flags, app *App) *HistoryCmd {
	return &HistoryCmd{flags: flags, app: app}
}

func (cmd *HistoryCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "history",
		Usage: "Show past bulk operations",
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:        "limit",
				Aliases:     []string{"n"},
				Usage:       "number of entries to show",
				Value:       20,
				Destination: &cmd.limit,
			},
			&cli.BoolFlag{
				Name:        "failures",
				Usage:       "show per-item failures for each entry",
				Destination: &cmd.failures,
			},
			&cli.BoolFlag{
				Name:        "prune",
				Usage:       "delete entries older than --older-than days",
				Destination: &cmd.prune,
			},
			&cli.Int64Flag{
				Name:        "older-than",
				Usage:       "age threshold for --prune, in days",
				Value:       90,
				Destination: &cmd.olderThan,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *HistoryCmd) run(ctx context.Context, c *cli.Command) error {
	if cmd.prune {
		if cmd.olderThan < 1 {
			return criterio.NewFieldErrors("older-than", fmt.Errorf("must be at least 1 day"))
		}
		pruned, err := cmd.app.History.Prune(ctx, time.Duration(cmd.olderThan)*24*time.Hour)
		if err != nil {
			return fmt.Errorf("prune history: %w", err)
		}
		fmt.Fprintf(c.Root().Writer, "pruned %d entr(ies)\n", pruned)
		return nil
	}

	entries, err := cmd.app.History.List(ctx, int(cmd.limit))
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(c.Root().Writer, "no bulk operations recorded yet")
		return nil
	}

	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		status := "completed"
		if entry.Cancelled {
			status = "cancelled"
		}
		rows = append(rows, []string{
			entry.JobID,
			string(entry.Action),
			fmt.Sprintf("%d", entry.Counts.Total),
			fmt.Sprintf("%d", entry.Counts.Succeeded),
			fmt.Sprintf("%d", entry.Counts.Failed),
			fmt.Sprintf("%d", entry.Counts.Skipped),
			status,
			humanize.Time(entry.FinishedAt),
		})
	}

	fmt.Fprintln(c.Root().Writer, renderTable(
		[]string{"Job", "Action", "Total", "OK", "Failed", "Skipped", "Status", "When"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft, alignLeft},
	))

	if cmd.failures {
		for _, entry := range entries {
			if len(entry.Failures) == 0 {
				continue
			}
			fmt.Fprintf(c.Root().Writer, "\n%s (%s) failures:\n", entry.JobID, entry.Action)
			for _, failure := range entry.Failures {
				fmt.Fprintf(c.Root().Writer, "  %s %s: %s\n", failure.ID, failure.Label, failure.Reason)
			}
		}
	}
	return nil
}
