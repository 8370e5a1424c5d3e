package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gofrs/flock"
	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/rivenmedia/riven-tui/internal/batch"
	"github.com/rivenmedia/riven-tui/internal/core/styles"
)

// bulkLockFilename guards against two bulk runs hammering the backend at
// once. The TUI is not locked out; the lock only covers headless runs.
const bulkLockFilename = "riven-tui-bulk.lock"

type BulkCmd struct {
	flags *Flags
	app   *App

	action   string
	listRef  string
	ids      []string
	burst    int64
	interval float64
	yes      bool
	dryRun   bool
}

// NewBulkCmd creates a new bulk command.
func NewBulkCmd(flags *Flags, app *App) *BulkCmd {
	return &BulkCmd{flags: flags, app: app}
}

func (cmd *BulkCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "bulk",
		Usage: "Run a throttled bulk action against the library",
		UsageText: `riven-tui bulk --action retry --list https://mdblist.com/lists/user/slug
riven-tui bulk --action remove --ids 101,102,103 --yes
riven-tui bulk --action add --list user/slug --dry-run`,
		Description: `Runs one action over many library items in throttled bursts.

Targets come from an MDBList list (--list, matched against the library) or
from explicit item ids (--ids). Every target is listed before anything runs
and the batch must be confirmed unless --yes is given. Items are dispatched
in bursts; the interval between burst starts defaults to the config values.

Interrupting a run (ctrl-c) stops at the next burst boundary: in-flight
items finish, unreleased items are reported as skipped.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "action",
				Aliases:     []string{"a"},
				Usage:       "action to perform (add, reset, retry, remove, pause, unpause)",
				Required:    true,
				Destination: &cmd.action,
			},
			&cli.StringFlag{
				Name:        "list",
				Aliases:     []string{"l"},
				Usage:       "mdblist url or user/slug to target",
				Destination: &cmd.listRef,
			},
			&cli.StringSliceFlag{
				Name:        "ids",
				Usage:       "comma-separated library item ids to target",
				Destination: &cmd.ids,
			},
			&cli.Int64Flag{
				Name:        "burst",
				Usage:       "items dispatched per burst (default from config)",
				Destination: &cmd.burst,
			},
			&cli.Float64Flag{
				Name:        "interval",
				Usage:       "seconds between burst starts (default from config)",
				Destination: &cmd.interval,
			},
			&cli.BoolFlag{
				Name:        "yes",
				Aliases:     []string{"y"},
				Usage:       "skip the confirmation prompt",
				Destination: &cmd.yes,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "show the target set and exit without dispatching",
				Destination: &cmd.dryRun,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *BulkCmd) validate() error {
	var errs criterio.FieldErrorsBuilder

	if _, err := batch.ParseAction(cmd.action); err != nil {
		errs = errs.Append("action", err)
	}
	if cmd.listRef == "" && len(cmd.ids) == 0 {
		errs = errs.Append("targets", fmt.Errorf("one of --list or --ids is required"))
	}
	if cmd.listRef != "" && len(cmd.ids) > 0 {
		errs = errs.Append("targets", fmt.Errorf("--list and --ids are mutually exclusive"))
	}
	if cmd.burst < 0 {
		errs = errs.Append("burst", fmt.Errorf("must be at least 1"))
	}
	if cmd.interval < 0 {
		errs = errs.Append("interval", fmt.Errorf("must be positive"))
	}

	return errs.ToError()
}

func (cmd *BulkCmd) run(ctx context.Context, c *cli.Command) error {
	if err := cmd.app.RequireService(); err != nil {
		return err
	}
	if err := cmd.validate(); err != nil {
		return err
	}
	action, _ := batch.ParseAction(cmd.action)

	lock := flock.New(filepath.Join(cmd.app.Config.DataDir, bulkLockFilename))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire bulk lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another bulk operation is already running")
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			log.Warn().Err(err).Msg("release bulk lock")
		}
	}()

	// Ctrl-c cancels at the next burst boundary instead of killing the
	// process mid-dispatch.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	plan, err := cmd.buildPlan(ctx, c, action)
	if err != nil {
		return err
	}
	if len(plan.Items) == 0 {
		fmt.Fprintln(c.Root().Writer, "nothing to do")
		return nil
	}

	cmd.printTargets(c, plan)

	if cmd.dryRun {
		burst := cmd.app.Config.Batch.BurstSize
		if cmd.burst > 0 {
			burst = int(cmd.burst)
		}
		fmt.Fprintf(c.Root().Writer, "\ndry run: %d item(s) would be %s'd in bursts of %d\n",
			len(plan.Items), plan.Action, burst)
		return nil
	}

	if !cmd.yes {
		confirmed, err := confirmPlan(plan)
		if err != nil {
			return fmt.Errorf("confirm: %w", err)
		}
		if !confirmed {
			fmt.Fprintln(c.Root().Writer, "aborted")
			return nil
		}
	}

	return cmd.execute(ctx, c, plan)
}

// buildPlan resolves the target set from the list reference or the ids.
func (cmd *BulkCmd) buildPlan(ctx context.Context, c *cli.Command, action batch.Action) (batch.Plan, error) {
	svc := cmd.app.Service

	if cmd.listRef == "" {
		ids := splitIDs(cmd.ids)
		items := svc.ResolveIDs(ctx, ids)
		return batch.Plan{Items: items, Action: action}, nil
	}

	report, err := svc.ScanList(ctx, cmd.listRef)
	if err != nil {
		return batch.Plan{}, err
	}
	fmt.Fprintln(c.Root().Writer, report.Summary())

	if action == batch.ActionAdd {
		plan, unaddable := report.AddPlan()
		for _, entry := range unaddable {
			fmt.Fprintf(c.Root().Writer, "skipping %s: no usable external id\n", entry.Label())
		}
		return plan, nil
	}
	return report.MatchedPlan(action), nil
}

// splitIDs flattens repeated and comma-separated --ids values.
func splitIDs(raw []string) []string {
	var ids []string
	for _, chunk := range raw {
		for _, id := range strings.Split(chunk, ",") {
			id = strings.TrimSpace(id)
			if id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

func (cmd *BulkCmd) printTargets(c *cli.Command, plan batch.Plan) {
	rows := make([][]string, 0, len(plan.Items))
	for i, item := range plan.Items {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			item.ID,
			item.Label,
			item.Kind,
		})
	}
	fmt.Fprintf(c.Root().Writer, "%s %d item(s):\n", strings.ToUpper(string(plan.Action)), len(plan.Items))
	fmt.Fprintln(c.Root().Writer, renderTable(
		[]string{"#", "ID", "Title", "Type"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft},
	))
}

func (cmd *BulkCmd) execute(ctx context.Context, c *cli.Command, plan batch.Plan) error {
	out := c.Root().Writer
	colorize := shouldColorize(os.Stdout)

	svc := cmd.app.Service
	if cmd.burst > 0 || cmd.interval > 0 {
		burst := cmd.app.Config.Batch.BurstSize
		if cmd.burst > 0 {
			burst = int(cmd.burst)
		}
		interval := cmd.app.Config.Batch.Interval()
		if cmd.interval > 0 {
			interval = time.Duration(cmd.interval * float64(time.Second))
		}
		override, err := cmd.app.ServiceWithThrottle(burst, interval)
		if err != nil {
			return err
		}
		svc = override
	}

	reporter := batch.ReporterFunc(func(outcome batch.Outcome, counts batch.Counts) {
		line := formatOutcome(outcome, colorize)
		fmt.Fprintf(out, "[%d/%d] %s\n", counts.Done, counts.Total, line)
	})

	started := time.Now()
	summary, _, err := svc.RunBatch(ctx, plan, nil, reporter)
	if err != nil {
		return fmt.Errorf("run batch: %w", err)
	}

	cmd.printSummary(c, summary, time.Since(started))

	if summary.Counts.Failed > 0 {
		return cli.Exit(fmt.Sprintf("%d item(s) failed", summary.Counts.Failed), 1)
	}
	return nil
}

func formatOutcome(outcome batch.Outcome, colorize bool) string {
	var icon string
	var style func(string) string

	switch outcome.Status {
	case batch.StatusSucceeded:
		icon = styles.IconOK
		style = func(s string) string { return styles.OutcomeSucceededStyle.Render(s) }
	case batch.StatusFailed:
		icon = styles.IconFail
		style = func(s string) string { return styles.OutcomeFailedStyle.Render(s) }
	default:
		icon = styles.IconSkip
		style = func(s string) string { return styles.OutcomeSkippedStyle.Render(s) }
	}

	line := fmt.Sprintf("%s %s", icon, outcome.Item.Label)
	if outcome.Reason != "" {
		line += " (" + outcome.Reason + ")"
	}
	if colorize {
		return style(line)
	}
	return line
}

func (cmd *BulkCmd) printSummary(c *cli.Command, summary batch.Summary, took time.Duration) {
	verdict := "completed"
	if summary.Cancelled {
		verdict = "cancelled at burst boundary"
	}

	fmt.Fprintf(c.Root().Writer, "\nbatch %s %s (%s)\n", summary.JobID, verdict, humanize.RelTime(time.Now().Add(-took), time.Now(), "", ""))
	fmt.Fprintln(c.Root().Writer, renderTable(
		[]string{"Total", "Succeeded", "Failed", "Skipped"},
		[][]string{{
			fmt.Sprintf("%d", summary.Counts.Total),
			fmt.Sprintf("%d", summary.Counts.Succeeded),
			fmt.Sprintf("%d", summary.Counts.Failed),
			fmt.Sprintf("%d", summary.Counts.Skipped),
		}},
		[]columnAlignment{alignRight, alignRight, alignRight, alignRight},
	))
}
