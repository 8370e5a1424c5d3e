package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/rivenmedia/riven-tui/internal/batch"
	"github.com/rivenmedia/riven-tui/internal/riven"
)

type ItemsCmd struct {
	flags *Flags
	app   *App

	mediaType string
	state     string
	search    string
	sort      string
	limit     int64
	page      int64

	addType string
	yes     bool
}

// NewItemsCmd creates a new items command.
func NewItemsCmd(flags *Flags, app *App) *ItemsCmd {
	return &ItemsCmd{flags: flags, app: app}
}

func (cmd *ItemsCmd) Register(app *cli.Command) *cli.Command {
	yesFlag := &cli.BoolFlag{
		Name:        "yes",
		Aliases:     []string{"y"},
		Usage:       "skip the confirmation prompt",
		Destination: &cmd.yes,
	}

	actionCommand := func(action batch.Action, usage string) *cli.Command {
		return &cli.Command{
			Name:      string(action),
			Usage:     usage,
			ArgsUsage: "<id> [id...]",
			Flags:     []cli.Flag{yesFlag},
			Action: func(ctx context.Context, c *cli.Command) error {
				return cmd.runAction(ctx, c, action)
			},
		}
	}

	app.Commands = append(app.Commands, &cli.Command{
		Name:  "items",
		Usage: "Inspect and act on library items",
		Commands: []*cli.Command{
			{
				Name:  "ls",
				Usage: "List library items",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "type",
						Aliases:     []string{"t"},
						Usage:       "filter by media type (movie, show, anime)",
						Destination: &cmd.mediaType,
					},
					&cli.StringFlag{
						Name:        "state",
						Aliases:     []string{"s"},
						Usage:       "filter by state (e.g. Completed, Failed, Paused)",
						Destination: &cmd.state,
					},
					&cli.StringFlag{
						Name:        "search",
						Usage:       "title search query",
						Destination: &cmd.search,
					},
					&cli.StringFlag{
						Name:        "sort",
						Usage:       "sort order (date_desc, date_asc, title_asc, title_desc)",
						Value:       riven.SortDateDesc,
						Destination: &cmd.sort,
					},
					&cli.Int64Flag{
						Name:        "limit",
						Usage:       "items per page",
						Value:       50,
						Destination: &cmd.limit,
					},
					&cli.Int64Flag{
						Name:        "page",
						Usage:       "page number",
						Value:       1,
						Destination: &cmd.page,
					},
				},
				Action: cmd.list,
			},
			{
				Name:      "add",
				Usage:     "Add items by external id",
				ArgsUsage: "<id> [id...]",
				Description: `Adds items to the library by external id: tmdb ids for movies,
tvdb ids for shows. The --type flag names the media type of every id given.`,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "type",
						Aliases:     []string{"t"},
						Usage:       "media type of the ids (movie or tv)",
						Required:    true,
						Destination: &cmd.addType,
					},
					yesFlag,
				},
				Action: cmd.add,
			},
			actionCommand(batch.ActionRetry, "Retry items by library id"),
			actionCommand(batch.ActionReset, "Reset items by library id"),
			actionCommand(batch.ActionPause, "Pause items by library id"),
			actionCommand(batch.ActionUnpause, "Unpause items by library id"),
			actionCommand(batch.ActionRemove, "Remove items by library id"),
		},
	})
	return app
}

func (cmd *ItemsCmd) list(ctx context.Context, c *cli.Command) error {
	if err := cmd.app.RequireService(); err != nil {
		return err
	}
	params := riven.ListParams{
		Limit:  int(cmd.limit),
		Page:   int(cmd.page),
		Sort:   cmd.sort,
		Search: cmd.search,
		Type:   cmd.mediaType,
	}
	if cmd.state != "" {
		params.States = []string{cmd.state}
	}

	page, err := cmd.app.Service.ListItems(ctx, params)
	if err != nil {
		return fmt.Errorf("list items: %w", err)
	}

	rows := make([][]string, 0, len(page.Items))
	for _, item := range page.Items {
		requested := ""
		if t, ok := item.RequestedTime(); ok {
			requested = humanize.Time(t)
		}
		rows = append(rows, []string{
			item.StringID(),
			item.Label(),
			item.Type,
			item.State,
			requested,
		})
	}

	fmt.Fprintln(c.Root().Writer, renderTable(
		[]string{"ID", "Title", "Type", "State", "Requested"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
	))
	fmt.Fprintf(c.Root().Writer, "page %d/%d, %d item(s) total\n", page.Page, page.TotalPages, page.TotalItems)
	return nil
}

func (cmd *ItemsCmd) add(ctx context.Context, c *cli.Command) error {
	if err := cmd.app.RequireService(); err != nil {
		return err
	}

	var errs criterio.FieldErrorsBuilder
	mediaType := strings.ToLower(cmd.addType)
	if mediaType != riven.TypeMovie && mediaType != "tv" && mediaType != riven.TypeShow {
		errs = errs.Append("type", fmt.Errorf("must be movie or tv, got %q", cmd.addType))
	}
	if c.Args().Len() == 0 {
		errs = errs.Append("ids", fmt.Errorf("at least one external id is required"))
	}
	if err := errs.ToError(); err != nil {
		return err
	}
	if mediaType == riven.TypeShow {
		mediaType = "tv"
	}

	items := make([]batch.TargetItem, 0, c.Args().Len())
	for _, id := range c.Args().Slice() {
		items = append(items, batch.TargetItem{
			ID:    id,
			Label: fmt.Sprintf("%s %s", mediaType, id),
			Kind:  mediaType,
		})
	}

	return cmd.runPlan(ctx, c, batch.Plan{Items: items, Action: batch.ActionAdd})
}

func (cmd *ItemsCmd) runAction(ctx context.Context, c *cli.Command, action batch.Action) error {
	if err := cmd.app.RequireService(); err != nil {
		return err
	}
	if c.Args().Len() == 0 {
		return criterio.NewFieldErrors("ids", fmt.Errorf("at least one item id is required"))
	}

	items := cmd.app.Service.ResolveIDs(ctx, c.Args().Slice())
	return cmd.runPlan(ctx, c, batch.Plan{Items: items, Action: action})
}

func (cmd *ItemsCmd) runPlan(ctx context.Context, c *cli.Command, plan batch.Plan) error {
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

	out := c.Root().Writer
	reporter := batch.ReporterFunc(func(outcome batch.Outcome, counts batch.Counts) {
		fmt.Fprintf(out, "[%d/%d] %s\n", counts.Done, counts.Total, formatOutcome(outcome, shouldColorize(out)))
	})

	summary, _, err := cmd.app.Service.RunBatch(ctx, plan, nil, reporter)
	if err != nil {
		return fmt.Errorf("run batch: %w", err)
	}
	if summary.Counts.Failed > 0 {
		return cli.Exit(fmt.Sprintf("%d item(s) failed", summary.Counts.Failed), 1)
	}
	return nil
}
