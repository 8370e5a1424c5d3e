package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

type LogsCmd struct {
	flags *Flags
	app   *App
}

// NewLogsCmd creates a new logs command.
func NewLogsCmd(flags *Flags, app *App) *LogsCmd {
	return &LogsCmd{flags: flags, app: app}
}

func (cmd *LogsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "logs",
		Usage: "Work with backend logs",
		Commands: []*cli.Command{
			{
				Name:   "upload",
				Usage:  "Upload backend logs and print the share URL",
				Action: cmd.upload,
			},
			{
				Name:      "show",
				Usage:     "Fetch and print an uploaded log by its share URL",
				ArgsUsage: "<url>",
				Action:    cmd.show,
			},
		},
	})
	return app
}

func (cmd *LogsCmd) upload(ctx context.Context, c *cli.Command) error {
	if err := cmd.app.RequireService(); err != nil {
		return err
	}
	url, err := cmd.app.Service.UploadLogs(ctx)
	if err != nil {
		return fmt.Errorf("upload logs: %w", err)
	}
	fmt.Fprintln(c.Root().Writer, url)
	return nil
}

func (cmd *LogsCmd) show(ctx context.Context, c *cli.Command) error {
	if err := cmd.app.RequireService(); err != nil {
		return err
	}
	if c.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one share url argument")
	}
	text, err := cmd.app.Service.FetchLogText(ctx, c.Args().First())
	if err != nil {
		return fmt.Errorf("fetch log: %w", err)
	}
	fmt.Fprint(c.Root().Writer, text)
	return nil
}
