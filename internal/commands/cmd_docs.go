package commands

import (
	"context"
	"embed"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/urfave/cli/v3"

	"github.com/rivenmedia/riven-tui/internal/core/styles"
)

//go:embed docs/*.md
var docsFS embed.FS

type DocsCmd struct {
	flags *Flags
	app   *App
	plain bool
}

// NewDocsCmd creates a new docs command.
func NewDocsCmd(flags *Flags, app *App) *DocsCmd {
	return &DocsCmd{flags: flags, app: app}
}

func (cmd *DocsCmd) Register(app *cli.Command) *cli.Command {
	topic := func(name, usage, file string) *cli.Command {
		return &cli.Command{
			Name:  name,
			Usage: usage,
			Action: func(ctx context.Context, c *cli.Command) error {
				return cmd.render(c, file)
			},
		}
	}

	app.Commands = append(app.Commands, &cli.Command{
		Name:  "docs",
		Usage: "Built-in documentation",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "plain",
				Usage:       "print raw markdown without terminal styling",
				Destination: &cmd.plain,
			},
		},
		Commands: []*cli.Command{
			topic("bulk", "How bulk operations and throttling work", "docs/bulk.md"),
			topic("config", "Configuration file reference", "docs/config.md"),
		},
	})
	return app
}

func (cmd *DocsCmd) render(c *cli.Command, file string) error {
	raw, err := docsFS.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read doc: %w", err)
	}

	if cmd.plain || !shouldColorize(os.Stdout) {
		fmt.Fprint(c.Root().Writer, string(raw))
		return nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStyles(styles.GlamourStyle()),
		glamour.WithWordWrap(min(terminalWidth(), 100)),
	)
	if err != nil {
		return fmt.Errorf("build renderer: %w", err)
	}

	rendered, err := renderer.Render(string(raw))
	if err != nil {
		return fmt.Errorf("render doc: %w", err)
	}
	fmt.Fprint(c.Root().Writer, rendered)
	return nil
}
