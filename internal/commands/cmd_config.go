package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/rivenmedia/riven-tui/internal/core/config"
	"github.com/rivenmedia/riven-tui/internal/core/styles"
)

type ConfigCmd struct {
	flags  *Flags
	app    *App
	format string
	force  bool
}

// NewConfigCmd creates a new config command.
func NewConfigCmd(flags *Flags, app *App) *ConfigCmd {
	return &ConfigCmd{flags: flags, app: app}
}

func (cmd *ConfigCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate the configuration file",
				Description: "Checks the configuration for structural errors, unreachable paths, and missing credentials.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.validate,
			},
			{
				Name:        "init",
				Usage:       "Write a default configuration file",
				Description: "Writes the default configuration to the config path so it can be edited by hand.",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "force",
						Usage:       "overwrite an existing config file without asking",
						Destination: &cmd.force,
					},
				},
				Action: cmd.init,
			},
			{
				Name:   "path",
				Usage:  "Print the config file path",
				Action: cmd.path,
			},
		},
	})
	return app
}

func (cmd *ConfigCmd) validate(ctx context.Context, c *cli.Command) error {
	cfg := cmd.app.Config
	validateErr := cfg.ValidateDeep(cmd.flags.ConfigPath)
	warnings := cfg.Warnings()

	if cmd.format == "json" {
		out := struct {
			Valid    bool                       `json:"valid"`
			Error    string                     `json:"error,omitempty"`
			Warnings []config.ValidationWarning `json:"warnings,omitempty"`
		}{
			Valid:    validateErr == nil,
			Warnings: warnings,
		}
		if validateErr != nil {
			out.Error = validateErr.Error()
		}
		enc := json.NewEncoder(c.Root().Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	colorize := shouldColorize(os.Stdout)
	out := c.Root().Writer

	for _, warn := range warnings {
		line := fmt.Sprintf("warning: %s: %s", warn.Category, warn.Message)
		if colorize {
			line = styles.OutcomeSkippedStyle.Render(line)
		}
		fmt.Fprintln(out, line)
	}

	if validateErr != nil {
		line := fmt.Sprintf("%s %s", styles.IconFail, validateErr)
		if colorize {
			line = styles.OutcomeFailedStyle.Render(line)
		}
		fmt.Fprintln(out, line)
		return cli.Exit("", 1)
	}

	line := fmt.Sprintf("%s configuration is valid", styles.IconOK)
	if colorize {
		line = styles.OutcomeSucceededStyle.Render(line)
	}
	fmt.Fprintln(out, line)
	return nil
}

func (cmd *ConfigCmd) init(ctx context.Context, c *cli.Command) error {
	path := cmd.flags.ConfigPath

	if _, err := os.Stat(path); err == nil && !cmd.force {
		var overwrite bool
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Overwrite %s?", path)).
			Description("The existing configuration will be replaced with defaults.").
			Value(&overwrite).
			Run()
		if err != nil {
			return fmt.Errorf("confirm: %w", err)
		}
		if !overwrite {
			fmt.Fprintln(c.Root().Writer, "aborted")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Fprintf(c.Root().Writer, "wrote %s\n", path)
	return nil
}

func (cmd *ConfigCmd) path(ctx context.Context, c *cli.Command) error {
	fmt.Fprintln(c.Root().Writer, cmd.flags.ConfigPath)
	return nil
}
