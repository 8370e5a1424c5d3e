package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/rivenmedia/riven-tui/internal/batch"
	"github.com/rivenmedia/riven-tui/internal/commands"
	"github.com/rivenmedia/riven-tui/internal/core/config"
	"github.com/rivenmedia/riven-tui/internal/core/styles"
	"github.com/rivenmedia/riven-tui/internal/data/db"
	"github.com/rivenmedia/riven-tui/internal/data/stores"
	"github.com/rivenmedia/riven-tui/internal/library"
	"github.com/rivenmedia/riven-tui/internal/metadata/mdblist"
	"github.com/rivenmedia/riven-tui/internal/metadata/tmdb"
	"github.com/rivenmedia/riven-tui/internal/riven"
	"github.com/rivenmedia/riven-tui/internal/tui/notify"
	"github.com/rivenmedia/riven-tui/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, build() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	// When installed via `go install module@version`, ldflags aren't set
	// so version remains "dev". Fall back to runtime/debug.BuildInfo which
	// Go populates automatically with the module version and VCS metadata.
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := context.Background()

	var (
		logCloser   func()
		tuiApp      = &commands.App{}
		database    *db.DB
		sweepCancel context.CancelFunc
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "riven-tui",
		Usage:     "Terminal client for a Riven media server",
		UsageText: "riven-tui [global options] command [command options]",
		Description: `riven-tui browses and manages a Riven media library from the terminal.

It runs bulk actions (retry, reset, pause, remove, add) over many items at a
controlled pace, matches MDBList lists against the library, and keeps a local
history of every batch.

Run 'riven-tui' with no arguments to open the interactive interface.
Run 'riven-tui docs bulk' to read how throttled bulk operations work.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("RIVEN_TUI_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/riven-tui.log)",
				Sources:     cli.EnvVars("RIVEN_TUI_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("RIVEN_TUI_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("RIVEN_TUI_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// Always log to a file so TUI output never fights with log lines.
			logFile := flags.LogFile
			if logFile == "" {
				logFile = filepath.Join(flags.DataDir, "riven-tui.log")
			}

			logger, closer, err := logutils.New(flags.LogLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}

			// Custom palettes first so the configured theme can be one of them.
			if _, err := styles.LoadCustomThemes(cfg.DataDir); err != nil {
				log.Warn().Err(err).Msg("failed to load custom themes")
			}
			palette, ok := styles.GetPalette(cfg.UI.Theme)
			if !ok {
				palette, _ = styles.GetPalette(styles.DefaultTheme)
			}
			styles.SetTheme(palette)

			database, err = db.Open(cfg.DataDir, db.DefaultOpenOptions())
			if err != nil {
				return ctx, fmt.Errorf("open database: %w", err)
			}

			kvStore := stores.NewKVStore(database)
			historyStore := stores.NewHistoryStore(database)

			sweepCtx, cancel := context.WithCancel(context.Background())
			sweepCancel = cancel
			go stores.RunSweeper(sweepCtx, kvStore, 5*time.Minute)

			bus := notify.NewBus()

			// Backend clients need an API key. Without one the service stays
			// nil and commands that talk to the backend explain what to set.
			var svc *library.Service
			var svcDeps library.Deps
			if cfg.Backend.APIKey != "" {
				rivenClient, err := riven.New(riven.Config{
					BaseURL: cfg.Backend.URL,
					APIKey:  cfg.Backend.APIKey,
					Timeout: cfg.Backend.RequestTimeout(),
				})
				if err != nil {
					return ctx, fmt.Errorf("build backend client: %w", err)
				}
				// Separate client for full-library downloads, which can run
				// far longer than a page fetch.
				indexClient, err := riven.New(riven.Config{
					BaseURL: cfg.Backend.URL,
					APIKey:  cfg.Backend.APIKey,
					Timeout: cfg.Backend.IndexTimeout(),
				})
				if err != nil {
					return ctx, fmt.Errorf("build index client: %w", err)
				}

				var tmdbClient *tmdb.Client
				if cfg.TMDB.BearerToken != "" {
					tmdbClient, err = tmdb.New(tmdb.Config{BearerToken: cfg.TMDB.BearerToken})
					if err != nil {
						return ctx, fmt.Errorf("build tmdb client: %w", err)
					}
				}

				throttle, err := batch.NewThrottle(cfg.Batch.BurstSize, cfg.Batch.Interval())
				if err != nil {
					return ctx, fmt.Errorf("build throttle: %w", err)
				}
				gateway := riven.NewGateway(rivenClient)
				svcLogger := log.With().Str("component", "riven-tui").Logger()

				svcDeps = library.Deps{
					Riven:    rivenClient,
					Index:    indexClient,
					TMDB:     tmdbClient,
					MDBList:  mdblist.New(mdblist.Config{}),
					Gateway:  gateway,
					Executor: batch.NewExecutor(gateway, throttle, svcLogger),
					History:  historyStore,
					Notifier: bus,
					Logger:   svcLogger,
				}
				svc = library.NewService(svcDeps)
			} else {
				log.Warn().Msg("backend.api_key is not set, backend commands are disabled")
			}

			// Populate the pre-allocated App struct (commands already hold a
			// pointer to it).
			*tuiApp = commands.App{
				Config:      cfg,
				ConfigPath:  flags.ConfigPath,
				Service:     svc,
				DB:          database,
				KV:          kvStore,
				History:     historyStore,
				Bus:         bus,
				Version:     build(),
				ServiceDeps: svcDeps,
			}

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if sweepCancel != nil {
				sweepCancel()
			}

			if database != nil {
				if err := database.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close database")
					return err
				}
			}

			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	tuiCmd := commands.NewTuiCmd(flags, tuiApp)

	app = commands.NewBulkCmd(flags, tuiApp).Register(app)
	app = commands.NewItemsCmd(flags, tuiApp).Register(app)
	app = commands.NewHistoryCmd(flags, tuiApp).Register(app)
	app = commands.NewLogsCmd(flags, tuiApp).Register(app)
	app = commands.NewConfigCmd(flags, tuiApp).Register(app)
	app = commands.NewDocsCmd(flags, tuiApp).Register(app)

	// Open the TUI when no subcommand is given.
	app.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'riven-tui --help' for usage", c.Args().First())
		}
		return tuiCmd.Run(ctx, c)
	}

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
