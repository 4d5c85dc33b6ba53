// Command studydeck is a terminal client for study sets and folders built
// around a command palette.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jask/studydeck/internal/api"
	"github.com/jask/studydeck/internal/config"
	"github.com/jask/studydeck/internal/database"
	"github.com/jask/studydeck/internal/database/repository"
	"github.com/jask/studydeck/internal/events"
	"github.com/jask/studydeck/internal/location"
	"github.com/jask/studydeck/internal/logging"
	"github.com/jask/studydeck/internal/secrets"
	"github.com/jask/studydeck/internal/share"
	"github.com/jask/studydeck/internal/theme"
	"github.com/jask/studydeck/internal/tui"
)

var (
	configPath string
	startRoute string
	verbose    bool

	cfg    config.Config
	logger *zap.Logger
	db     *sql.DB
	client *api.Client
)

var rootCmd = &cobra.Command{
	Use:   "studydeck",
	Short: "Jump between your study sets and folders from the terminal",
	Long: `studydeck opens a command palette (ctrl+k) over your recently viewed
study sets and folders, plus navigation and utility actions.

Run without arguments to start the interactive UI.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadFile(configPath)
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.Log.Path, cfg.Log.Level, verbose)
		if err != nil {
			return err
		}
		db, err = database.OpenMigrated(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		if err := database.SeedDefaults(cmd.Context(), db, cfg.UI.Theme, cfg.UI.StartRoute); err != nil {
			return fmt.Errorf("seed defaults: %w", err)
		}
		client, err = api.New(api.Options{
			BaseURL: cfg.API.BaseURL,
			Token:   resolveToken(),
			Timeout: cfg.API.Timeout,
			Retries: cfg.API.Retries,
			Logger:  logger,
		})
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			_ = db.Close()
		}
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("STUDYDECK_CONFIG"), "config file (default: user config dir)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.Flags().StringVar(&startRoute, "route", "", "route to start at (default: last visited)")

	rootCmd.AddCommand(recentCmd, shareCmd, linksCmd, loginCmd, logoutCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveToken prefers the environment and config file, then the token
// saved by `studydeck login`.
func resolveToken() string {
	if tok := cfg.API.ResolveToken(); tok != "" {
		return tok
	}
	store, err := secrets.Default()
	if err != nil {
		return ""
	}
	tok, err := store.Token(cfg.API.BaseURL)
	if err != nil && !errors.Is(err, secrets.ErrNotFound) {
		logger.Warn("read stored token", zap.Error(err))
	}
	return tok
}

func runTUI(parent context.Context) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	prefs := repository.NewPreferenceRepo(db)
	start := startRoute
	if start == "" {
		if last, ok, err := prefs.Get(ctx, repository.PrefLastRoute); err == nil && ok {
			start = last
		} else {
			start = cfg.UI.StartRoute
		}
	}
	nav, err := location.NewHistory(start, cfg.API.PublicURL)
	if err != nil {
		return err
	}

	fallback, err := theme.ParseMode(cfg.UI.Theme)
	if err != nil {
		return err
	}
	themes := theme.NewStore(prefs, fallback, logger)
	if _, err := themes.Load(ctx); err != nil {
		logger.Warn("load theme", zap.Error(err))
	}

	menu := events.NewMenu(events.NewBus())
	sharer := share.New(client, cfg.API.PublicURL,
		share.WithMenu(menu),
		share.WithStore(repository.NewShareLinkRepo(db)),
		share.WithLogger(logger),
	)

	app := tui.New(ctx, cfg,
		tui.Repos{Recent: repository.NewRecentRepo(db), Prefs: prefs},
		tui.Services{Nav: nav, API: client, Share: sharer, Theme: themes, Menu: menu},
		logger,
	)
	defer app.Close()

	logger.Info("starting ui", zap.String("route", start))
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
