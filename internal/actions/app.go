package actions

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"deepcut/internal/adapters"
	"deepcut/internal/auth"
	"deepcut/internal/config"
	"deepcut/internal/logging"
	"deepcut/internal/playlist"
	"deepcut/internal/session"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v2"
	"github.com/zmb3/spotify/v2"
	"go.uber.org/zap"
)

// App is the state shared by all commands of one invocation.
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Session *session.Session

	auth    *auth.Manager
	client  *spotify.Client
	closeFn func()
}

// Setup loads configuration and logging. It is installed as the cli
// Before hook; Teardown is the matching After hook.
func Setup(c *cli.Context) error {
	if err := config.LoadEnv(); err != nil {
		return err
	}
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if c.Bool("debug") {
		cfg.Log.Level = "debug"
	}

	var console io.Writer
	if c.Bool("verbose") {
		console = os.Stderr
	}
	logger, closeFn, err := logging.New(cfg.Log, console)
	if err != nil {
		return err
	}

	c.App.Metadata["app"] = &App{
		Config:  cfg,
		Logger:  logger,
		Session: session.New(),
		closeFn: closeFn,
	}
	return nil
}

// Teardown persists a refreshed token and flushes the log.
func Teardown(c *cli.Context) error {
	app, ok := c.App.Metadata["app"].(*App)
	if !ok {
		return nil
	}
	if app.client != nil && app.auth != nil {
		if err := app.auth.Persist(app.client); err != nil {
			app.Logger.Warn("failed to persist token", zap.Error(err))
		}
	}
	if app.closeFn != nil {
		app.closeFn()
	}
	return nil
}

func appFrom(c *cli.Context) (*App, error) {
	app, ok := c.App.Metadata["app"].(*App)
	if !ok {
		return nil, errors.New("application not initialized")
	}
	return app, nil
}

func (a *App) authManager() (*auth.Manager, error) {
	if a.auth != nil {
		return a.auth, nil
	}
	m, err := auth.NewManager(a.Config, a.Logger)
	if err != nil {
		return nil, err
	}
	a.auth = m
	return m, nil
}

// Adapter returns an authorized adapter, running the login flow when
// interactive and no valid token is cached.
func (a *App) Adapter(ctx context.Context, interactive bool) (*adapters.SpotifyAdapter, error) {
	m, err := a.authManager()
	if err != nil {
		return nil, err
	}
	if a.client == nil {
		client, err := m.Client(ctx, interactive)
		if err != nil {
			return nil, err
		}
		a.client = client
	}
	return adapters.NewSpotifyAdapter(a.client, a.Config.Market), nil
}

// Report prints err with its category. It returns a cli exit error so the
// process exit code reflects the failure.
func Report(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, huh.ErrUserAborted) {
		return cli.Exit("aborted", 130)
	}
	category := playlist.Classify(err)
	code := 1
	if category == playlist.CategoryConfig {
		code = 2
	}
	return cli.Exit(fmt.Sprintf("%s: %v", category, err), code)
}
