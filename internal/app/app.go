package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/safarline/busadmin/internal/api"
	"github.com/safarline/busadmin/internal/config"
	"github.com/safarline/busadmin/internal/logging"
	"github.com/safarline/busadmin/internal/session"
	"github.com/safarline/busadmin/internal/state"
	"github.com/safarline/busadmin/internal/ui"
)

// Options configure the console.
type Options struct {
	ConfigPath  string
	SessionPath string // empty uses default ~/.config/busadmin/session.toml
	Debug       bool
}

const pingTimeout = 3 * time.Second

// Run boots the console until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.Debug {
		cfg.LogLevel = "debug"
	}

	logger, err := logging.New(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	sessionPath := opts.SessionPath
	if sessionPath == "" {
		sessionPath = session.DefaultPath()
	}
	sess, _ := session.Load(sessionPath)

	deps, err := Build(cfg, sessionPath, sess, logger)
	if err != nil {
		return err
	}

	online := checkBackend(ctx, deps.Client, logger)
	if online && deps.Store.Auth.Snapshot().IsAuthenticated {
		_ = Prefetch(ctx, deps.Store, logger)
	}
	StartSessionWatcher(ctx, deps.Store.Auth, time.Now, 0)

	locale := sess.Locale
	if locale == "" {
		locale = cfg.Locale
	}

	return ui.Run(ui.Options{
		Context:   ctx,
		Store:     deps.Store,
		Config:    &cfg,
		Logger:    logger,
		ThemeName: sess.Theme,
		Locale:    locale,
		Online:    online,
	})
}

// Deps are the long-lived objects shared by the UI.
type Deps struct {
	Client *api.Client
	Store  *state.Store
}

// Build wires the API client, auth state and collection registry.
func Build(cfg config.Config, sessionPath string, sess session.Session, logger *zap.Logger) (Deps, error) {
	client, err := api.NewClient(api.Options{
		BaseURL:   cfg.APIURL,
		Timeout:   cfg.RequestTimeout,
		SchemeFor: cfg.SchemeFor,
		Logger:    logger,
	})
	if err != nil {
		return Deps{}, fmt.Errorf("init api client: %w", err)
	}

	auth := state.NewAuth(client, sessionPath, sess, time.Now(), logger)
	store := state.New(client, auth, cfg.PerPage, logger)
	return Deps{Client: client, Store: store}, nil
}

// checkBackend reports whether the backend answered. An unreachable backend
// is not fatal; the UI starts offline and every screen shows the network
// error when it tries to load.
func checkBackend(ctx context.Context, client *api.Client, logger *zap.Logger) bool {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx); err != nil {
		logger.Warn("backend unreachable", zap.String("url", client.BaseURL()), zap.Error(err))
		return false
	}
	logger.Info("backend reachable", zap.String("url", client.BaseURL()))
	return true
}
