package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/Crypto90/nowplayingd/internal/artwork"
	"github.com/Crypto90/nowplayingd/internal/config"
	"github.com/Crypto90/nowplayingd/internal/domain"
	"github.com/Crypto90/nowplayingd/internal/panel"
	"github.com/Crypto90/nowplayingd/internal/poller"
	"github.com/Crypto90/nowplayingd/internal/provider"
	"github.com/Crypto90/nowplayingd/internal/settings"
	"github.com/Crypto90/nowplayingd/internal/snapshot"
	"github.com/Crypto90/nowplayingd/internal/web"
)

// AppOptions is the full dependency graph; shared with tests so the
// graph is validated without starting the app.
var AppOptions = fx.Options(
	// Logger configuration
	fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
		return &fxevent.ZapLogger{Logger: log}
	}),

	// Provide dependencies. The interface bindings reuse the concrete
	// instance so readers and writers share the same object.
	fx.Provide(
		newLogger,
		config.NewAppConfig,
		newSettingsStore,
		settings.NewManager,
		snapshot.NewStore,
		func(s *snapshot.Store) domain.SnapshotReader { return s },
		artwork.NewFetcher,
		func(f *artwork.Fetcher) domain.Fetcher { return f },
		provider.NewMprisProvider,
		func(p *provider.MprisProvider) domain.SessionProvider { return p },
		poller.NewPoller,
		web.NewServer,
		panel.NewPanel,
	),

	// Lifecycle hooks
	fx.Invoke(registerHooks),
)

func main() {
	app := fx.New(AppOptions)

	// Handle graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Start the application
	if err := app.Start(ctx); err != nil {
		panic(err)
	}

	// Wait for interrupt signal or a panel-initiated shutdown
	select {
	case <-ctx.Done():
	case <-app.Done():
	}

	// Stop the application gracefully
	if err := app.Stop(context.Background()); err != nil {
		panic(err)
	}
}

// newLogger creates a new zap logger instance
func newLogger() (*zap.Logger, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return logger, nil
}

// newSettingsStore builds the file-backed settings store at the
// configured path.
func newSettingsStore(logger *zap.Logger, cfg *config.AppConfig) domain.SettingsStore {
	return settings.NewFileStore(logger, cfg.SettingsFile())
}

// registerHooks sets up application lifecycle hooks
func registerHooks(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	logger *zap.Logger,
	cfg *config.AppConfig,
	prov *provider.MprisProvider,
	mgr *settings.Manager,
	poll *poller.Poller,
	srv *web.Server,
	pnl *panel.Panel,
) {
	// The settings watcher outlives the start hook, so it gets its own
	// context cancelled on stop.
	watchCtx, stopWatch := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("Now playing daemon started")
			if err := mgr.Watch(watchCtx); err != nil {
				// The watcher is a convenience; a failure to set it up
				// should not keep the daemon from running.
				logger.Warn("Settings file watcher unavailable", zap.Error(err))
			}
			if err := srv.Start(ctx); err != nil {
				return err
			}
			if err := poll.Start(ctx); err != nil {
				return err
			}
			if cfg.PanelEnabled() {
				pnl.OnQuit = func() { shutdowner.Shutdown() }
				return pnl.Start(ctx)
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Shutting down")
			stopWatch()
			if cfg.PanelEnabled() {
				pnl.Stop(ctx)
			}
			if err := poll.Stop(ctx); err != nil {
				logger.Error("Poller did not stop cleanly", zap.Error(err))
			}
			if err := srv.Stop(ctx); err != nil {
				logger.Error("Web server did not stop cleanly", zap.Error(err))
			}
			if err := prov.Close(); err != nil {
				logger.Warn("Failed to close session provider", zap.Error(err))
			}
			return nil
		},
	})
}
