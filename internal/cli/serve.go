package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"arbridge/internal/config"
	"arbridge/internal/dispatch"
	"arbridge/internal/httpapi"
	"arbridge/internal/manager"
	"arbridge/internal/registry"
	"arbridge/internal/telemetry"
)

// App is the fully wired service: manager, dispatcher and HTTP handler.
type App struct {
	Config     config.Config
	Manager    *manager.Manager
	Dispatcher *dispatch.Dispatcher
	// Catalog is nil when no assets directory is configured.
	Catalog *registry.Catalog
	Handler http.Handler
}

// NewApp wires the service from a resolved configuration.
func NewApp(cfg config.Config, log zerolog.Logger) (*App, error) {
	sc := manager.SimConfig{
		Platform: cfg.Platform,
		Latency:  time.Duration(cfg.RuntimeLatencyMS) * time.Millisecond,
	}
	app := &App{Config: cfg}
	if cfg.AssetsDir != "" {
		formats := manager.NewSimAdapter(sc).Capabilities().SupportedFormats
		cat, err := registry.LoadDir(cfg.AssetsDir, formats)
		if err != nil {
			return nil, fmt.Errorf("load assets: %w", err)
		}
		app.Catalog = cat
		sc.Assets = cat
		log.Info().Str("dir", cat.Root()).Int("assets", len(cat.List())).Msg("asset catalog loaded")
	}
	app.Manager = manager.NewWithConfig(manager.ManagerConfig{
		Adapter:   manager.NewSimAdapter(sc),
		Logger:    &log,
		Publisher: manager.NewLogPublisher(log, zerolog.DebugLevel),
	})
	app.Dispatcher = dispatch.New(app.Manager, log)

	httpapi.SetLogger(log)
	httpapi.SetDefaultLogLevel(cfg.LogLevel)
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	httpapi.SetCallTimeoutSeconds(cfg.CallTimeoutSeconds)
	httpapi.SetCORSOptions(cfg.CORSEnabled, cfg.CORSOrigins, nil, nil)
	var assets httpapi.AssetLister
	if app.Catalog != nil {
		assets = app.Catalog
	}
	app.Handler = httpapi.NewMux(app.Dispatcher, assets)
	return app, nil
}

// Close disposes the AR session. Disposing twice is not an error here.
func (a *App) Close(ctx context.Context) error {
	if err := a.Manager.Dispose(ctx); err != nil && !manager.IsDisposed(err) {
		return err
	}
	return nil
}

// runServe runs the HTTP service until ctx ends, then shuts the server down
// and disposes the session.
func runServe(ctx context.Context, cfg config.Config, logOut io.Writer) error {
	log := newLogger(cfg.LogLevel, cfg.LogFormat, logOut)

	shutdownTracing, err := telemetry.Setup(ctx, "arbridge", cfg.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn().Err(err).Msg("tracing shutdown")
		}
	}()

	app, err := NewApp(cfg, log)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	httpapi.SetBaseContext(gctx)
	defer httpapi.SetBaseContext(nil)
	srv := &http.Server{Addr: cfg.Addr, Handler: app.Handler, ReadHeaderTimeout: 10 * time.Second}

	g.Go(func() error {
		log.Info().Str("addr", cfg.Addr).Str("platform", cfg.Platform).Msg("arbridge listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := srv.Shutdown(shCtx)
		if derr := app.Close(shCtx); derr != nil {
			log.Warn().Err(derr).Msg("dispose on shutdown")
		}
		log.Info().Msg("arbridge stopped")
		return err
	})
	return g.Wait()
}
