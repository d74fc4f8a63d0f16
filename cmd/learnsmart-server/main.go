package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/at-ishikawa/learnsmart/internal/analytics"
	"github.com/at-ishikawa/learnsmart/internal/bootstrap"
	"github.com/at-ishikawa/learnsmart/internal/cache"
	"github.com/at-ishikawa/learnsmart/internal/config"
	"github.com/at-ishikawa/learnsmart/internal/database"
	"github.com/at-ishikawa/learnsmart/internal/server"
	"github.com/at-ishikawa/learnsmart/internal/studylog"
)

var configFile string

func main() {
	rootCmd := &cobra.Command{
		Use:           "learnsmart-server",
		Short:         "Learnsmart analytics service HTTP server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}
	rootCmd.Flags().StringVar(&configFile, "config", "", "config file path")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// setupLogger configures the default logger from the log section of the config.
func setupLogger(w io.Writer, cfg config.LogConfig) {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var handler slog.Handler = slog.NewTextHandler(w, opts)
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// dependencies are built by the startup hooks. cache stays nil when caching is disabled.
type dependencies struct {
	db     *sqlx.DB
	engine *analytics.Engine
	cache  cache.Cache
}

func run(ctx context.Context) error {
	app := bootstrap.New()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loadConfig() > %w", err)
	}
	setupLogger(os.Stdout, cfg.Log)

	var deps dependencies
	addStartupHooks(app, cfg, &deps)

	return app.Run(ctx, func(ctx context.Context) error {
		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           newHTTPHandler(cfg, deps),
			ReadHeaderTimeout: 10 * time.Second,
		}
		app.AddShutdownHook(srv.Shutdown)

		slog.InfoContext(ctx, "starting server",
			"addr", srv.Addr,
			"tls", cfg.Server.TLS.Enabled(),
			"model", modelStatus(deps.engine),
			"cache", cfg.Cache.Enabled,
		)
		var err error
		if cfg.Server.TLS.Enabled() {
			err = srv.ListenAndServeTLS(cfg.Server.TLS.CertFile, cfg.Server.TLS.KeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
}

// addStartupHooks opens the database, loads the model and connects the cache, in that order.
// Each resource registers its own shutdown hook once it is open.
func addStartupHooks(app *bootstrap.App, cfg *config.Config, deps *dependencies) {
	app.AddStartupHook("database", func(ctx context.Context) error {
		db, err := database.Open(cfg.Database)
		if err != nil {
			return fmt.Errorf("database.Open() > %w", err)
		}
		app.AddShutdownHook(func(context.Context) error { return db.Close() })
		if err := database.Migrate(ctx, db); err != nil {
			return fmt.Errorf("database.Migrate() > %w", err)
		}
		deps.db = db
		return nil
	})

	app.AddStartupHook("model", func(ctx context.Context) error {
		model, err := analytics.LoadModel(ctx, cfg.Model)
		if err != nil {
			return err
		}
		engine, err := analytics.NewEngine(model, analytics.WithSuggestionLimit(cfg.Engine.SuggestionLimit))
		if err != nil {
			return fmt.Errorf("analytics.NewEngine() > %w", err)
		}
		deps.engine = engine
		return nil
	})

	app.AddStartupHook("cache", func(ctx context.Context) error {
		if !cfg.Cache.Enabled {
			return nil
		}
		redisCache, err := cache.NewRedisCache(ctx, cfg.Cache)
		if err != nil {
			return err
		}
		app.AddShutdownHook(func(context.Context) error { return redisCache.Close() })
		deps.cache = redisCache
		return nil
	})
}

func newHTTPHandler(cfg *config.Config, deps dependencies) http.Handler {
	handler := server.NewHandler(
		deps.engine,
		studylog.NewDBStudyLogRepository(deps.db),
		studylog.NewDBPredictionRepository(deps.db),
		deps.cache,
		cfg.Cache.TTL(),
		deps.db,
	)
	mux := http.NewServeMux()
	handler.Register(mux)
	return server.Middleware(h2c.NewHandler(mux, &http2.Server{}), cfg.Server.CORS.AllowedOrigins)
}

func modelStatus(engine *analytics.Engine) string {
	if engine.Degraded() {
		return server.ModelDegraded
	}
	return server.ModelLoaded
}

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	return loader.Load()
}
