package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"hub47-site/internal/backend"
	"hub47-site/internal/common/cache"
	"hub47-site/internal/common/config"
	apphttp "hub47-site/internal/common/http"
	"hub47-site/internal/common/logger"
	"hub47-site/internal/common/observability"
	"hub47-site/internal/content"
	"hub47-site/internal/forms/builtin"
	"hub47-site/internal/notify"
	"hub47-site/internal/server"
	"hub47-site/internal/session"
	"hub47-site/internal/submission"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve pages, the form API and operational endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			log, flush := newLogger(cfg)
			defer flush()
			return serve(cmd.Context(), cfg, log)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	log.Info("Starting hub47-site", map[string]interface{}{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
		"basePath":    cfg.BasePath(),
	})

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		log.Warn("otel meter unavailable, continuing without it", map[string]interface{}{"error": err.Error()})
		obs = nil
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = obs.Shutdown(shutdownCtx)
		}()
	}

	checks := map[string]server.ReadinessCheck{}

	// Redis only caches the event list; the site runs without it.
	var store cache.Store = cache.Nop{}
	if cfg.Redis.Enabled && cfg.Backend.CacheEnabled {
		var rc *cache.RedisClient
		err := retryWithBackoff(ctx, func() error {
			rc = cache.NewRedis(cfg.Redis)
			if err := rc.Ping(ctx); err != nil {
				_ = rc.Close()
				return err
			}
			return nil
		}, 5, 2*time.Second, log, "Redis connection")
		if err != nil {
			log.Warn("redis unavailable, event cache disabled", map[string]interface{}{"error": err.Error()})
		} else {
			defer rc.Close()
			store = rc
			checks["redis"] = rc.Ping
			log.Info("Redis connected successfully", nil)
		}
	}

	client := backend.NewClient(backend.Options{
		BaseURL:   cfg.Backend.BaseURL,
		HTTP:      apphttp.NewClient(config.GetDuration(cfg.Backend.Timeout), cfg.App.Name+"/"+cfg.App.Version),
		Cache:     store,
		EventsTTL: config.GetDuration(cfg.Backend.EventsTTL),
		Logger:    log,
	})

	hooks := []submission.Hook{submission.MetricsHook(), submission.TelemetryHook(obs)}
	notifier, err := notify.FromConfig(ctx, cfg, log)
	if err != nil {
		return err
	}
	if notifier != nil {
		hooks = append(hooks, notifier.Hook())
		defer notifier.Wait()
	}

	reg, err := builtin.Registry(cfg, client, log, hooks...)
	if err != nil {
		return err
	}
	if err := reg.Check(); err != nil {
		return err
	}

	src, err := content.NewSource(cfg.Content.CatalogPath, log)
	if err != nil {
		return err
	}
	stopWatch, err := src.Watch(ctx)
	if err != nil {
		return err
	}
	defer stopWatch()

	sessions := session.NewStore(session.Options{
		TTL:             config.GetDuration(cfg.Sessions.TTL),
		CleanupInterval: config.GetDuration(cfg.Sessions.CleanupInterval),
		MaxSessions:     cfg.Sessions.MaxSessions,
		Logger:          log,
	})
	defer sessions.Close()

	srv, err := server.New(server.Options{
		Config:        cfg,
		Forms:         reg,
		Sessions:      sessions,
		Content:       src,
		Events:        client,
		Observability: obs,
		Checks:        checks,
		Logger:        log,
	})
	if err != nil {
		return err
	}
	httpServer := srv.HTTPServer()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("HTTP server listening", map[string]interface{}{"address": httpServer.Addr, "forms": len(reg.List())})
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutdown signal received, draining requests...", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("HTTP server stopped with error", map[string]interface{}{"error": err.Error()})
		return err
	}
	log.Info("hub47-site stopped gracefully", nil)
	return nil
}
