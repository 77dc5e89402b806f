// Command coursekit 加载课程目录并提供推荐 HTTP 服务。
//
//	coursekit -config configs/config.yaml
//
// SIGHUP 触发目录重载，SIGINT/SIGTERM 优雅退出。
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rushteam/coursekit/api"
	"github.com/rushteam/coursekit/config"
	"github.com/rushteam/coursekit/core"
	"github.com/rushteam/coursekit/engine"
	"github.com/rushteam/coursekit/pipeline"
	"github.com/rushteam/coursekit/pkg/logging"
	"github.com/rushteam/coursekit/service"
	"github.com/rushteam/coursekit/store"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default: $COURSEKIT_CONFIG or ./config.yaml)")
	flag.Parse()

	settings, err := config.Load(*configPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{
		Level:  settings.Logging.Level,
		Format: settings.Logging.Format,
		Caller: settings.Logging.Caller,
		Output: os.Stderr,
	})

	ctx := context.Background()

	cache, err := newCache(ctx, &settings.Cache)
	if err != nil {
		logging.Fatal().Err(err).Str("backend", settings.Cache.Backend).Msg("failed to open cache")
	}
	if cache != nil {
		defer cache.Close()
	}

	opts := []service.Option{service.WithDefaults(settings)}
	if cache != nil {
		opts = append(opts, service.WithCache(cache))
	}
	if path := settings.Recommend.PipelinesPath; path != "" {
		cfg, err := pipeline.LoadFromYAML(path)
		if err != nil {
			logging.Fatal().Err(err).Str("path", path).Msg("failed to load pipelines")
		}
		opts = append(opts, service.WithPipelines(cfg))
	}

	holder := engine.NewHolder(engine.FileLoader(settings.Catalog.Path), engine.BuildOptions{
		Workers:  settings.Catalog.Workers,
		MaxItems: settings.Catalog.MaxItems,
	})
	if _, err := holder.Reload(ctx); err != nil {
		logging.Fatal().Err(err).Str("path", settings.Catalog.Path).Msg("initial catalog load failed")
	}

	svc, err := service.New(holder, opts...)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to build recommendation pipelines")
	}

	router := api.NewRouter(api.NewHandler(svc), api.RouterConfig{
		CORSOrigins:     settings.Server.CORSOrigins,
		RateLimit:       settings.Server.RateLimit,
		RateLimitWindow: settings.Server.RateLimitWindow,
	})
	srv := &http.Server{
		Addr:         settings.Server.Addr(),
		Handler:      router,
		ReadTimeout:  settings.Server.ReadTimeout,
		WriteTimeout: settings.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	for {
		select {
		case err := <-errCh:
			logging.Fatal().Err(err).Msg("http server failed")
		case sig := <-sigCh:
			if sig == syscall.SIGHUP {
				if version, err := svc.Reload(ctx); err == nil {
					logging.Info().Uint64("version", version).Msg("catalog reloaded")
				}
				continue
			}
			logging.Info().Str("signal", sig.String()).Msg("received shutdown signal")
			shutdownCtx, cancel := context.WithTimeout(ctx, settings.Server.ShutdownTimeout)
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logging.Error().Err(err).Msg("graceful shutdown failed")
			}
			cancel()
			return
		}
	}
}

// newCache 按配置创建结果缓存；backend=none 时返回 nil。
func newCache(ctx context.Context, cfg *config.CacheSettings) (core.Store, error) {
	switch cfg.Backend {
	case "memory":
		return store.NewMemoryStore(), nil
	case "redis":
		rs, err := store.NewRedisStore(ctx, store.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
		if err != nil {
			return nil, err
		}
		return rs, nil
	default:
		return nil, nil
	}
}
