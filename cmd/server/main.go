package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"readcache/internal/app"
	"readcache/internal/cache"
	"readcache/internal/config"
	"readcache/internal/extractors"
	"readcache/internal/feed"
	"readcache/internal/fetch"
	"readcache/internal/logger"
	"readcache/internal/precache"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "readcache: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Env)
	if err != nil {
		return err
	}
	defer log.Sync()

	client, err := cache.NewRedisClient(cache.RedisConfig{
		Address:  cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return err
	}
	defer client.Close()

	engine := cache.New(cache.NewRedisStore(client), log.Named("cache"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	maintainer := cache.NewMaintainer(engine, log.Named("maintenance"))
	maintainer.Start(ctx)
	defer maintainer.Stop()

	httpClient := fetch.NewClient(fetch.ClientOptions{
		Timeout:   cfg.RequestTimeout,
		UserAgent: cfg.UserAgent,
	})
	chain := fetch.NewChain(httpClient, log.Named("fetch"),
		fetch.Direct(cfg.RequestTimeout),
		fetch.Proxy("allorigins", "https://api.allorigins.win/raw?url=", cfg.RequestTimeout),
		fetch.Proxy("corsproxy", "https://corsproxy.io/?", cfg.RequestTimeout),
	)

	reg := extractors.NewRegistry()
	reg.RegisterDefault(extractors.NewDefaultExtractor())

	if len(cfg.PrecacheFeeds) > 0 {
		source := feed.NewSource(cfg.UserAgent, feed.NewFilterRegistry(), log.Named("feed"))
		pipeline := precache.New(engine, chain, reg, cfg.PrecacheDelay, log.Named("precache"))
		go func() {
			for _, feedURL := range cfg.PrecacheFeeds {
				candidates, err := source.Candidates(ctx, feedURL, cfg.PrecacheLimit)
				if err != nil {
					log.Warn("feed parse failed", zap.String("feed", feedURL), zap.Error(err))
					continue
				}
				pipeline.Run(ctx, candidates)
			}
		}()
	}

	srv := app.NewServer(engine, log.Named("http"))
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run(cfg.ListenAddr) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
