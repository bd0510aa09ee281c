package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/oggyb/spark-core/internal/app"
	"github.com/oggyb/spark-core/internal/cache"
	"github.com/oggyb/spark-core/internal/config"
	"github.com/oggyb/spark-core/internal/db"
	"github.com/oggyb/spark-core/internal/fanout"
	"github.com/oggyb/spark-core/internal/logger"
	"github.com/oggyb/spark-core/internal/repository"
	"github.com/oggyb/spark-core/internal/server"
	"github.com/oggyb/spark-core/internal/service/chat"
	"github.com/oggyb/spark-core/internal/service/ledger"
	"github.com/oggyb/spark-core/internal/service/match"
	"github.com/oggyb/spark-core/internal/service/quota"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	if err := run(cfg); err != nil {
		log.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	log := logger.L()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.NewDB(cfg)
	if err != nil {
		return fmt.Errorf("init db: %w", err)
	}

	redisCache := cache.NewRedisCache(cfg)
	defer redisCache.Close()
	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}

	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(database, db.DefaultSeedOptions(), log); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	appCtx := app.New(database, redisCache, log, cfg)

	hub := fanout.NewHub(repository.NewMessageRepository(database), cfg.Fanout.Buffer, log)
	store := ledger.NewStore(appCtx)
	engine := match.NewEngine(appCtx, store, hub)
	pipeline := chat.NewPipeline(appCtx, quota.NewTracker(appCtx), store, hub)

	srv := server.NewServer(cfg, log,
		match.NewRegistrar(engine),
		chat.NewRegistrar(pipeline),
		ledger.NewRegistrar(store),
	)

	g, gctx := errgroup.WithContext(ctx)
	if cfg.Fanout.UseRedis {
		bridge := fanout.NewRedisBridge(hub, redisCache, cfg.Fanout.RedisChannel, log)
		g.Go(func() error { return bridge.Run(gctx) })
	}
	g.Go(srv.ListenAndServe)
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down gRPC server")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		srv.Stop(sctx)
		return nil
	})

	log.Info("starting gRPC server", "addr", srv.Addr(), "env", cfg.App.ENV, "redis_fanout", cfg.Fanout.UseRedis)
	return g.Wait()
}
