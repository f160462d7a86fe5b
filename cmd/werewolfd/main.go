// Package main provides the werewolfd binary: the REST backend for running
// moderated werewolf game nights.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/moonhowl/werewolfd/internal/config"
	"github.com/moonhowl/werewolfd/internal/game/engine"
	"github.com/moonhowl/werewolfd/internal/game/random"
	"github.com/moonhowl/werewolfd/internal/game/room"
	"github.com/moonhowl/werewolfd/internal/httpapi"
	"github.com/moonhowl/werewolfd/internal/observability"
	"github.com/moonhowl/werewolfd/internal/server"
	"github.com/moonhowl/werewolfd/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer observability.Sync(logger)

	dbStart := time.Now()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	logger.Info("database connected",
		zap.String("host", cfg.Database.Host),
		zap.Duration("elapsed", time.Since(dbStart)),
	)

	rooms := postgres.NewRoomStore(pool.DB())
	members := postgres.NewMemberStore(pool.DB())
	settings := postgres.NewSettingsStore(pool.DB())
	seats := postgres.NewSeatStore(pool.DB())
	actions := postgres.NewActionStore(pool.DB())

	src := random.NewCryptoSource()
	directory := room.NewDirectory(rooms, members, settings, src)
	eng := engine.New(rooms, members, settings, seats, actions, src, logger)

	auth := httpapi.NewTokenIssuer(cfg.Auth)
	api := httpapi.New(cfg.HTTP, eng, directory, rooms, settings, auth, logger)

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("http", api)
	lifecycle.Add("postgres", &server.FuncService{
		StartFn: func() error {
			for {
				time.Sleep(30 * time.Second)
				if err := pool.Health(ctx, 5*time.Second); err != nil {
					logger.Warn("database health check failed", zap.Error(err))
				}
			}
		},
		StopFn: func() {
			pool.Close()
		},
	})

	logger.Info("werewolfd initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("http_addr", cfg.HTTP.Addr()),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
