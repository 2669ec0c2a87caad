package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/savoro-pos/api/internal/config"
	"github.com/savoro-pos/api/internal/database"
	"github.com/savoro-pos/api/internal/logger"
	"github.com/savoro-pos/api/internal/router"
	"github.com/savoro-pos/api/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Setup("savoro-api", "info", true)
		log.Fatal().Err(err).Msg("load config")
	}
	logger.Setup("savoro-api", cfg.App.LogLevel, cfg.App.IsDev())

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()

	if cfg.App.AutoMigrate {
		if err := database.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("run migrations")
		}
		log.Info().Msg("migrations applied")
	}

	hub := ws.NewHub()
	go hub.Run()

	queries := database.New(pool)
	r := router.New(cfg, queries, pool, hub)

	addr := ":" + cfg.App.Port
	log.Info().
		Str("addr", addr).
		Str("env", cfg.App.Env).
		Str("consume_on", cfg.Order.ConsumeOn).
		Msg("starting server")

	if err := http.ListenAndServe(addr, r); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
