package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iatechsabana/cotecmar/internal/cache"
	"github.com/iatechsabana/cotecmar/internal/config"
	"github.com/iatechsabana/cotecmar/internal/infra"
	"github.com/iatechsabana/cotecmar/internal/repository"
	"github.com/iatechsabana/cotecmar/internal/router"
	"github.com/iatechsabana/cotecmar/internal/service"
	"github.com/iatechsabana/cotecmar/internal/sesion"
	"github.com/iatechsabana/cotecmar/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connectivity monitor: probes the remote store and announces
	// offline→online transitions to the sweep.
	monitor := infra.NewDatabaseMonitor(db, time.Duration(cfg.ConnCheckSeconds)*time.Second)
	go monitor.Watch(ctx)

	sesiones := sesion.NewRegistro()

	// Pending-profile sweep, bound to connectivity recovery.
	almacenLocal := cache.New(cache.NewRedisStore(rdb))
	syncSvc := service.NewSyncService(
		repository.NewUsuarioRepository(db),
		almacenLocal,
		worker.NewRedisDLQ(rdb),
		cfg.SyncMaxIntentos,
		time.Duration(cfg.SyncBackoffSeconds)*time.Second,
	)
	worker.StartSyncWorker(ctx, syncSvc, monitor)

	r := router.New(cfg, db, rdb, monitor, sesiones)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("tablero backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
