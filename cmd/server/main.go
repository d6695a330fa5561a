package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/JoakoBallesteros/DonNildo-sub000/internal/config"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/infra"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/repository"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/router"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/service"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: pretty in dev, JSON in production
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	db, err := infra.NewDatabase(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	identity := infra.NewIdentityClient(
		cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.SupabaseServiceRoleKey,
		infra.NewCircuitBreaker(infra.DefaultCBConfig()),
	)

	// Worker handlers are wired here (composition root) so the pool has
	// access to the mailer and the report renderer.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dispatcher := worker.NewDispatcher(rdb)
	auditoriaRepo := repository.NewAuditoriaRepository(db)
	auditSvc := service.NewAuditoriaService(auditoriaRepo, dispatcher)
	reporteSvc := service.NewReporteService(repository.NewReporteRepository(db), dispatcher, auditSvc)

	pool := worker.NewPool(rdb, map[string]worker.Handler{
		worker.QueueAuditoria: worker.NewAuditWorker(auditoriaRepo).Process,
		worker.QueueEmail:     worker.NewEmailWorker(infra.NewMailer(cfg), reporteSvc.PDF).Process,
	})
	pool.Start(ctx, cfg.WorkerPoolSize)

	worker.StartDLQReplayCron(ctx, worker.DLQReplayConfig{
		RDB:    rdb,
		Queues: []string{worker.QueueAuditoria, worker.QueueEmail},
	})

	r := router.New(cfg, db, rdb, identity)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Str("env", cfg.Env).Msgf("Don Nildo backend listening on :%d", cfg.Port)
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
		log.Error().Err(err).Msg("forced shutdown")
	}
	cancel()
	// BRPOP returns within its 5s timeout; in-flight jobs finish or are requeued.
	if !pool.Wait(10 * time.Second) {
		log.Warn().Msg("workers still running, closing connections anyway")
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = rdb.Close()
	log.Info().Msg("server exited")
}
