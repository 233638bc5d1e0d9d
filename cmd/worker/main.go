// worker ejecuta las tareas periódicas del puente (envío de pendientes al servidor central).
//
// Uso: go run ./cmd/worker
// Requiere REDIS_ADDR; la frecuencia sale de SEND_DATA_SCHEDULE.
package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/itsystem/posapi-bridge/internal/application/billing"
	"github.com/itsystem/posapi-bridge/internal/infrastructure/metrics"
	"github.com/itsystem/posapi-bridge/internal/infrastructure/posapi"
	"github.com/itsystem/posapi-bridge/internal/infrastructure/scheduler"
	"github.com/itsystem/posapi-bridge/pkg/config"
	"github.com/itsystem/posapi-bridge/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	root := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: cfg.App.Name})
	log := root.Component("worker")

	if !cfg.Redis.Enabled() {
		log.Fatal().Msg("REDIS_ADDR es obligatorio para el worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(cfg.Metrics.Namespace, reg)

	posClient := posapi.NewClient(cfg.PosAPI.BaseURL, cfg.PosAPI.Timeout, root.Component("posapi"))
	sender := billing.NewPosAPIUseCase(posClient, log)

	sched := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{Location: time.Local})
	entryID, err := scheduler.RegisterPeriodic(sched, cfg.Scheduler.SendDataSpec)
	if err != nil {
		log.Fatal().Err(err).Msg("programar tareas")
	}
	if entryID == "" {
		log.Warn().Msg("SEND_DATA_SCHEDULE vacío: sin envío periódico")
	} else {
		log.Info().Str("spec", cfg.Scheduler.SendDataSpec).Str("entry", entryID).Msg("envío periódico programado")
	}

	srv := asynq.NewServer(redisOpt, asynq.Config{Concurrency: 1})

	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("iniciar scheduler")
	}
	if err := srv.Start(scheduler.NewMux(sender, m, log)); err != nil {
		log.Fatal().Err(err).Msg("iniciar worker")
	}

	// Métricas del worker en un puerto aparte (HTTP_PORT + 1).
	metricsSrv := &http.Server{
		Addr:              metricsAddr(cfg.HTTP),
		Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("servidor de métricas")
		}
	}()

	log.Info().Msg("worker iniciado")
	<-ctx.Done()
	log.Info().Msg("señal de apagado recibida, deteniendo worker...")

	sched.Shutdown()
	srv.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado de métricas")
	}
	log.Info().Msg("worker detenido")
}

func metricsAddr(h config.HTTPConfig) string {
	h.Port++
	return h.Addr()
}
