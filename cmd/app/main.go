// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"telegram-post-scheduler/internal/config"
	"telegram-post-scheduler/internal/domain/ports/repository"
	tele "telegram-post-scheduler/internal/infra/adapters/telegram"
	"telegram-post-scheduler/internal/infra/logging"
	"telegram-post-scheduler/internal/infra/metrics"
	red "telegram-post-scheduler/internal/infra/redis"
	"telegram-post-scheduler/internal/infra/sched"
	"telegram-post-scheduler/internal/infra/state"
	"telegram-post-scheduler/internal/infra/store"
	"telegram-post-scheduler/internal/infra/web"
	"telegram-post-scheduler/internal/usecase"
)

// Overridden at build time via -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, no sampling)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Message store ----
	messageStore := store.NewYAMLStore(cfg.Store.Path, logger)

	// ---- Conversation state (redis when configured, memory otherwise) ----
	var states repository.StateRepository
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer redisClient.Close()
		states = red.NewStateRepo(redisClient, cfg.Redis.TTL.Std())
	} else {
		logger.Info().Msg("no redis configured, conversation state kept in memory")
		states = state.NewMemoryRepo()
	}

	// ---- Sender client ----
	senderToken := cfg.Sender.Token
	if senderToken == "" {
		senderToken = cfg.Bot.Token
	}
	client, err := tele.NewClient(senderToken)
	if err != nil {
		log.Fatalf("sender client: %v", err)
	}

	// ---- Use cases ----
	resolver := usecase.NewRecipientResolver(client)
	deliveryUC := usecase.NewDeliveryUseCase(messageStore, client, resolver, logger)
	messageUC := usecase.NewMessageUseCase(messageStore, logger)

	// ---- Admin bot ----
	adminBot, err := tele.NewAdminBot(&cfg.Bot, messageUC, deliveryUC, states, cfg.Media.Dir, logger)
	if err != nil {
		log.Fatalf("admin bot: %v", err)
	}
	go func() {
		if err := adminBot.StartPolling(ctx); err != nil && err != context.Canceled {
			logger.Error().Err(err).Msg("admin bot polling stopped")
		}
	}()

	// ---- Scheduler ----
	worker := sched.NewDeliveryWorker(cfg.Scheduler.Interval.Std(), deliveryUC, adminBot, logger)
	go func() { _ = worker.Run(ctx) }()

	// ---- Ops HTTP server ----
	opsSrv := web.NewServer(messageUC, deliveryUC, cfg.Ops.APIKey, logger)
	server := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Ops.Port), Handler: opsSrv.Router()}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("ops server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("ops server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)
}
