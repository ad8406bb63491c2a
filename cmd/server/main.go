package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/twokhq/realtime-core/internal/api"
	"github.com/twokhq/realtime-core/internal/auth"
	"github.com/twokhq/realtime-core/internal/broadcast"
	"github.com/twokhq/realtime-core/internal/config"
	"github.com/twokhq/realtime-core/internal/db"
	"github.com/twokhq/realtime-core/internal/mailer"
	"github.com/twokhq/realtime-core/internal/metrics"
	"github.com/twokhq/realtime-core/internal/queue"
	"github.com/twokhq/realtime-core/internal/ratelimiter"
	"github.com/twokhq/realtime-core/internal/realtime"
	"github.com/twokhq/realtime-core/internal/registry"
	"github.com/twokhq/realtime-core/internal/repository"
	"github.com/twokhq/realtime-core/internal/service"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	// ---- configuration ----
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// ---- database ----
	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("database migrations applied")

	// ---- core dependencies ----
	promReg := prometheus.NewRegistry()
	m := metrics.New(promReg)

	onConnections, onOnlineUsers := m.RegistryHooks()
	reg := registry.New(registry.Hooks{
		OnConnections: onConnections,
		OnOnlineUsers: onOnlineUsers,
	})
	bcast := broadcast.New(reg, logger, m.BroadcastHook())

	chatRepo := repository.NewPgChatRepository(pool)
	socialRepo := repository.NewPgSocialRepository(pool)
	notificationRepo := repository.NewPgNotificationRepository(pool)
	scoreRepo := repository.NewPgScoreRepository(pool)

	queueOpts := queue.Options{
		MaxAttempts: cfg.QueueMaxAttempts,
		RetryDelay:  cfg.QueueRetryDelay,
	}
	queueHooks := func(name string) queue.Hooks {
		onProcessed, onRetried, onDropped, onDepth := m.QueueHooks(name)
		return queue.Hooks{
			OnProcessed: onProcessed,
			OnRetried:   onRetried,
			OnDropped:   onDropped,
			OnDepth:     onDepth,
		}
	}

	chatSvc := service.NewChatService(chatRepo, socialRepo, bcast, logger)
	notificationSvc := service.NewNotificationService(
		notificationRepo, socialRepo, bcast, queueOpts,
		queueHooks("notification"), queueHooks("new_post"), logger)
	commentSvc := service.NewCommentService(
		socialRepo, bcast, queueOpts, queueHooks("comment"), logger)
	scoreSvc := service.NewScoreService(
		scoreRepo, queueOpts, queueHooks("score"), logger)

	mailProvider := mailer.NewHTTPMailer(cfg.MailBaseURL, cfg.MailAPIKey, cfg.MailTimeout)
	mailLimiter := ratelimiter.New(cfg.MailRateLimit)
	mailSvc := service.NewMailService(
		mailProvider, mailLimiter, queueOpts, queueHooks("mail"), logger)

	verifier := auth.NewJWTVerifier(cfg.JWTSecret)
	wsHandler := realtime.NewHandler(reg, bcast, chatSvc, verifier,
		realtime.Options{PresenceDebounce: cfg.PresenceDebounce}, logger)

	// ---- queue consumers ----
	// Context for all background goroutines; cancelled on shutdown signal.
	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	var wg sync.WaitGroup
	for _, runner := range []interface{ Run(context.Context) }{
		notificationSvc, commentSvc, scoreSvc, mailSvc,
	} {
		wg.Add(1)
		go func(r interface{ Run(context.Context) }) {
			defer wg.Done()
			r.Run(workerCtx)
		}(runner)
	}

	// ---- HTTP server ----
	router := api.NewRouter(wsHandler, reg, notificationSvc, commentSvc, scoreSvc, mailSvc, promReg, logger)
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start server in a goroutine so it does not block the shutdown listener.
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// ---- graceful shutdown ----
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutdown signal received")

	// 1. Stop accepting new HTTP requests and websocket upgrades.
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	// 2. Signal the queue consumers to stop draining.
	cancelWorkers()

	// 3. Wait for in-flight jobs to finish.
	wg.Wait()

	logger.Info("server stopped cleanly")
}
