// cmd/api-server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"membership-workers/internal/allocator"
	"membership-workers/internal/api"
	"membership-workers/internal/common/alerts"
	"membership-workers/internal/common/aws"
	"membership-workers/internal/common/config"
	"membership-workers/internal/common/database"
	"membership-workers/internal/common/logger"
	"membership-workers/internal/common/razorpay"
	"membership-workers/internal/payments"
	"membership-workers/internal/store"
)

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting API server...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	ctx := context.Background()

	redis, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		zapLog.Fatal("redis init failed", zap.Error(err))
	}
	if err := redis.Ping(ctx); err != nil {
		zapLog.Fatal("redis unreachable", zap.Error(err))
	}
	defer redis.Close()

	var notifier *alerts.Notifier
	if cfg.Integrations.AWS.SNS.Enabled {
		snsClient, err := aws.NewSNSClient(ctx, cfg.Integrations.AWS.Region)
		if err != nil {
			zapLog.Fatal("sns client init failed", zap.Error(err))
		}
		notifier = alerts.NewNotifier(snsClient, cfg.Integrations.AWS.SNS.AlertTopicARN, log)
	}

	st := store.New(redis.GetClient())
	alloc := allocator.New(st, cfg.Membership.ReceiptPrefix)
	paymentWF := payments.NewWorkflow(st, alloc, notifier, log)

	rz := razorpay.NewClient(
		cfg.Integrations.Razorpay.KeyID,
		cfg.Integrations.Razorpay.KeySecret,
		cfg.Integrations.Razorpay.BaseURL,
	)

	handlers := api.NewHandlers(st, alloc, paymentWF, rz, cfg.Membership.Fees, log)
	router := api.NewRouter(handlers, []byte(cfg.API.JWTSecret))

	srv := &http.Server{
		Addr:         cfg.API.ListenAddress,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.API.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.API.WriteTimeout) * time.Millisecond,
	}

	go func() {
		zapLog.Info("API server listening", zap.String("address", cfg.API.ListenAddress))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("API server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining connections...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("API server shutdown error", zap.Error(err))
	}

	zapLog.Info("API server stopped gracefully")
}
