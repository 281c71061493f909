// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"membership-workers/internal/allocator"
	"membership-workers/internal/common/alerts"
	"membership-workers/internal/common/aws"
	"membership-workers/internal/common/camunda"
	"membership-workers/internal/common/config"
	"membership-workers/internal/common/database"
	"membership-workers/internal/common/logger"
	"membership-workers/internal/common/observability"
	"membership-workers/internal/lifecycle"
	"membership-workers/internal/payments"
	"membership-workers/internal/store"

	es "membership-workers/internal/workers/communication/email-send"
	aa "membership-workers/internal/workers/membership/approve-application"
	clu "membership-workers/internal/workers/membership/check-life-upgrade"
	rp "membership-workers/internal/workers/membership/record-payment"
	rds "membership-workers/internal/workers/membership/renewal-due-scan"
	sa "membership-workers/internal/workers/membership/submit-application"
	ims "membership-workers/internal/workers/reporting/index-member-search"
	smr "membership-workers/internal/workers/reporting/sync-member-report"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var zeebeClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebeClient, err = camunda.NewClient(cfg.Camunda.BrokerAddress)
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	workers := camunda.NewWorkerSet(zeebeClient, zapLog, obs)

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init AWS Clients ---
	var sesClient *aws.SESClient
	if cfg.Integrations.AWS.SES.Enabled {
		sesClient, err = aws.NewSESClient(ctx, cfg.Integrations.AWS.Region)
		if err != nil {
			zapLog.Fatal("ses client init failed", zap.Error(err))
		}
	}

	var notifier *alerts.Notifier
	if cfg.Integrations.AWS.SNS.Enabled {
		snsClient, err := aws.NewSNSClient(ctx, cfg.Integrations.AWS.Region)
		if err != nil {
			zapLog.Fatal("sns client init failed", zap.Error(err))
		}
		notifier = alerts.NewNotifier(snsClient, cfg.Integrations.AWS.SNS.AlertTopicARN, log)
	}

	zapLog.Info("All external service clients initialized")

	// --- Domain Services ---
	st := store.New(redis.GetClient())
	alloc := allocator.New(st, cfg.Membership.ReceiptPrefix).WithInstrumentor(obs)
	engine := lifecycle.NewEngine(st, log)
	paymentWF := payments.NewWorkflow(st, alloc, notifier, log)

	// --- Register Workers ---

	// Membership workers
	if cfg.Workers[sa.TaskType].Enabled {
		handler := sa.NewHandler(
			&sa.Config{
				Timeout: time.Duration(cfg.Workers[sa.TaskType].Timeout) * time.Millisecond,
			},
			st, alloc, log,
		)
		startWorker(workers, sa.TaskType, cfg.Workers[sa.TaskType], handler.Handle)
	}

	if cfg.Workers[rp.TaskType].Enabled {
		handler := rp.NewHandler(
			&rp.Config{
				Timeout: time.Duration(cfg.Workers[rp.TaskType].Timeout) * time.Millisecond,
			},
			paymentWF, log,
		)
		startWorker(workers, rp.TaskType, cfg.Workers[rp.TaskType], handler.Handle)
	}

	if cfg.Workers[rds.TaskType].Enabled {
		handler := rds.NewHandler(
			&rds.Config{
				Timeout: time.Duration(cfg.Workers[rds.TaskType].Timeout) * time.Millisecond,
			},
			engine, log,
		)
		startWorker(workers, rds.TaskType, cfg.Workers[rds.TaskType], handler.Handle)
	}

	if cfg.Workers[aa.TaskType].Enabled {
		handler := aa.NewHandler(
			&aa.Config{
				Timeout: time.Duration(cfg.Workers[aa.TaskType].Timeout) * time.Millisecond,
			},
			st, log,
		)
		startWorker(workers, aa.TaskType, cfg.Workers[aa.TaskType], handler.Handle)
	}

	if cfg.Workers[clu.TaskType].Enabled {
		handler := clu.NewHandler(
			&clu.Config{
				Timeout: time.Duration(cfg.Workers[clu.TaskType].Timeout) * time.Millisecond,
			},
			st, log,
		)
		startWorker(workers, clu.TaskType, cfg.Workers[clu.TaskType], handler.Handle)
	}

	// Communication worker
	if cfg.Workers[es.TaskType].Enabled {
		emailCfg := es.DefaultConfig()
		emailCfg.Timeout = time.Duration(cfg.Workers[es.TaskType].Timeout) * time.Millisecond
		emailCfg.SESEnabled = cfg.Integrations.AWS.SES.Enabled
		emailCfg.AWSRegion = cfg.Integrations.AWS.Region
		emailCfg.SMTPHost = cfg.Integrations.SMTP.Host
		emailCfg.SMTPPort = cfg.Integrations.SMTP.Port
		emailCfg.SMTPUsername = cfg.Integrations.SMTP.Username
		emailCfg.SMTPPassword = cfg.Integrations.SMTP.Password
		emailCfg.UseTLS = cfg.Integrations.SMTP.UseTLS
		if cfg.Notifications.Email.FromEmail != "" {
			emailCfg.DefaultFrom = cfg.Notifications.Email.FromEmail
		}
		if err := emailCfg.Validate(); err != nil {
			zapLog.Fatal("email-send config invalid", zap.Error(err))
		}

		service := es.NewService(es.ServiceDependencies{Logger: log}, emailCfg, sesClient)
		handler := es.NewHandler(emailCfg, service, log)
		startWorker(workers, es.TaskType, cfg.Workers[es.TaskType], handler.Handle)
	}

	// Reporting workers
	if cfg.Workers[smr.TaskType].Enabled {
		handler := smr.NewHandler(
			&smr.Config{
				Timeout: time.Duration(cfg.Workers[smr.TaskType].Timeout) * time.Millisecond,
			},
			st, pg.GetDB(), log,
		)
		startWorker(workers, smr.TaskType, cfg.Workers[smr.TaskType], handler.Handle)
	}

	if cfg.Workers[ims.TaskType].Enabled {
		handler := ims.NewHandler(
			&ims.Config{
				Timeout: time.Duration(cfg.Workers[ims.TaskType].Timeout) * time.Millisecond,
				Index:   "members",
			},
			st, esClient.Client, log,
		)
		startWorker(workers, ims.TaskType, cfg.Workers[ims.TaskType], handler.Handle)
	}

	zapLog.Info("All workers registered successfully")

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := zeebeClient.HealthCheck(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "not ready",
					"error":  err.Error(),
				})
				return
			}
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :9090")
		if err := http.ListenAndServe(":9090", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")

	workers.Close()

	zapLog.Info("Worker manager stopped gracefully")
}

func startWorker(ws *camunda.WorkerSet, taskType string, wcfg config.WorkerConfig, handler camunda.HandlerFunc) {
	ws.Register(taskType, wcfg.MaxJobsActive, time.Duration(wcfg.Timeout)*time.Millisecond, handler)
}
