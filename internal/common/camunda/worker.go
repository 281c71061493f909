// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.uber.org/zap"
)

// HandlerFunc is the job callback shape every worker package exposes.
type HandlerFunc func(client worker.JobClient, job entities.Job)

// Instrumentor receives per-job throughput and latency measurements.
type Instrumentor interface {
	RecordJobProcessed(ctx context.Context, taskType string)
	RecordJobDuration(ctx context.Context, taskType string, duration time.Duration)
}

// WorkerSet registers job workers on a shared client and closes them together
// on shutdown.
type WorkerSet struct {
	client  *Client
	logger  *zap.Logger
	instr   Instrumentor
	workers []worker.JobWorker
}

func NewWorkerSet(client *Client, logger *zap.Logger, instr Instrumentor) *WorkerSet {
	return &WorkerSet{client: client, logger: logger, instr: instr}
}

func (ws *WorkerSet) Register(taskType string, maxJobsActive int, timeout time.Duration, handler HandlerFunc) {
	h := handler
	if ws.instr != nil {
		h = func(client worker.JobClient, job entities.Job) {
			start := time.Now()
			handler(client, job)
			ws.instr.RecordJobProcessed(context.Background(), taskType)
			ws.instr.RecordJobDuration(context.Background(), taskType, time.Since(start))
		}
	}

	jw := ws.client.GetClient().NewJobWorker().
		JobType(taskType).
		Handler(worker.JobHandler(h)).
		MaxJobsActive(maxJobsActive).
		Timeout(timeout).
		Open()

	ws.workers = append(ws.workers, jw)
	ws.logger.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", maxJobsActive),
		zap.Duration("timeout", timeout),
	)
}

// Close drains every registered worker, then the gRPC connection.
func (ws *WorkerSet) Close() {
	for _, jw := range ws.workers {
		jw.Close()
	}
	ws.client.Close()
}
