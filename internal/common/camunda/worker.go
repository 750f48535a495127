// internal/common/camunda/worker.go
package camunda

import (
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"
)

type WorkerOptions struct {
	MaxJobsActive int
	Timeout       time.Duration
}

// Worker is one open job subscription. Closing it leaves the shared client
// open.
type Worker struct {
	worker   worker.JobWorker
	logger   *zap.Logger
	taskType string
}

func NewWorker(client zbc.Client, taskType string, opts WorkerOptions, handler worker.JobHandler, logger *zap.Logger) *Worker {
	builder := client.NewJobWorker().
		JobType(taskType).
		Handler(recovering(handler, logger)).
		MaxJobsActive(maxJobs(opts.MaxJobsActive))
	if opts.Timeout > 0 {
		builder = builder.Timeout(opts.Timeout)
	}

	logger.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", maxJobs(opts.MaxJobsActive)),
		zap.Duration("timeout", opts.Timeout))

	return &Worker{
		worker:   builder.Open(),
		logger:   logger,
		taskType: taskType,
	}
}

// recovering keeps a panicking handler from taking the poller down. The job
// is left to time out and be retried by the broker.
func recovering(handler worker.JobHandler, logger *zap.Logger) worker.JobHandler {
	return func(client worker.JobClient, job entities.Job) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("handler panicked",
					zap.Any("panic", r),
					zap.Int64("jobKey", job.Key),
					zap.String("taskType", job.Type))
			}
		}()
		handler(client, job)
	}
}

func maxJobs(n int) int {
	if n <= 0 {
		return 5
	}
	return n
}

func (w *Worker) TaskType() string {
	return w.taskType
}

func (w *Worker) Close() {
	w.logger.Info("stopping worker", zap.String("taskType", w.taskType))
	w.worker.Close()
}
