package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// WorkerConfig параметры опроса очереди
type WorkerConfig struct {
	PollInterval time.Duration
	BatchSize    int
	Concurrency  int
	RetryBackoff time.Duration
}

// Worker забирает сработавшие задачи из очереди и выполняет их на ограниченном пуле
type Worker struct {
	scheduler    Scheduler
	runner       *Runner
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
	cfg          WorkerConfig
}

// NewWorker создает воркер отложенных задач
func NewWorker(scheduler Scheduler, runner *Runner, metrics Metrics, logger Logger, cfg WorkerConfig) *Worker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 30 * time.Second
	}
	return &Worker{
		scheduler:    scheduler,
		runner:       runner,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
		cfg:          cfg,
	}
}

// WithTimeProvider подменяет источник времени (для тестов)
func (w *Worker) WithTimeProvider(tp TimeProvider) *Worker {
	w.timeProvider = tp
	return w
}

// Run опрашивает очередь до отмены контекста
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("Worker: started, poll=%s batch=%d concurrency=%d",
		w.cfg.PollInterval, w.cfg.BatchSize, w.cfg.Concurrency)

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Worker: stopped")
			return nil
		case <-ticker.C:
			if _, err := w.ProcessDue(ctx); err != nil {
				w.logger.Error("Worker: batch failed: %v", err)
			}
		}
	}
}

// ProcessDue выполняет одну выборку сработавших задач и возвращает их число
// Ошибки отдельных задач не прерывают остальные
func (w *Worker) ProcessDue(ctx context.Context) (int, error) {
	due, err := w.scheduler.FetchDue(ctx, w.timeProvider.Now(), w.cfg.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("%w: fetch due: %v", ErrInternal, err)
	}
	if len(due) == 0 {
		return 0, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.cfg.Concurrency)

	for _, task := range due {
		g.Go(func() error {
			w.process(gctx, task)
			return nil
		})
	}

	_ = g.Wait()
	return len(due), nil
}

func (w *Worker) process(ctx context.Context, task *domain.ScheduledTask) {
	started := time.Now()

	ctx, span := otel.Tracer("tasks").Start(ctx, "task."+string(task.Kind),
		trace.WithAttributes(
			attribute.String("task.id", task.ID.String()),
			attribute.Int64("order.id", task.OrderID),
			attribute.Int("task.attempt", task.Attempts),
		),
	)
	defer span.End()

	result, err := w.runSafe(ctx, task)
	if err == nil {
		if ackErr := w.scheduler.Ack(ctx, task.ID); ackErr != nil {
			w.logger.Error("Worker: ack task=%s failed: %v", task.ID, ackErr)
		}
		w.metrics.ObserveTask(string(task.Kind), result, time.Since(started))
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	// Задачи идемпотентны, поэтому повтор безопасен
	if task.CanRetry() && !errors.Is(err, ErrUnknownKind) {
		next := w.timeProvider.Now().Add(w.cfg.RetryBackoff * time.Duration(task.Attempts))
		w.logger.Warn("Worker: %s task=%s order=%d attempt %d/%d failed, retry at %s: %v",
			task.Kind, task.ID, task.OrderID, task.Attempts, task.MaxAttempts, next.Format(time.RFC3339), err)
		if retryErr := w.scheduler.Retry(ctx, task.ID, next, err.Error()); retryErr != nil {
			w.logger.Error("Worker: retry task=%s failed: %v", task.ID, retryErr)
		}
		w.metrics.ObserveTask(string(task.Kind), ResultRetried, time.Since(started))
		return
	}

	w.logger.Error("Worker: %s task=%s order=%d failed permanently after %d attempts: %v",
		task.Kind, task.ID, task.OrderID, task.Attempts, err)
	if failErr := w.scheduler.Fail(ctx, task.ID, err.Error()); failErr != nil {
		w.logger.Error("Worker: fail task=%s failed: %v", task.ID, failErr)
	}
	w.metrics.ObserveTask(string(task.Kind), ResultFailed, time.Since(started))
}

func (w *Worker) runSafe(ctx context.Context, task *domain.ScheduledTask) (result string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: panic: %v", ErrInternal, p)
		}
	}()
	return w.runner.Run(ctx, task)
}
