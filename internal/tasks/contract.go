package tasks

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Scheduler отложенная очередь задач
// Реализации: infra/storage/task (Postgres), infra/queue/redisqueue, infra/queue/memqueue
type Scheduler interface {
	// Enqueue ставит задачу в очередь; задача с тем же ID перезаписывается
	Enqueue(ctx context.Context, task *domain.ScheduledTask) error
	// Cancel отменяет ожидающую задачу; отсутствие задачи не ошибка
	Cancel(ctx context.Context, id uuid.UUID) error
	// CancelByOrder отменяет все ожидающие задачи заказа
	CancelByOrder(ctx context.Context, orderID int64) error
	// FetchDue забирает до limit задач с RunAt <= now и помечает их выполняемыми
	FetchDue(ctx context.Context, now time.Time, limit int) ([]*domain.ScheduledTask, error)
	Ack(ctx context.Context, id uuid.UUID) error
	Retry(ctx context.Context, id uuid.UUID, nextRunAt time.Time, lastErr string) error
	Fail(ctx context.Context, id uuid.UUID, lastErr string) error
}

// OrderRepository интерфейс репозитория заказов
type OrderRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, from, to domain.OrderStatus, reason *string) (*domain.Order, error)
}

// Notifier уведомления, отправляемые задачами
type Notifier interface {
	AutoDeclined(ctx context.Context, order *domain.Order)
	Reminder(ctx context.Context, order *domain.Order)
}

// Metrics метрики выполнения задач
type Metrics interface {
	ObserveTask(kind, result string, elapsed time.Duration)
	ObserveTransition(from, to string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
