package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Dispatcher регистрирует и отзывает отложенные задачи заказа
type Dispatcher struct {
	scheduler   Scheduler
	maxAttempts int
	logger      Logger
}

// NewDispatcher создает диспетчер задач
func NewDispatcher(scheduler Scheduler, maxAttempts int, logger Logger) *Dispatcher {
	if maxAttempts <= 0 {
		maxAttempts = domain.DefaultTaskMaxAttempts
	}
	return &Dispatcher{
		scheduler:   scheduler,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

// ScheduleAutoDecline регистрирует автоотклонение заказа, если специалист не ответит до fireAt
func (d *Dispatcher) ScheduleAutoDecline(ctx context.Context, order *domain.Order, fireAt time.Time) error {
	return d.schedule(ctx, order, domain.TaskKindAutoDecline, fireAt)
}

// ScheduleReminder регистрирует напоминание заказчику о записи
func (d *Dispatcher) ScheduleReminder(ctx context.Context, order *domain.Order, fireAt time.Time) error {
	return d.schedule(ctx, order, domain.TaskKindReminder, fireAt)
}

// CancelAutoDecline отзывает автоотклонение (после решения специалиста)
func (d *Dispatcher) CancelAutoDecline(ctx context.Context, orderID int64) {
	if err := d.scheduler.Cancel(ctx, domain.TaskID(orderID, domain.TaskKindAutoDecline)); err != nil {
		d.logger.Warn("Dispatcher: failed to cancel auto-decline for order=%d: %v", orderID, err)
	}
}

// CancelPending отзывает все ожидающие задачи заказа
// Отзыв не гарантирован: задача, которая уже выполняется, сама перепроверит статус заказа
func (d *Dispatcher) CancelPending(ctx context.Context, orderID int64) {
	if err := d.scheduler.CancelByOrder(ctx, orderID); err != nil {
		d.logger.Warn("Dispatcher: failed to cancel pending tasks for order=%d: %v", orderID, err)
		return
	}
	d.logger.Info("Dispatcher: pending tasks cancelled for order=%d", orderID)
}

func (d *Dispatcher) schedule(ctx context.Context, order *domain.Order, kind domain.TaskKind, fireAt time.Time) error {
	task := &domain.ScheduledTask{
		ID:          domain.TaskID(order.ID, kind),
		Kind:        kind,
		OrderID:     order.ID,
		RunAt:       fireAt.UTC(),
		Status:      domain.TaskStatusPending,
		MaxAttempts: d.maxAttempts,
	}

	if err := d.scheduler.Enqueue(ctx, task); err != nil {
		d.logger.Error("Dispatcher: failed to enqueue %s for order=%d: %v", kind, order.ID, err)
		return fmt.Errorf("%w: enqueue %s: %v", ErrInternal, kind, err)
	}

	d.logger.Info("Dispatcher: %s scheduled for order=%d at %s", kind, order.ID, task.RunAt.Format(time.RFC3339))
	return nil
}
