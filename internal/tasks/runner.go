package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	orderRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/order"
	"github.com/m04kA/SMC-AppointmentService/internal/orderstate"
)

// Результаты выполнения задачи (метка метрики)
const (
	ResultApplied = "applied"
	ResultSkipped = "skipped"
	ResultRetried = "retried"
	ResultFailed  = "failed"
)

// Runner выполняет сработавшие задачи
// Каждая задача перепроверяет статус заказа, поэтому повторная или запоздалая доставка безопасна
type Runner struct {
	orders   OrderRepository
	notifier Notifier
	metrics  Metrics
	logger   Logger
}

// NewRunner создает исполнитель задач
func NewRunner(orders OrderRepository, notifier Notifier, metrics Metrics, logger Logger) *Runner {
	return &Runner{
		orders:   orders,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger,
	}
}

// Run выполняет задачу и возвращает результат (applied или skipped)
func (r *Runner) Run(ctx context.Context, task *domain.ScheduledTask) (string, error) {
	switch task.Kind {
	case domain.TaskKindAutoDecline:
		return r.autoDecline(ctx, task.OrderID)
	case domain.TaskKindReminder:
		return r.remind(ctx, task.OrderID)
	default:
		return ResultFailed, fmt.Errorf("%w: %q", ErrUnknownKind, task.Kind)
	}
}

func (r *Runner) autoDecline(ctx context.Context, orderID int64) (string, error) {
	// 1. Загружаем заказ
	order, err := r.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, orderRepo.ErrOrderNotFound) {
			r.logger.Warn("AutoDecline: order=%d not found, skipping", orderID)
			return ResultSkipped, nil
		}
		return "", fmt.Errorf("%w: get order: %v", ErrInternal, err)
	}

	// 2. Специалист уже ответил или заказ отменён
	if err := orderstate.CanTransition(order, domain.OrderStatusDeclined, orderstate.ActorSystem, ""); err != nil {
		r.logger.Info("AutoDecline: order=%d is %s, skipping", orderID, order.Status)
		return ResultSkipped, nil
	}

	// 3. Переход с проверкой исходного статуса
	updated, err := r.orders.UpdateStatus(ctx, orderID, domain.OrderStatusActive, domain.OrderStatusDeclined, nil)
	if err != nil {
		if errors.Is(err, orderRepo.ErrStatusConflict) || errors.Is(err, orderRepo.ErrOrderNotFound) {
			r.logger.Info("AutoDecline: order=%d changed concurrently, skipping", orderID)
			return ResultSkipped, nil
		}
		return "", fmt.Errorf("%w: update status: %v", ErrInternal, err)
	}

	r.metrics.ObserveTransition(string(domain.OrderStatusActive), string(domain.OrderStatusDeclined))
	r.logger.Info("AutoDecline: order=%d declined, specialist did not respond", orderID)

	// 4. Уведомляем обе стороны
	r.notifier.AutoDeclined(ctx, updated)

	return ResultApplied, nil
}

func (r *Runner) remind(ctx context.Context, orderID int64) (string, error) {
	order, err := r.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, orderRepo.ErrOrderNotFound) {
			r.logger.Warn("Reminder: order=%d not found, skipping", orderID)
			return ResultSkipped, nil
		}
		return "", fmt.Errorf("%w: get order: %v", ErrInternal, err)
	}

	if !order.IsApproved() {
		r.logger.Info("Reminder: order=%d is %s, skipping", orderID, order.Status)
		return ResultSkipped, nil
	}

	r.notifier.Reminder(ctx, order)
	r.logger.Info("Reminder: sent for order=%d", orderID)

	return ResultApplied, nil
}
