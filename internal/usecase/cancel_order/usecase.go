package cancel_order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	orderRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/order"
	"github.com/m04kA/SMC-AppointmentService/internal/orderstate"
)

// UseCase use case для отмены заказа участником
type UseCase struct {
	orderRepo  OrderRepository
	dispatcher TaskDispatcher
	notifier   Notifier
	metrics    Metrics
	logger     Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	orderRepo OrderRepository,
	dispatcher TaskDispatcher,
	notifier Notifier,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		orderRepo:  orderRepo,
		dispatcher: dispatcher,
		notifier:   notifier,
		metrics:    metrics,
		logger:     logger,
	}
}

// Execute переводит заказ в cancelled и снимает его отложенные задачи
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CancelOrder: order=%d, user=%d", req.OrderID, req.UserID)

	// 1. Валидация входных данных
	if req.OrderID <= 0 || req.UserID <= 0 {
		return nil, fmt.Errorf("%w: order and user must be positive", ErrInvalidInput)
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		uc.logger.Warn("CancelOrder: empty reason, order=%d", req.OrderID)
		return nil, ErrReasonRequired
	}
	if utf8.RuneCountInString(reason) > domain.MaxCancellationReasonLength {
		uc.logger.Warn("CancelOrder: reason too long, order=%d", req.OrderID)
		return nil, ErrReasonTooLong
	}

	// 2. Получаем заказ
	order, err := uc.orderRepo.GetByID(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, orderRepo.ErrOrderNotFound) {
			uc.logger.Warn("CancelOrder: order id=%d not found", req.OrderID)
			return nil, ErrOrderNotFound
		}
		uc.logger.Error("CancelOrder: failed to get order id=%d: %v", req.OrderID, err)
		return nil, fmt.Errorf("%w: failed to get order: %v", ErrInternal, err)
	}

	// 3. Посторонний пользователь не узнаёт даже статус заказа
	actor := orderstate.ActorFor(order, req.UserID)
	if actor == orderstate.ActorNone {
		uc.logger.Warn("CancelOrder: user=%d is not a party of order=%d", req.UserID, order.ID)
		return nil, ErrPermissionDenied
	}

	// 4. Проверяем переход по автомату статусов
	if err := orderstate.CanTransition(order, domain.OrderStatusCancelled, actor, reason); err != nil {
		uc.logger.Warn("CancelOrder: order id=%d: %v", order.ID, err)
		return nil, mapTransitionError(err)
	}

	// 5. Сохраняем с проверкой исходного статуса
	from := order.Status
	updated, err := uc.orderRepo.UpdateStatus(ctx, order.ID, from, domain.OrderStatusCancelled, &reason)
	if err != nil {
		switch {
		case errors.Is(err, orderRepo.ErrStatusConflict):
			uc.logger.Warn("CancelOrder: order id=%d changed concurrently", order.ID)
			return nil, fmt.Errorf("%w: status changed concurrently", ErrInvalidTransition)
		case errors.Is(err, orderRepo.ErrOrderNotFound):
			return nil, ErrOrderNotFound
		}
		uc.logger.Error("CancelOrder: failed to update order id=%d: %v", order.ID, err)
		return nil, fmt.Errorf("%w: failed to update order: %v", ErrInternal, err)
	}
	uc.metrics.ObserveTransition(string(from), string(updated.Status))

	// 6. Снимаем автоотклонение и напоминание
	uc.dispatcher.CancelPending(ctx, updated.ID)

	// 7. Сообщаем второй стороне
	uc.notifier.Cancelled(ctx, updated, req.UserID)

	uc.logger.Info("CancelOrder: order id=%d cancelled by %s user=%d", updated.ID, actor, req.UserID)
	return &Response{Order: updated}, nil
}

func mapTransitionError(err error) error {
	switch {
	case errors.Is(err, orderstate.ErrPermissionDenied):
		return ErrPermissionDenied
	case errors.Is(err, orderstate.ErrReasonRequired):
		return ErrReasonRequired
	default:
		return fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}
}
