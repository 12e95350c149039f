package resolve_order

import (
	"context"
	"errors"

	"github.com/m04kA/SMC-AppointmentService/internal/approval"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	orderRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/order"
	"github.com/m04kA/SMC-AppointmentService/internal/orderstate"
)

// UseCase use case подтверждения или отклонения заказа по ссылке из письма
// Ошибки не возвращаются: любой исход заканчивается перенаправлением
type UseCase struct {
	orderRepo  OrderRepository
	tokens     TokenVerifier
	links      LinkBuilder
	dispatcher TaskDispatcher
	notifier   Notifier
	metrics    Metrics
	logger     Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	orderRepo OrderRepository,
	tokens TokenVerifier,
	links LinkBuilder,
	dispatcher TaskDispatcher,
	notifier Notifier,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		orderRepo:  orderRepo,
		tokens:     tokens,
		links:      links,
		dispatcher: dispatcher,
		notifier:   notifier,
		metrics:    metrics,
		logger:     logger,
	}
}

// Execute проверяет токен и применяет решение специалиста
func (uc *UseCase) Execute(ctx context.Context, req *Request) *Result {
	// 1. Декодируем сегменты ссылки
	orderID, err := approval.DecodeOrderID(req.UID)
	if err != nil {
		uc.logger.Warn("ResolveOrder: bad uid %q: %v", req.UID, err)
		return &Result{Redirect: uc.links.Fallback()}
	}

	// 2. Загружаем заказ
	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, orderRepo.ErrOrderNotFound) {
			uc.logger.Warn("ResolveOrder: order id=%d not found", orderID)
		} else {
			uc.logger.Error("ResolveOrder: failed to get order id=%d: %v", orderID, err)
		}
		return &Result{Redirect: uc.links.Fallback()}
	}

	fallback := &Result{Redirect: uc.links.UserPage(order.SpecialistID)}

	// 3. Целевой статус: только approved или declined
	target, err := approval.DecodeStatus(req.Status)
	if err != nil || (target != domain.OrderStatusApproved && target != domain.OrderStatusDeclined) {
		uc.logger.Warn("ResolveOrder: order id=%d, unsupported status param %q", orderID, req.Status)
		return fallback
	}

	// 4. Токен привязан к текущему статусу и времени изменения заказа
	if !uc.tokens.VerifyToken(order, req.Token) {
		uc.logger.Warn("ResolveOrder: order id=%d, invalid or expired token", orderID)
		return fallback
	}

	// 5. Проверяем переход по автомату статусов
	if err := orderstate.CanTransition(order, target, orderstate.ActorSpecialist, ""); err != nil {
		uc.logger.Warn("ResolveOrder: order id=%d: %v", orderID, err)
		return fallback
	}

	// 6. Сохраняем с проверкой исходного статуса
	from := order.Status
	updated, err := uc.orderRepo.UpdateStatus(ctx, order.ID, from, target, nil)
	if err != nil {
		if errors.Is(err, orderRepo.ErrStatusConflict) || errors.Is(err, orderRepo.ErrOrderNotFound) {
			uc.logger.Warn("ResolveOrder: order id=%d changed concurrently: %v", orderID, err)
		} else {
			uc.logger.Error("ResolveOrder: failed to update order id=%d: %v", orderID, err)
		}
		return fallback
	}
	uc.metrics.ObserveTransition(string(from), string(target))

	// 7. Автоотклонение больше не нужно; отклонённому заказу не нужно и напоминание
	if target == domain.OrderStatusDeclined {
		uc.dispatcher.CancelPending(ctx, updated.ID)
	} else {
		uc.dispatcher.CancelAutoDecline(ctx, updated.ID)
	}

	// 8. Сообщаем заказчику о решении
	uc.notifier.Decided(ctx, updated)

	uc.logger.Info("ResolveOrder: order id=%d %s -> %s", updated.ID, from, updated.Status)

	return &Result{Redirect: uc.links.OrderDetail(updated.SpecialistID, updated.ID), Applied: true}
}
