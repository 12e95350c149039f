package resolve_order

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// OrderRepository интерфейс репозитория заказов
type OrderRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, from, to domain.OrderStatus, reason *string) (*domain.Order, error)
}

// TokenVerifier проверка токенов подтверждения
type TokenVerifier interface {
	VerifyToken(order *domain.Order, token string) bool
}

// LinkBuilder построитель адресов перенаправления
type LinkBuilder interface {
	OrderDetail(userID, orderID int64) string
	UserPage(userID int64) string
	Fallback() string
}

// TaskDispatcher отзыв отложенных задач заказа
type TaskDispatcher interface {
	CancelAutoDecline(ctx context.Context, orderID int64)
	CancelPending(ctx context.Context, orderID int64)
}

// Notifier уведомление заказчика о решении специалиста
type Notifier interface {
	Decided(ctx context.Context, order *domain.Order)
}

// Metrics метрики переходов статусов
type Metrics interface {
	ObserveTransition(from, to string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
