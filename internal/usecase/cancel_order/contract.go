package cancel_order

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// OrderRepository интерфейс репозитория заказов
type OrderRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, from, to domain.OrderStatus, reason *string) (*domain.Order, error)
}

// TaskDispatcher отзыв отложенных задач заказа
type TaskDispatcher interface {
	CancelPending(ctx context.Context, orderID int64)
}

// Notifier уведомление второй стороны об отмене
type Notifier interface {
	Cancelled(ctx context.Context, order *domain.Order, cancelledBy int64)
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
