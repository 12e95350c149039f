package complete_orders

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// OrderRepository интерфейс репозитория заказов
type OrderRepository interface {
	Find(ctx context.Context, filter domain.OrdersFilter) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, from, to domain.OrderStatus, reason *string) (*domain.Order, error)
}

// Metrics метрики переходов статусов
type Metrics interface {
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
