package get_free_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// OrderRepository интерфейс репозитория заказов
type OrderRepository interface {
	Find(ctx context.Context, filter domain.OrdersFilter) ([]*domain.Order, error)
}

// CatalogClient интерфейс клиента BusinessService
type CatalogClient interface {
	GetService(ctx context.Context, serviceID int64) (*domain.Service, error)
	GetPosition(ctx context.Context, positionID int64) (*domain.Position, error)
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
