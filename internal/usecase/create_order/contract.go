package create_order

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// OrderRepository интерфейс репозитория заказов
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	Find(ctx context.Context, filter domain.OrdersFilter) ([]*domain.Order, error)
}

// CatalogClient интерфейс клиента BusinessService
type CatalogClient interface {
	GetService(ctx context.Context, serviceID int64) (*domain.Service, error)
	GetPosition(ctx context.Context, positionID int64) (*domain.Position, error)
}

// UserServiceClient интерфейс клиента UserService
type UserServiceClient interface {
	GetUser(ctx context.Context, userID int64) (*domain.User, error)
}

// TaskDispatcher планировщик отложенных задач заказа
type TaskDispatcher interface {
	ScheduleAutoDecline(ctx context.Context, order *domain.Order, fireAt time.Time) error
	ScheduleReminder(ctx context.Context, order *domain.Order, fireAt time.Time) error
}

// TokenGenerator генератор токенов подтверждения
type TokenGenerator interface {
	MakeToken(order *domain.Order) string
}

// LinkBuilder построитель ссылок подтверждения
type LinkBuilder interface {
	Resolve(order *domain.Order, token string, status domain.OrderStatus) string
}

// Notifier уведомление специалиста о новом заказе
type Notifier interface {
	ApprovalRequested(ctx context.Context, order *domain.Order, serviceName, approveURL, declineURL string)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
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
