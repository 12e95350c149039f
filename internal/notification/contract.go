package notification

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Transport доставляет готовое письмо
type Transport interface {
	Deliver(ctx context.Context, msg Message) error
}

// Sender отправляет уведомление пользователю
type Sender interface {
	Send(ctx context.Context, n Notification) error
}

// UserProvider источник адресов получателей
type UserProvider interface {
	GetUser(ctx context.Context, userID int64) (*domain.User, error)
}

// Metrics метрики отправки уведомлений
type Metrics interface {
	ObserveNotification(template, result string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
