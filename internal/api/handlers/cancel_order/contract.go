package cancel_order

import (
	"context"

	cancelOrder "github.com/m04kA/SMC-AppointmentService/internal/usecase/cancel_order"
)

type CancelOrderUseCase interface {
	Execute(ctx context.Context, req *cancelOrder.Request) (*cancelOrder.Response, error)
}

// LinkBuilder адрес страницы пользователя для редиректа после отмены
type LinkBuilder interface {
	UserPage(userID int64) string
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
