package resolve_order

import (
	"context"

	resolveOrder "github.com/m04kA/SMC-AppointmentService/internal/usecase/resolve_order"
)

type ResolveOrderUseCase interface {
	Execute(ctx context.Context, req *resolveOrder.Request) *resolveOrder.Result
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
