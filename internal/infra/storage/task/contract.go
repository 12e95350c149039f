package task

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
)

type DBExecutor = dbmetrics.DBExecutor

// TransactionManager нужен для атомарного захвата задач
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
