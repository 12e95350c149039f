package task

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
)

const table = "scheduled_tasks"

// DefaultLease время, после которого задача в статусе running считается брошенной
const DefaultLease = 5 * time.Minute

var columns = []string{
	"id",
	"kind",
	"order_id",
	"run_at",
	"status",
	"attempts",
	"max_attempts",
	"last_error",
	"created_at",
	"updated_at",
}

// Repository очередь отложенных задач в таблице scheduled_tasks
// Несколько экземпляров сервиса могут опрашивать её одновременно (FOR UPDATE SKIP LOCKED)
type Repository struct {
	db        DBExecutor
	txManager TransactionManager
	lease     time.Duration
}

// NewRepository создает репозиторий задач
func NewRepository(db DBExecutor, txManager TransactionManager) *Repository {
	return &Repository{db: db, txManager: txManager, lease: DefaultLease}
}

// Enqueue вставляет задачу или перезаписывает существующую с тем же ID
func (r *Repository) Enqueue(ctx context.Context, task *domain.ScheduledTask) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(table).
		Columns("id", "kind", "order_id", "run_at", "status", "attempts", "max_attempts").
		Values(task.ID.String(), task.Kind, task.OrderID, task.RunAt, domain.TaskStatusPending, 0, task.MaxAttempts).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			run_at = EXCLUDED.run_at,
			status = EXCLUDED.status,
			attempts = 0,
			max_attempts = EXCLUDED.max_attempts,
			last_error = NULL,
			updated_at = NOW()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Enqueue - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Enqueue - execute insert: %v", ErrExecQuery, err)
	}
	return nil
}

// Cancel отменяет ожидающую задачу
func (r *Repository) Cancel(ctx context.Context, id uuid.UUID) error {
	return r.cancelWhere(ctx, "Cancel", squirrel.Eq{"id": id.String()})
}

// CancelByOrder отменяет все ожидающие задачи заказа
func (r *Repository) CancelByOrder(ctx context.Context, orderID int64) error {
	return r.cancelWhere(ctx, "CancelByOrder", squirrel.Eq{"order_id": orderID})
}

func (r *Repository) cancelWhere(ctx context.Context, method string, pred squirrel.Eq) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("status", domain.TaskStatusCancelled).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(pred).
		Where(squirrel.Eq{"status": domain.TaskStatusPending}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, method, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, method, err)
	}
	return nil
}

// FetchDue захватывает сработавшие задачи
// Выбор с блокировкой и пометка running выполняются в одной транзакции;
// задачи, зависшие в running дольше lease, захватываются повторно
func (r *Repository) FetchDue(ctx context.Context, now time.Time, limit int) ([]*domain.ScheduledTask, error) {
	var claimed []*domain.ScheduledTask

	err := r.txManager.Do(ctx, func(txCtx context.Context) error {
		executor := dbmetrics.GetExecutor(txCtx, r.db)

		selectQuery, args, err := psqlbuilder.Select("id").
			From(table).
			Where(squirrel.Or{
				squirrel.And{
					squirrel.Eq{"status": domain.TaskStatusPending},
					squirrel.LtOrEq{"run_at": now},
				},
				squirrel.And{
					squirrel.Eq{"status": domain.TaskStatusRunning},
					squirrel.LtOrEq{"updated_at": now.Add(-r.lease)},
				},
			}).
			OrderBy("run_at ASC").
			Limit(uint64(limit)).
			Suffix("FOR UPDATE SKIP LOCKED").
			ToSql()
		if err != nil {
			return fmt.Errorf("%w: FetchDue - build select query: %v", ErrBuildQuery, err)
		}

		rows, err := executor.QueryContext(txCtx, selectQuery, args...)
		if err != nil {
			return fmt.Errorf("%w: FetchDue - execute select: %v", ErrExecQuery, err)
		}

		ids := make([]string, 0, limit)
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return fmt.Errorf("%w: FetchDue - scan id: %v", ErrScanRow, err)
			}
			ids = append(ids, id)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("%w: FetchDue - rows error: %v", ErrScanRow, err)
		}
		if len(ids) == 0 {
			return nil
		}

		updateQuery, args, err := psqlbuilder.Update(table).
			Set("status", domain.TaskStatusRunning).
			Set("attempts", squirrel.Expr("attempts + 1")).
			Set("updated_at", now).
			Where(squirrel.Eq{"id": ids}).
			Suffix("RETURNING " + strings.Join(columns, ", ")).
			ToSql()
		if err != nil {
			return fmt.Errorf("%w: FetchDue - build update query: %v", ErrBuildQuery, err)
		}

		updated, err := executor.QueryContext(txCtx, updateQuery, args...)
		if err != nil {
			return fmt.Errorf("%w: FetchDue - execute update: %v", ErrExecQuery, err)
		}
		defer updated.Close()

		for updated.Next() {
			task, err := scanTask(updated)
			if err != nil {
				return fmt.Errorf("%w: FetchDue - scan task: %v", ErrScanRow, err)
			}
			claimed = append(claimed, task)
		}
		return updated.Err()
	})
	if err != nil {
		return nil, err
	}

	return claimed, nil
}

// Ack помечает задачу выполненной
func (r *Repository) Ack(ctx context.Context, id uuid.UUID) error {
	return r.finish(ctx, "Ack", id, psqlbuilder.Update(table).
		Set("status", domain.TaskStatusDone))
}

// Retry возвращает задачу в очередь с новым временем запуска
func (r *Repository) Retry(ctx context.Context, id uuid.UUID, nextRunAt time.Time, lastErr string) error {
	return r.finish(ctx, "Retry", id, psqlbuilder.Update(table).
		Set("status", domain.TaskStatusPending).
		Set("run_at", nextRunAt).
		Set("last_error", lastErr))
}

// Fail помечает задачу окончательно проваленной
func (r *Repository) Fail(ctx context.Context, id uuid.UUID, lastErr string) error {
	return r.finish(ctx, "Fail", id, psqlbuilder.Update(table).
		Set("status", domain.TaskStatusFailed).
		Set("last_error", lastErr))
}

// finish меняет только задачи в статусе running: задача могла быть перезаписана новым Enqueue
func (r *Repository) finish(ctx context.Context, method string, id uuid.UUID, builder squirrel.UpdateBuilder) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := builder.
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id.String(), "status": domain.TaskStatusRunning}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, method, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, method, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (*domain.ScheduledTask, error) {
	var t domain.ScheduledTask
	var lastError sql.NullString

	err := row.Scan(
		&t.ID,
		&t.Kind,
		&t.OrderID,
		&t.RunAt,
		&t.Status,
		&t.Attempts,
		&t.MaxAttempts,
		&lastError,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastError.Valid {
		t.LastError = &lastError.String
	}
	return &t, nil
}
