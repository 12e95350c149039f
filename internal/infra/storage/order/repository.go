package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
)

const table = "orders"

var columns = []string{
	"id",
	"customer_id",
	"specialist_id",
	"service_id",
	"start_time",
	"end_time",
	"status",
	"reason",
	"created_at",
	"updated_at",
}

// Repository репозиторий заказов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория заказов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет новый заказ
// Если в контексте передана транзакция, использует её
func (r *Repository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(table).
		Columns(
			"customer_id",
			"specialist_id",
			"service_id",
			"start_time",
			"end_time",
			"status",
			"reason",
		).
		Values(
			order.CustomerID,
			order.SpecialistID,
			order.ServiceID,
			order.StartTime,
			order.EndTime,
			order.Status,
			order.Reason,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&order.ID,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return order, nil
}

// GetByID получает заказ по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	order, err := scanOrder(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan order: %v", ErrScanRow, err)
	}

	return order, nil
}

// Find возвращает заказы по фильтру, отсортированные по времени начала
// Внутри транзакции строки блокируются (FOR UPDATE), чтобы проверка пересечений и вставка были атомарны
func (r *Repository) Find(ctx context.Context, filter domain.OrdersFilter) ([]*domain.Order, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(columns...).
		From(table).
		OrderBy("start_time ASC", "id ASC")

	if filter.CustomerID != nil && filter.SpecialistID != nil && *filter.CustomerID == *filter.SpecialistID {
		// Все заказы пользователя, в какой бы роли он ни участвовал
		builder = builder.Where(squirrel.Or{
			squirrel.Eq{"customer_id": *filter.CustomerID},
			squirrel.Eq{"specialist_id": *filter.SpecialistID},
		})
	} else {
		if filter.CustomerID != nil {
			builder = builder.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
		}
		if filter.SpecialistID != nil {
			builder = builder.Where(squirrel.Eq{"specialist_id": *filter.SpecialistID})
		}
	}

	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		builder = builder.Where(squirrel.Eq{"status": statuses})
	}
	if filter.StartFrom != nil {
		builder = builder.Where(squirrel.GtOrEq{"start_time": *filter.StartFrom})
	}
	if filter.StartTo != nil {
		builder = builder.Where(squirrel.Lt{"start_time": *filter.StartTo})
	}
	if filter.EndBefore != nil {
		builder = builder.Where(squirrel.LtOrEq{"end_time": *filter.EndBefore})
	}
	if filter.EndAfter != nil {
		builder = builder.Where(squirrel.Gt{"end_time": *filter.EndAfter})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(filter.Limit)
	}

	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Find - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: Find - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	orders := make([]*domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: Find - scan order: %v", ErrScanRow, err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: Find - rows error: %v", ErrScanRow, err)
	}

	return orders, nil
}

// UpdateStatus переводит заказ из статуса from в статус to
// Обновление выполняется только если текущий статус равен from,
// иначе возвращается ErrStatusConflict (или ErrOrderNotFound, если заказа нет)
func (r *Repository) UpdateStatus(ctx context.Context, id int64, from, to domain.OrderStatus, reason *string) (*domain.Order, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Update(table).
		Set("status", to).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": from})
	if reason != nil {
		builder = builder.Set("reason", *reason)
	}

	query, args, err := builder.Suffix("RETURNING " + strings.Join(columns, ", ")).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	order, err := scanOrder(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, fmt.Errorf("%w: order %d is no longer %s", ErrStatusConflict, id, from)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: UpdateStatus - execute update: %v", ErrExecQuery, err)
	}

	return order, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var reason sql.NullString

	err := row.Scan(
		&order.ID,
		&order.CustomerID,
		&order.SpecialistID,
		&order.ServiceID,
		&order.StartTime,
		&order.EndTime,
		&order.Status,
		&reason,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if reason.Valid {
		order.Reason = &reason.String
	}

	return &order, nil
}
