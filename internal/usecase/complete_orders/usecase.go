package complete_orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	orderRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/order"
	"github.com/m04kA/SMC-AppointmentService/internal/orderstate"
)

// ErrInternal возвращается при ошибке выборки заказов
var ErrInternal = errors.New("complete_orders: internal error")

// DefaultBatchSize сколько заказов закрывается за один проход
const DefaultBatchSize = 100

// UseCase периодически переводит прошедшие подтверждённые заказы в completed
type UseCase struct {
	orderRepo    OrderRepository
	metrics      Metrics
	timeProvider TimeProvider
	batchSize    uint64
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(orderRepo OrderRepository, metrics Metrics, batchSize int, logger Logger) *UseCase {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &UseCase{
		orderRepo:    orderRepo,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		batchSize:    uint64(batchSize),
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени (для тестов)
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute закрывает одну пачку заказов и возвращает число закрытых
// Заказ, изменённый параллельно (например, отменённый), пропускается
func (uc *UseCase) Execute(ctx context.Context) (int, error) {
	now := uc.timeProvider.Now()

	orders, err := uc.orderRepo.Find(ctx, domain.OrdersFilter{
		Statuses:  []domain.OrderStatus{domain.OrderStatusApproved},
		EndBefore: &now,
		Limit:     uc.batchSize,
	})
	if err != nil {
		uc.logger.Error("CompleteOrders: failed to get orders: %v", err)
		return 0, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	completed := 0
	for _, order := range orders {
		if err := orderstate.CanTransition(order, domain.OrderStatusCompleted, orderstate.ActorSystem, ""); err != nil {
			continue
		}

		if _, err := uc.orderRepo.UpdateStatus(ctx, order.ID, order.Status, domain.OrderStatusCompleted, nil); err != nil {
			if errors.Is(err, orderRepo.ErrStatusConflict) || errors.Is(err, orderRepo.ErrOrderNotFound) {
				uc.logger.Warn("CompleteOrders: order id=%d changed concurrently, skipped", order.ID)
				continue
			}
			uc.logger.Error("CompleteOrders: failed to complete order id=%d: %v", order.ID, err)
			continue
		}

		uc.metrics.ObserveTransition(string(order.Status), string(domain.OrderStatusCompleted))
		completed++
	}

	if completed > 0 {
		uc.logger.Info("CompleteOrders: %d orders completed", completed)
	}
	return completed, nil
}

// Run выполняет Execute каждые interval до отмены ctx
func (uc *UseCase) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			// ошибка уже залогирована, следующий тик повторит попытку
			_, _ = uc.Execute(ctx)
		}
	}
}
