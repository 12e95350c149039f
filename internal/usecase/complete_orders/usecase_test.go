package complete_orders

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	orderRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/order"
)

var now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fakeOrders struct {
	orders []*domain.Order
	// cancelBeforeUpdate эмулирует параллельную отмену между выборкой и обновлением
	cancelBeforeUpdate int64
}

func (f *fakeOrders) Find(_ context.Context, filter domain.OrdersFilter) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, o := range f.orders {
		if o.Status != domain.OrderStatusApproved || o.EndTime.After(*filter.EndBefore) {
			continue
		}
		cp := *o
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeOrders) UpdateStatus(_ context.Context, id int64, from, to domain.OrderStatus, _ *string) (*domain.Order, error) {
	for _, o := range f.orders {
		if o.ID != id {
			continue
		}
		if id == f.cancelBeforeUpdate {
			o.Status = domain.OrderStatusCancelled
		}
		if o.Status != from {
			return nil, orderRepo.ErrStatusConflict
		}
		o.Status = to
		return o, nil
	}
	return nil, orderRepo.ErrOrderNotFound
}

type fakeMetrics struct{ transitions []string }

func (f *fakeMetrics) ObserveTransition(from, to string) {
	f.transitions = append(f.transitions, from+"->"+to)
}

func TestCompleteOrders(t *testing.T) {
	orders := &fakeOrders{
		orders: []*domain.Order{
			{ID: 1, Status: domain.OrderStatusApproved, EndTime: now.Add(-time.Hour)},
			{ID: 2, Status: domain.OrderStatusApproved, EndTime: now.Add(time.Hour)},
			{ID: 3, Status: domain.OrderStatusActive, EndTime: now.Add(-time.Hour)},
			{ID: 4, Status: domain.OrderStatusApproved, EndTime: now},
			{ID: 5, Status: domain.OrderStatusApproved, EndTime: now.Add(-time.Minute)},
		},
		cancelBeforeUpdate: 5,
	}
	metrics := &fakeMetrics{}
	uc := NewUseCase(orders, metrics, 10, nopLogger{}).WithTimeProvider(fixedTime{now})

	n, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Equal(t, domain.OrderStatusCompleted, orders.orders[0].Status)
	assert.Equal(t, domain.OrderStatusApproved, orders.orders[1].Status)
	assert.Equal(t, domain.OrderStatusActive, orders.orders[2].Status, "unapproved orders are never completed")
	assert.Equal(t, domain.OrderStatusCompleted, orders.orders[3].Status)
	assert.Equal(t, domain.OrderStatusCancelled, orders.orders[4].Status)
	assert.Equal(t, []string{"approved->completed", "approved->completed"}, metrics.transitions)

	n, err = uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRunStopsOnCancel(t *testing.T) {
	uc := NewUseCase(&fakeOrders{}, &fakeMetrics{}, 0, nopLogger{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- uc.Run(ctx, time.Millisecond) }()

	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("sweep did not stop")
	}
}
