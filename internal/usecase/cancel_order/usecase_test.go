package cancel_order

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	orderRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/order"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fakeOrders struct {
	orders   map[int64]*domain.Order
	conflict bool
}

func (f *fakeOrders) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, orderRepo.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrders) UpdateStatus(_ context.Context, id int64, from, to domain.OrderStatus, reason *string) (*domain.Order, error) {
	o := f.orders[id]
	if f.conflict || o.Status != from {
		return nil, orderRepo.ErrStatusConflict
	}
	o.Status = to
	o.Reason = reason
	cp := *o
	return &cp, nil
}

type fakeDispatcher struct{ cancelled []int64 }

func (f *fakeDispatcher) CancelPending(_ context.Context, orderID int64) {
	f.cancelled = append(f.cancelled, orderID)
}

type cancellation struct {
	orderID int64
	by      int64
}

type fakeNotifier struct{ calls []cancellation }

func (f *fakeNotifier) Cancelled(_ context.Context, order *domain.Order, by int64) {
	f.calls = append(f.calls, cancellation{order.ID, by})
}

type fakeMetrics struct{ n int }

func (f *fakeMetrics) ObserveTransition(string, string) { f.n++ }

func newUseCase(status domain.OrderStatus) (*UseCase, *fakeOrders, *fakeDispatcher, *fakeNotifier) {
	orders := &fakeOrders{orders: map[int64]*domain.Order{
		1: {ID: 1, CustomerID: 10, SpecialistID: 20, Status: status},
	}}
	dispatcher := &fakeDispatcher{}
	notifier := &fakeNotifier{}
	return NewUseCase(orders, dispatcher, notifier, &fakeMetrics{}, nopLogger{}), orders, dispatcher, notifier
}

func TestCancelByParties(t *testing.T) {
	tests := []struct {
		name   string
		status domain.OrderStatus
		userID int64
	}{
		{"customer cancels active", domain.OrderStatusActive, 10},
		{"customer cancels approved", domain.OrderStatusApproved, 10},
		{"specialist cancels approved", domain.OrderStatusApproved, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, orders, dispatcher, notifier := newUseCase(tt.status)

			resp, err := uc.Execute(context.Background(), &Request{UserID: tt.userID, OrderID: 1, Reason: "  plans changed "})
			require.NoError(t, err)
			assert.Equal(t, domain.OrderStatusCancelled, resp.Order.Status)
			require.NotNil(t, orders.orders[1].Reason)
			assert.Equal(t, "plans changed", *orders.orders[1].Reason)
			assert.Equal(t, []int64{1}, dispatcher.cancelled)
			assert.Equal(t, []cancellation{{1, tt.userID}}, notifier.calls)
		})
	}
}

func TestCancelRejections(t *testing.T) {
	tests := []struct {
		name    string
		status  domain.OrderStatus
		req     Request
		wantErr error
	}{
		{"completed order", domain.OrderStatusCompleted, Request{UserID: 10, OrderID: 1, Reason: "x"}, ErrInvalidTransition},
		{"declined order", domain.OrderStatusDeclined, Request{UserID: 20, OrderID: 1, Reason: "x"}, ErrInvalidTransition},
		{"already cancelled", domain.OrderStatusCancelled, Request{UserID: 10, OrderID: 1, Reason: "x"}, ErrInvalidTransition},
		{"empty reason", domain.OrderStatusActive, Request{UserID: 10, OrderID: 1, Reason: "   "}, ErrReasonRequired},
		{"reason too long", domain.OrderStatusActive, Request{UserID: 10, OrderID: 1, Reason: strings.Repeat("я", domain.MaxCancellationReasonLength+1)}, ErrReasonTooLong},
		{"stranger", domain.OrderStatusActive, Request{UserID: 99, OrderID: 1, Reason: "x"}, ErrPermissionDenied},
		{"stranger on terminal order", domain.OrderStatusCompleted, Request{UserID: 99, OrderID: 1, Reason: "x"}, ErrPermissionDenied},
		{"missing order", domain.OrderStatusActive, Request{UserID: 10, OrderID: 2, Reason: "x"}, ErrOrderNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, orders, dispatcher, notifier := newUseCase(tt.status)
			req := tt.req

			_, err := uc.Execute(context.Background(), &req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.status, orders.orders[1].Status)
			assert.Empty(t, dispatcher.cancelled)
			assert.Empty(t, notifier.calls)
		})
	}
}

func TestCancelLosesRace(t *testing.T) {
	uc, orders, dispatcher, _ := newUseCase(domain.OrderStatusActive)
	orders.conflict = true

	_, err := uc.Execute(context.Background(), &Request{UserID: 10, OrderID: 1, Reason: "x"})
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Empty(t, dispatcher.cancelled)
}
