package tasks

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	orderRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/order"
)

type fakeOrders struct {
	mu      sync.Mutex
	orders  map[int64]*domain.Order
	getErr  error
	updates int
}

func newFakeOrders(orders ...*domain.Order) *fakeOrders {
	f := &fakeOrders{orders: make(map[int64]*domain.Order)}
	for _, o := range orders {
		f.orders[o.ID] = o
	}
	return f
}

func (f *fakeOrders) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getErr != nil {
		return nil, f.getErr
	}
	o, ok := f.orders[id]
	if !ok {
		return nil, orderRepo.ErrOrderNotFound
	}
	c := *o
	return &c, nil
}

func (f *fakeOrders) UpdateStatus(_ context.Context, id int64, from, to domain.OrderStatus, reason *string) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	o, ok := f.orders[id]
	if !ok {
		return nil, orderRepo.ErrOrderNotFound
	}
	if o.Status != from {
		return nil, orderRepo.ErrStatusConflict
	}
	o.Status = to
	if reason != nil {
		o.Reason = reason
	}
	o.UpdatedAt = o.UpdatedAt.Add(time.Second)
	f.updates++
	c := *o
	return &c, nil
}

func (f *fakeOrders) status(id int64) domain.OrderStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.orders[id].Status
}

type fakeNotifier struct {
	mu           sync.Mutex
	autoDeclined []int64
	reminders    []int64
}

func (n *fakeNotifier) AutoDeclined(_ context.Context, order *domain.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.autoDeclined = append(n.autoDeclined, order.ID)
}

func (n *fakeNotifier) Reminder(_ context.Context, order *domain.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reminders = append(n.reminders, order.ID)
}

type fakeMetrics struct {
	mu      sync.Mutex
	results map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{results: make(map[string]int)}
}

func (m *fakeMetrics) ObserveTask(kind, result string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[kind+"/"+result]++
}

func (m *fakeMetrics) ObserveTransition(string, string) {}

type fixedTime struct {
	t time.Time
}

func (f *fixedTime) Now() time.Time { return f.t }

var errStore = errors.New("store unavailable")
