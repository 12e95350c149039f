package create_order

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	businessClient "github.com/m04kA/SMC-AppointmentService/internal/integrations/businessservice"
	userClient "github.com/m04kA/SMC-AppointmentService/internal/integrations/userservice"
)

// 2024-01-01 - понедельник
var now = time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type inlineTx struct{}

func (inlineTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memOrders struct {
	orders []*domain.Order
	nextID int64
}

func (m *memOrders) Create(_ context.Context, order *domain.Order) (*domain.Order, error) {
	m.nextID++
	created := *order
	created.ID = m.nextID
	created.CreatedAt = now
	created.UpdatedAt = now
	m.orders = append(m.orders, &created)
	return &created, nil
}

func (m *memOrders) Find(_ context.Context, f domain.OrdersFilter) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, o := range m.orders {
		if f.SpecialistID != nil && o.SpecialistID != *f.SpecialistID {
			continue
		}
		if len(f.Statuses) > 0 && !containsStatus(f.Statuses, o.Status) {
			continue
		}
		if f.StartTo != nil && !o.StartTime.Before(*f.StartTo) {
			continue
		}
		if f.EndAfter != nil && !o.EndTime.After(*f.EndAfter) {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func containsStatus(list []domain.OrderStatus, s domain.OrderStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

type fakeCatalog struct {
	services  map[int64]*domain.Service
	positions map[int64]*domain.Position
}

func (f *fakeCatalog) GetService(_ context.Context, id int64) (*domain.Service, error) {
	s, ok := f.services[id]
	if !ok {
		return nil, businessClient.ErrServiceNotFound
	}
	return s, nil
}

func (f *fakeCatalog) GetPosition(_ context.Context, id int64) (*domain.Position, error) {
	p, ok := f.positions[id]
	if !ok {
		return nil, businessClient.ErrPositionNotFound
	}
	return p, nil
}

type fakeUsers map[int64]*domain.User

func (f fakeUsers) GetUser(_ context.Context, id int64) (*domain.User, error) {
	u, ok := f[id]
	if !ok {
		return nil, userClient.ErrUserNotFound
	}
	return u, nil
}

type scheduled struct {
	kind    domain.TaskKind
	orderID int64
	fireAt  time.Time
}

type fakeDispatcher struct{ tasks []scheduled }

func (f *fakeDispatcher) ScheduleAutoDecline(_ context.Context, o *domain.Order, at time.Time) error {
	f.tasks = append(f.tasks, scheduled{domain.TaskKindAutoDecline, o.ID, at})
	return nil
}

func (f *fakeDispatcher) ScheduleReminder(_ context.Context, o *domain.Order, at time.Time) error {
	f.tasks = append(f.tasks, scheduled{domain.TaskKindReminder, o.ID, at})
	return nil
}

type fakeTokens struct{}

func (fakeTokens) MakeToken(*domain.Order) string { return "tok" }

type fakeLinks struct{}

func (fakeLinks) Resolve(_ *domain.Order, token string, status domain.OrderStatus) string {
	return "/resolve/" + token + "/" + string(status)
}

type fakeNotifier struct {
	calls   int
	approve string
	decline string
}

func (f *fakeNotifier) ApprovalRequested(_ context.Context, _ *domain.Order, _ string, approveURL, declineURL string) {
	f.calls++
	f.approve = approveURL
	f.decline = declineURL
}

type fixture struct {
	uc         *UseCase
	orders     *memOrders
	dispatcher *fakeDispatcher
	notifier   *fakeNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	week := map[string][]string{}
	for _, d := range []string{"Mon", "Tue", "Wed", "Thu", "Fri"} {
		week[d] = []string{"09:00", "18:00"}
	}
	week["Sat"] = []string{}
	week["Sun"] = []string{}

	catalog := &fakeCatalog{
		services: map[int64]*domain.Service{
			1: {ID: 1, PositionID: 5, Name: "Haircut", DurationMinutes: 60},
		},
		positions: map[int64]*domain.Position{
			5: {ID: 5, WorkingTime: week, SpecialistIDs: []int64{20}},
		},
	}
	users := fakeUsers{
		10: {ID: 10, Roles: []domain.Role{domain.RoleCustomer}},
		20: {ID: 20, Roles: []domain.Role{domain.RoleSpecialist}},
		30: {ID: 30, Roles: []domain.Role{domain.RoleCustomer}},
	}

	f := &fixture{
		orders:     &memOrders{},
		dispatcher: &fakeDispatcher{},
		notifier:   &fakeNotifier{},
	}
	f.uc = NewUseCase(f.orders, catalog, users, f.dispatcher, fakeTokens{}, fakeLinks{}, f.notifier, inlineTx{},
		Config{AutoDeclineDelay: 3 * time.Hour, ReminderLeadTime: 2 * time.Hour, Location: time.UTC},
		nopLogger{},
	).WithTimeProvider(fixedTime{now})
	return f
}

func at(hour, minute int) time.Time {
	return time.Date(2024, 1, 1, hour, minute, 0, 0, time.UTC)
}

func TestCreateOrder(t *testing.T) {
	f := newFixture(t)

	resp, err := f.uc.Execute(context.Background(), &Request{CustomerID: 10, SpecialistID: 20, ServiceID: 1, StartTime: at(14, 0)})
	require.NoError(t, err)

	order := resp.Order
	assert.Equal(t, domain.OrderStatusActive, order.Status)
	assert.Equal(t, at(15, 0), order.EndTime)
	assert.Nil(t, order.Reason)

	require.Len(t, f.dispatcher.tasks, 2)
	assert.Equal(t, scheduled{domain.TaskKindAutoDecline, order.ID, at(11, 0)}, f.dispatcher.tasks[0])
	assert.Equal(t, scheduled{domain.TaskKindReminder, order.ID, at(12, 0)}, f.dispatcher.tasks[1])

	assert.Equal(t, 1, f.notifier.calls)
	assert.Equal(t, "/resolve/tok/approved", f.notifier.approve)
	assert.Equal(t, "/resolve/tok/declined", f.notifier.decline)
}

func TestCreateOrderSoonStartsClampAutoDecline(t *testing.T) {
	f := newFixture(t)
	f.uc.WithTimeProvider(fixedTime{at(9, 0)})

	resp, err := f.uc.Execute(context.Background(), &Request{CustomerID: 10, SpecialistID: 20, ServiceID: 1, StartTime: at(10, 0)})
	require.NoError(t, err)

	require.Len(t, f.dispatcher.tasks, 1, "reminder moment is already in the past")
	assert.Equal(t, scheduled{domain.TaskKindAutoDecline, resp.Order.ID, at(10, 0)}, f.dispatcher.tasks[0])
}

func TestCreateOrderRejections(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{"self booking", Request{CustomerID: 20, SpecialistID: 20, ServiceID: 1, StartTime: at(14, 0)}, ErrSelfBooking},
		{"missing customer", Request{SpecialistID: 20, ServiceID: 1, StartTime: at(14, 0)}, ErrInvalidInput},
		{"start in past", Request{CustomerID: 10, SpecialistID: 20, ServiceID: 1, StartTime: at(7, 0)}, ErrStartInPast},
		{"start equals now", Request{CustomerID: 10, SpecialistID: 20, ServiceID: 1, StartTime: now}, ErrStartInPast},
		{"unknown service", Request{CustomerID: 10, SpecialistID: 20, ServiceID: 2, StartTime: at(14, 0)}, ErrServiceNotFound},
		{"specialist does not hold position", Request{CustomerID: 10, SpecialistID: 30, ServiceID: 1, StartTime: at(14, 0)}, ErrServiceNotOffered},
		{"before opening", Request{CustomerID: 10, SpecialistID: 20, ServiceID: 1, StartTime: at(8, 30)}, ErrOutsideWorkingHours},
		{"at closing", Request{CustomerID: 10, SpecialistID: 20, ServiceID: 1, StartTime: at(18, 0)}, ErrOutsideWorkingHours},
		{"day off", Request{CustomerID: 10, SpecialistID: 20, ServiceID: 1, StartTime: time.Date(2024, 1, 6, 12, 0, 0, 0, time.UTC)}, ErrOutsideWorkingHours},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			req := tt.req

			_, err := f.uc.Execute(context.Background(), &req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.orders.orders)
			assert.Empty(t, f.dispatcher.tasks)
			assert.Zero(t, f.notifier.calls)
		})
	}
}

func TestCreateOrderRejectsZeroDuration(t *testing.T) {
	for _, minutes := range []int{0, -30} {
		f := newFixture(t)
		f.uc.catalog.(*fakeCatalog).services[1].DurationMinutes = minutes

		_, err := f.uc.Execute(context.Background(), &Request{CustomerID: 10, SpecialistID: 20, ServiceID: 1, StartTime: at(14, 0)})
		assert.ErrorIs(t, err, ErrInvalidServiceDuration, "duration %d", minutes)
		assert.Empty(t, f.orders.orders)
		assert.Empty(t, f.dispatcher.tasks)
	}
}

func TestCreateOrderNotSpecialist(t *testing.T) {
	f := newFixture(t)
	catalog := f.uc.catalog.(*fakeCatalog)
	catalog.positions[5].SpecialistIDs = append(catalog.positions[5].SpecialistIDs, 30)

	_, err := f.uc.Execute(context.Background(), &Request{CustomerID: 10, SpecialistID: 30, ServiceID: 1, StartTime: at(14, 0)})
	assert.ErrorIs(t, err, ErrNotSpecialist)
}

func TestCreateOrderSlotTaken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Execute(ctx, &Request{CustomerID: 10, SpecialistID: 20, ServiceID: 1, StartTime: at(14, 0)})
	require.NoError(t, err)

	_, err = f.uc.Execute(ctx, &Request{CustomerID: 30, SpecialistID: 20, ServiceID: 1, StartTime: at(14, 30)})
	assert.ErrorIs(t, err, ErrSlotTaken)

	// соседний слот встык не пересекается
	_, err = f.uc.Execute(ctx, &Request{CustomerID: 30, SpecialistID: 20, ServiceID: 1, StartTime: at(15, 0)})
	require.NoError(t, err)
	assert.Len(t, f.orders.orders, 2)
}

func TestCreateOrderFreesSlotAfterDecline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.uc.Execute(ctx, &Request{CustomerID: 10, SpecialistID: 20, ServiceID: 1, StartTime: at(14, 0)})
	require.NoError(t, err)
	f.orders.orders[0].Status = domain.OrderStatusDeclined
	assert.Equal(t, int64(1), resp.Order.ID)

	_, err = f.uc.Execute(ctx, &Request{CustomerID: 30, SpecialistID: 20, ServiceID: 1, StartTime: at(14, 0)})
	require.NoError(t, err)
}
