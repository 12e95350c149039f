package create_order

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	createOrder "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_order"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fakeUseCase struct {
	got *createOrder.Request
	err error
}

func (f *fakeUseCase) Execute(_ context.Context, req *createOrder.Request) (*createOrder.Response, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &createOrder.Response{Order: &domain.Order{
		ID:           1,
		CustomerID:   req.CustomerID,
		SpecialistID: req.SpecialistID,
		ServiceID:    req.ServiceID,
		StartTime:    req.StartTime,
		EndTime:      req.StartTime.Add(time.Hour),
		Status:       domain.OrderStatusActive,
	}}, nil
}

func serve(h *Handler, userID string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	if userID != "" {
		req.Header.Set(middleware.UserIDHeader, userID)
	}
	rec := httptest.NewRecorder()
	middleware.Auth(http.HandlerFunc(h.Handle)).ServeHTTP(rec, req)
	return rec
}

func TestCreateOrderCreated(t *testing.T) {
	uc := &fakeUseCase{}
	h := NewHandler(uc, nopLogger{})

	rec := serve(h, "10", `{"specialistId":20,"serviceId":3,"startTime":"2024-01-01T14:00:00Z"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "active", resp.Status)
	assert.Equal(t, int64(10), resp.CustomerID)
	assert.Equal(t, "2024-01-01T15:00:00Z", resp.EndTime)
	assert.Equal(t, int64(10), uc.got.CustomerID)
}

func TestCreateOrderErrors(t *testing.T) {
	tests := []struct {
		name   string
		userID string
		body   string
		err    error
		status int
	}{
		{"unauthenticated", "", `{}`, nil, http.StatusUnauthorized},
		{"bad json", "10", `{`, nil, http.StatusBadRequest},
		{"unknown field", "10", `{"customerId":5}`, nil, http.StatusBadRequest},
		{"bad time", "10", `{"specialistId":20,"serviceId":3,"startTime":"14:00"}`, nil, http.StatusBadRequest},
		{"self booking", "10", `{"specialistId":10,"serviceId":3,"startTime":"2024-01-01T14:00:00Z"}`, createOrder.ErrSelfBooking, http.StatusBadRequest},
		{"zero duration", "10", `{"specialistId":20,"serviceId":3,"startTime":"2024-01-01T14:00:00Z"}`, createOrder.ErrInvalidServiceDuration, http.StatusBadRequest},
		{"outside window", "10", `{"specialistId":20,"serviceId":3,"startTime":"2024-01-01T07:00:00Z"}`, createOrder.ErrOutsideWorkingHours, http.StatusBadRequest},
		{"slot taken", "10", `{"specialistId":20,"serviceId":3,"startTime":"2024-01-01T14:00:00Z"}`, createOrder.ErrSlotTaken, http.StatusConflict},
		{"internal", "10", `{"specialistId":20,"serviceId":3,"startTime":"2024-01-01T14:00:00Z"}`, createOrder.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&fakeUseCase{err: tt.err}, nopLogger{})
			rec := serve(h, tt.userID, tt.body)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
