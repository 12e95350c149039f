package get_order

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/orders"
	"github.com/m04kA/SMC-AppointmentService/internal/service/orders/models"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fakeService struct {
	err    error
	called bool
}

func (f *fakeService) GetByID(_ context.Context, id int64, _ int64) (*models.OrderResponse, error) {
	f.called = true
	if f.err != nil {
		return nil, f.err
	}
	return &models.OrderResponse{ID: id, Status: "approved", Actions: []string{"cancelled"}}, nil
}

func serve(svc *fakeService, path string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.Use(middleware.Auth)
	r.HandleFunc("/api/v1/users/{userId}/orders/{orderId}", NewHandler(svc, nopLogger{}).Handle)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set(middleware.UserIDHeader, "10")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestGetOrder(t *testing.T) {
	rec := serve(&fakeService{}, "/api/v1/users/10/orders/7")
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, []string{"cancelled"}, got.Actions)
}

func TestGetOrderErrors(t *testing.T) {
	tests := []struct {
		name string
		path string
		err  error
		want int
	}{
		{"bad order id", "/api/v1/users/10/orders/abc", nil, http.StatusBadRequest},
		{"bad user id", "/api/v1/users/me/orders/7", nil, http.StatusBadRequest},
		{"foreign cabinet", "/api/v1/users/11/orders/7", nil, http.StatusForbidden},
		{"not found", "/api/v1/users/10/orders/7", orders.ErrOrderNotFound, http.StatusNotFound},
		{"not a party", "/api/v1/users/10/orders/7", orders.ErrAccessDenied, http.StatusForbidden},
		{"internal", "/api/v1/users/10/orders/7", orders.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, serve(&fakeService{err: tt.err}, tt.path).Code)
		})
	}
}

func TestGetOrderForeignCabinetSkipsLookup(t *testing.T) {
	svc := &fakeService{}
	serve(svc, "/api/v1/users/11/orders/7")
	assert.False(t, svc.called)
}
