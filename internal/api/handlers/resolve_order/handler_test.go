package resolve_order

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	resolveOrder "github.com/m04kA/SMC-AppointmentService/internal/usecase/resolve_order"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fakeUseCase struct {
	got    *resolveOrder.Request
	result *resolveOrder.Result
}

func (f *fakeUseCase) Execute(_ context.Context, req *resolveOrder.Request) *resolveOrder.Result {
	f.got = req
	return f.result
}

func TestResolveAlwaysRedirects(t *testing.T) {
	for _, result := range []*resolveOrder.Result{
		{Redirect: "https://smc.test/users/2/orders/7", Applied: true},
		{Redirect: "https://smc.test/users/2"},
	} {
		uc := &fakeUseCase{result: result}
		r := mux.NewRouter()
		r.HandleFunc("/api/v1/orders/{uid}/{token}/{status}", NewHandler(uc, nopLogger{}).Handle)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders/Nw/abc-123/YXBwcm92ZWQ", nil))

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, result.Redirect, rec.Header().Get("Location"))
		require.NotNil(t, uc.got)
		assert.Equal(t, resolveOrder.Request{UID: "Nw", Token: "abc-123", Status: "YXBwcm92ZWQ"}, *uc.got)
	}
}
