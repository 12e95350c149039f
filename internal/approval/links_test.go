package approval

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/config"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

func TestParamsRoundTrip(t *testing.T) {
	id, err := DecodeOrderID(EncodeParam("42"))
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	status, err := DecodeStatus(EncodeParam("approved"))
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusApproved, status)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := DecodeOrderID("***")
	assert.ErrorIs(t, err, ErrInvalidParam)

	_, err = DecodeOrderID(EncodeParam("-1"))
	assert.ErrorIs(t, err, ErrInvalidParam)

	_, err = DecodeStatus(EncodeParam("paid"))
	assert.ErrorIs(t, err, ErrInvalidParam)
}

func TestLinks(t *testing.T) {
	links := NewLinks("https://smc.example/api/v1/", "")
	order := &domain.Order{ID: 7, SpecialistID: 3}

	assert.Equal(t, "https://smc.example/api/v1/orders/Nw/tok/YXBwcm92ZWQ", links.Resolve(order, "tok", domain.OrderStatusApproved))
	assert.Equal(t, "https://smc.example/api/v1/users/3/orders/7", links.OrderDetail(3, 7))
	assert.Equal(t, "https://smc.example/api/v1/users/3", links.UserPage(3))
	assert.Equal(t, "https://smc.example/api/v1/", links.Fallback())
}

// router повторяет регистрацию маршрутов из cmd/main.go
func router(hit *string) *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/orders/{uid}/{token}/{status}", func(w http.ResponseWriter, _ *http.Request) {
		*hit = "resolve"
	}).Methods(http.MethodGet)
	protected := api.PathPrefix("").Subrouter()
	protected.HandleFunc("/users/{userId}/orders/{orderId}", func(w http.ResponseWriter, _ *http.Request) {
		*hit = "order"
	}).Methods(http.MethodGet)
	return r
}

func TestLinksFromShippedConfigAreRouted(t *testing.T) {
	t.Setenv(config.EnvTokenSecret, "")

	cfg, err := config.Load(filepath.Join("..", "..", "config.toml"))
	require.NoError(t, err)

	links := NewLinks(cfg.Links.BaseURL, cfg.Links.FallbackURL)
	order := &domain.Order{ID: 7, SpecialistID: 3}

	tests := []struct {
		name string
		link string
		want string
	}{
		{"approve", links.Resolve(order, "abc-123", domain.OrderStatusApproved), "resolve"},
		{"decline", links.Resolve(order, "abc-123", domain.OrderStatusDeclined), "resolve"},
		{"order detail", links.OrderDetail(3, 7), "order"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := url.Parse(tt.link)
			require.NoError(t, err)

			var hit string
			rec := httptest.NewRecorder()
			router(&hit).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, u.Path, nil))

			assert.Equal(t, http.StatusOK, rec.Code, tt.link)
			assert.Equal(t, tt.want, hit, tt.link)
		})
	}
}
