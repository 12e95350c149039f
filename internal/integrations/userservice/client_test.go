package userservice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

func TestGetUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/internal/users/5":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":5,"email":"spec@example.com","first_name":"Anna","last_name":"Ivanova","groups":["specialist","staff"]}`))
		case "/internal/users/6":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/", time.Second, logger.Nop())

	user, err := client.GetUser(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "spec@example.com", user.Email)
	assert.Equal(t, "Anna Ivanova", user.FullName)
	assert.Equal(t, []domain.Role{domain.RoleSpecialist}, user.Roles)
	assert.True(t, user.HasRole(domain.RoleSpecialist))

	_, err = client.GetUser(context.Background(), 6)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = client.GetUser(context.Background(), 7)
	assert.ErrorIs(t, err, ErrInvalidResponse)
}
