package get_free_slots

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	getFreeSlots "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_free_slots"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fakeUseCase struct {
	got *getFreeSlots.Request
	err error
}

func (f *fakeUseCase) Execute(_ context.Context, req *getFreeSlots.Request) (*getFreeSlots.Response, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	return &getFreeSlots.Response{
		Date:            req.Date,
		PositionID:      req.PositionID,
		SpecialistID:    req.SpecialistID,
		ServiceID:       req.ServiceID,
		DurationMinutes: 45,
		Slots:           []getFreeSlots.Slot{{StartTime: "09:00", EndTime: types.TimeString("09:45"), Start: start}},
	}, nil
}

const route = "/api/v1/positions/{positionId}/specialists/{specialistId}/services/{serviceId}/schedule/{date}"

func serve(uc *fakeUseCase, path string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc(route, NewHandler(uc, nopLogger{}).Handle)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestFreeSlots(t *testing.T) {
	uc := &fakeUseCase{}
	rec := serve(uc, "/api/v1/positions/5/specialists/20/services/3/schedule/2024-01-01")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp FreeSlotsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "2024-01-01", resp.Date)
	require.Len(t, resp.Slots, 1)
	assert.Equal(t, FreeSlot{StartTime: "09:00", EndTime: "09:45", Start: "2024-01-01T09:00:00Z"}, resp.Slots[0])
	assert.Equal(t, int64(20), uc.got.SpecialistID)
}

func TestFreeSlotsErrors(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, serve(&fakeUseCase{}, "/api/v1/positions/5/specialists/20/services/3/schedule/01.01.2024").Code)
	assert.Equal(t, http.StatusBadRequest, serve(&fakeUseCase{}, "/api/v1/positions/x/specialists/20/services/3/schedule/2024-01-01").Code)
	assert.Equal(t, http.StatusNotFound, serve(&fakeUseCase{err: getFreeSlots.ErrPositionNotFound}, "/api/v1/positions/5/specialists/20/services/3/schedule/2024-01-01").Code)
	assert.Equal(t, http.StatusBadRequest, serve(&fakeUseCase{err: getFreeSlots.ErrInvalidServiceDuration}, "/api/v1/positions/5/specialists/20/services/3/schedule/2024-01-01").Code)
	assert.Equal(t, http.StatusBadRequest, serve(&fakeUseCase{err: getFreeSlots.ErrInvalidDate}, "/api/v1/positions/5/specialists/20/services/3/schedule/2023-01-01").Code)
}
