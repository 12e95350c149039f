package get_free_slots

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	getFreeSlots "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_free_slots"
)

const (
	msgInvalidPositionID   = "некорректный ID должности"
	msgInvalidSpecialistID = "некорректный ID специалиста"
	msgInvalidServiceID    = "некорректный ID услуги"
	msgInvalidDate         = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgPastDate            = "дата уже прошла"
	msgPositionNotFound    = "должность не найдена"
	msgSpecialistNotFound  = "специалист не найден в должности"
	msgServiceNotFound     = "услуга не найдена"
	msgInvalidSchedule     = "у должности некорректное расписание"
	msgServiceDuration     = "у услуги не задана длительность"
)

type Handler struct {
	useCase GetFreeSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetFreeSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/positions/{positionId}/specialists/{specialistId}/services/{serviceId}/schedule/{date}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	const route = "GET /positions/{id}/specialists/{id}/services/{id}/schedule/{date}"
	vars := mux.Vars(r)

	positionID, err := strconv.ParseInt(vars["positionId"], 10, 64)
	if err != nil {
		h.logger.Warn("%s - Invalid position ID: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidPositionID)
		return
	}

	specialistID, err := strconv.ParseInt(vars["specialistId"], 10, 64)
	if err != nil {
		h.logger.Warn("%s - Invalid specialist ID: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidSpecialistID)
		return
	}

	serviceID, err := strconv.ParseInt(vars["serviceId"], 10, 64)
	if err != nil {
		h.logger.Warn("%s - Invalid service ID: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidServiceID)
		return
	}

	useCaseReq, err := ToUseCaseRequest(positionID, specialistID, serviceID, vars["date"])
	if err != nil {
		h.logger.Warn("%s - Invalid date format: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, getFreeSlots.ErrPositionNotFound):
			h.logger.Warn("%s - Position not found: position_id=%d", route, positionID)
			handlers.RespondNotFound(w, msgPositionNotFound)

		case errors.Is(err, getFreeSlots.ErrSpecialistNotFound):
			h.logger.Warn("%s - Specialist not found: position_id=%d, specialist_id=%d", route, positionID, specialistID)
			handlers.RespondNotFound(w, msgSpecialistNotFound)

		case errors.Is(err, getFreeSlots.ErrServiceNotFound):
			h.logger.Warn("%s - Service not found: service_id=%d", route, serviceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, getFreeSlots.ErrInvalidServiceDuration):
			h.logger.Warn("%s - Invalid service duration: service_id=%d", route, serviceID)
			handlers.RespondBadRequest(w, msgServiceDuration)

		case errors.Is(err, getFreeSlots.ErrInvalidDate):
			handlers.RespondBadRequest(w, msgPastDate)

		case errors.Is(err, getFreeSlots.ErrInvalidSchedule):
			h.logger.Warn("%s - Invalid schedule: position_id=%d: %v", route, positionID, err)
			handlers.RespondBadRequest(w, msgInvalidSchedule)

		case errors.Is(err, getFreeSlots.ErrInvalidInput):
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("%s - Failed to get slots: position_id=%d, specialist_id=%d, error=%v",
				route, positionID, specialistID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("%s - Slots retrieved successfully: specialist_id=%d, slots_count=%d",
		route, specialistID, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
