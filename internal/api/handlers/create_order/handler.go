package create_order

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	createOrder "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_order"
)

const (
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgMissingUserID       = "отсутствует ID пользователя"
	msgInvalidTime         = "некорректный формат времени начала, ожидается RFC 3339"
	msgInvalidInput        = "не указаны специалист, услуга или время начала"
	msgSelfBooking         = "нельзя записаться к самому себе"
	msgStartInPast         = "время начала уже прошло"
	msgServiceNotFound     = "услуга не найдена"
	msgServiceNotOffered   = "специалист не оказывает эту услугу"
	msgServiceDuration     = "у услуги не задана длительность"
	msgSpecialistNotFound  = "специалист не найден"
	msgNotSpecialist       = "пользователь не является специалистом"
	msgInvalidSchedule     = "у должности некорректное расписание"
	msgOutsideWorkingHours = "время начала вне рабочих часов"
	msgSlotTaken           = "специалист занят в это время"
)

type Handler struct {
	useCase CreateOrderUseCase
	logger  Logger
}

func NewHandler(useCase CreateOrderUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/orders
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	customerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /orders - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateOrderRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /orders - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(customerID)
	if err != nil {
		h.logger.Warn("POST /orders - Failed to parse start time %q: %v", req.StartTime, err)
		handlers.RespondBadRequest(w, msgInvalidTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createOrder.ErrInvalidInput):
			h.logger.Warn("POST /orders - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, createOrder.ErrSelfBooking):
			h.logger.Warn("POST /orders - Self booking: user_id=%d", customerID)
			handlers.RespondBadRequest(w, msgSelfBooking)

		case errors.Is(err, createOrder.ErrStartInPast):
			h.logger.Warn("POST /orders - Start in past: user_id=%d, start=%s", customerID, req.StartTime)
			handlers.RespondBadRequest(w, msgStartInPast)

		case errors.Is(err, createOrder.ErrServiceNotFound):
			h.logger.Warn("POST /orders - Service not found: service_id=%d", req.ServiceID)
			handlers.RespondBadRequest(w, msgServiceNotFound)

		case errors.Is(err, createOrder.ErrInvalidServiceDuration):
			h.logger.Warn("POST /orders - Invalid service duration: service_id=%d", req.ServiceID)
			handlers.RespondBadRequest(w, msgServiceDuration)

		case errors.Is(err, createOrder.ErrServiceNotOffered):
			h.logger.Warn("POST /orders - Service not offered: specialist_id=%d, service_id=%d", req.SpecialistID, req.ServiceID)
			handlers.RespondBadRequest(w, msgServiceNotOffered)

		case errors.Is(err, createOrder.ErrSpecialistNotFound):
			h.logger.Warn("POST /orders - Specialist not found: specialist_id=%d", req.SpecialistID)
			handlers.RespondBadRequest(w, msgSpecialistNotFound)

		case errors.Is(err, createOrder.ErrNotSpecialist):
			h.logger.Warn("POST /orders - Not a specialist: user_id=%d", req.SpecialistID)
			handlers.RespondBadRequest(w, msgNotSpecialist)

		case errors.Is(err, createOrder.ErrInvalidSchedule):
			h.logger.Warn("POST /orders - Invalid position schedule: %v", err)
			handlers.RespondBadRequest(w, msgInvalidSchedule)

		case errors.Is(err, createOrder.ErrOutsideWorkingHours):
			h.logger.Warn("POST /orders - Outside working hours: specialist_id=%d, start=%s", req.SpecialistID, req.StartTime)
			handlers.RespondBadRequest(w, msgOutsideWorkingHours)

		case errors.Is(err, createOrder.ErrSlotTaken):
			h.logger.Warn("POST /orders - Slot taken: specialist_id=%d, start=%s", req.SpecialistID, req.StartTime)
			handlers.RespondError(w, http.StatusConflict, msgSlotTaken)

		default:
			h.logger.Error("POST /orders - Failed to create order: user_id=%d, error=%v", customerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /orders - Order created successfully: order_id=%d, customer_id=%d, specialist_id=%d",
		result.Order.ID, customerID, result.Order.SpecialistID)
	handlers.RespondJSON(w, http.StatusCreated, FromDomainOrder(result.Order))
}
