package get_user_orders

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/orders"
	"github.com/m04kA/SMC-AppointmentService/internal/service/orders/models"
)

const (
	msgInvalidUserID = "некорректный ID пользователя"
	msgInvalidLimit  = "некорректный limit"
	msgInvalidFilter = "некорректный фильтр: status или role"
	msgMissingUserID = "отсутствует ID пользователя"
	msgForbidden     = "доступ запрещен"
)

type Handler struct {
	service OrderService
	logger  Logger
}

func NewHandler(service OrderService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/users/{userId}/orders
// Query params: status, role (customer|specialist), upcoming (true), limit
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	userID, err := strconv.ParseInt(vars["userId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /users/{userId}/orders - Invalid user ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidUserID)
		return
	}

	authUserID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}
	if authUserID != userID {
		h.logger.Warn("GET /users/{userId}/orders - User %d reads orders of %d", authUserID, userID)
		handlers.RespondForbidden(w, msgForbidden)
		return
	}

	query := r.URL.Query()

	serviceReq := &models.GetUserOrdersRequest{
		UserID:   userID,
		Role:     query.Get("role"),
		Upcoming: query.Get("upcoming") == "true",
	}

	if status := query.Get("status"); status != "" {
		serviceReq.Status = &status
	}

	if limit := query.Get("limit"); limit != "" {
		serviceReq.Limit, err = strconv.ParseUint(limit, 10, 64)
		if err != nil {
			handlers.RespondBadRequest(w, msgInvalidLimit)
			return
		}
	}

	result, err := h.service.GetUserOrders(r.Context(), serviceReq)
	if err != nil {
		if errors.Is(err, orders.ErrInvalidInput) {
			h.logger.Warn("GET /users/{userId}/orders - Invalid filter: user_id=%d: %v", userID, err)
			handlers.RespondBadRequest(w, msgInvalidFilter)
			return
		}
		h.logger.Error("GET /users/{userId}/orders - Failed to get orders: user_id=%d, error=%v", userID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /users/{userId}/orders - Orders retrieved successfully: user_id=%d, count=%d",
		userID, len(result.Orders))
	handlers.RespondJSON(w, http.StatusOK, result.Orders)
}
