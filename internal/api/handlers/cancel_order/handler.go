package cancel_order

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	cancelOrder "github.com/m04kA/SMC-AppointmentService/internal/usecase/cancel_order"
)

const (
	msgInvalidOrderID     = "некорректный ID заказа"
	msgInvalidUserID      = "некорректный ID пользователя"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgNotFound           = "заказ не найден"
	msgForbidden          = "доступ запрещен"
	msgReasonRequired     = "укажите причину отмены"
	msgReasonTooLong      = "причина отмены слишком длинная"
	msgCannotCancel       = "заказ не может быть отменен"
)

type Handler struct {
	useCase CancelOrderUseCase
	links   LinkBuilder
	logger  Logger
}

func NewHandler(useCase CancelOrderUseCase, links LinkBuilder, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		links:   links,
		logger:  logger,
	}
}

// Handle PUT /api/v1/users/{userId}/orders/{orderId}
// При успехе перенаправляет на страницу пользователя
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	pathUserID, err := strconv.ParseInt(vars["userId"], 10, 64)
	if err != nil {
		h.logger.Warn("PUT /users/{userId}/orders/{orderId} - Invalid user ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidUserID)
		return
	}

	orderID, err := strconv.ParseInt(vars["orderId"], 10, 64)
	if err != nil {
		h.logger.Warn("PUT /users/{userId}/orders/{orderId} - Invalid order ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidOrderID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PUT /users/{userId}/orders/{orderId} - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	// Отменять можно только из своего кабинета
	if pathUserID != userID {
		h.logger.Warn("PUT /users/{userId}/orders/{orderId} - User %d acts on behalf of %d", userID, pathUserID)
		handlers.RespondForbidden(w, msgForbidden)
		return
	}

	var req CancelOrderRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /users/{userId}/orders/{orderId} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	_, err = h.useCase.Execute(r.Context(), req.ToUseCaseRequest(userID, orderID))
	if err != nil {
		switch {
		case errors.Is(err, cancelOrder.ErrOrderNotFound):
			h.logger.Warn("PUT /users/{userId}/orders/{orderId} - Order not found: order_id=%d", orderID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, cancelOrder.ErrPermissionDenied):
			h.logger.Warn("PUT /users/{userId}/orders/{orderId} - Access denied: order_id=%d, user_id=%d", orderID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, cancelOrder.ErrReasonRequired):
			h.logger.Warn("PUT /users/{userId}/orders/{orderId} - Empty reason: order_id=%d", orderID)
			handlers.RespondBadRequest(w, msgReasonRequired)

		case errors.Is(err, cancelOrder.ErrReasonTooLong):
			h.logger.Warn("PUT /users/{userId}/orders/{orderId} - Reason too long: order_id=%d", orderID)
			handlers.RespondBadRequest(w, msgReasonTooLong)

		case errors.Is(err, cancelOrder.ErrInvalidTransition):
			h.logger.Warn("PUT /users/{userId}/orders/{orderId} - Cannot cancel: order_id=%d: %v", orderID, err)
			handlers.RespondBadRequest(w, msgCannotCancel)

		case errors.Is(err, cancelOrder.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidOrderID)

		default:
			h.logger.Error("PUT /users/{userId}/orders/{orderId} - Failed to cancel order: order_id=%d, error=%v",
				orderID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /users/{userId}/orders/{orderId} - Order cancelled successfully: order_id=%d, user_id=%d",
		orderID, userID)
	handlers.RespondRedirect(w, r, h.links.UserPage(userID))
}
