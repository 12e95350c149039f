package resolve_order

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	resolveOrder "github.com/m04kA/SMC-AppointmentService/internal/usecase/resolve_order"
)

type Handler struct {
	useCase ResolveOrderUseCase
	logger  Logger
}

func NewHandler(useCase ResolveOrderUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/orders/{uid}/{token}/{status}
// Ссылка открывается из письма, поэтому ответ всегда 302
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	result := h.useCase.Execute(r.Context(), &resolveOrder.Request{
		UID:    vars["uid"],
		Token:  vars["token"],
		Status: vars["status"],
	})

	if result.Applied {
		h.logger.Info("GET /orders/{uid}/{token}/{status} - Decision applied, redirect to %s", result.Redirect)
	} else {
		h.logger.Warn("GET /orders/{uid}/{token}/{status} - Link rejected, redirect to %s", result.Redirect)
	}
	handlers.RespondRedirect(w, r, result.Redirect)
}
