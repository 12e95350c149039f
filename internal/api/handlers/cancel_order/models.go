package cancel_order

import cancelOrder "github.com/m04kA/SMC-AppointmentService/internal/usecase/cancel_order"

// CancelOrderRequest HTTP request model
type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CancelOrderRequest) ToUseCaseRequest(userID, orderID int64) *cancelOrder.Request {
	return &cancelOrder.Request{
		UserID:  userID,
		OrderID: orderID,
		Reason:  r.Reason,
	}
}
