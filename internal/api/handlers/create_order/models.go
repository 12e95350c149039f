package create_order

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	createOrder "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_order"
)

// CreateOrderRequest HTTP request model
type CreateOrderRequest struct {
	SpecialistID int64  `json:"specialistId"`
	ServiceID    int64  `json:"serviceId"`
	StartTime    string `json:"startTime"` // RFC 3339, "2025-10-15T10:00:00+03:00"
}

// OrderResponse HTTP response model
type OrderResponse struct {
	ID           int64   `json:"id"`
	CustomerID   int64   `json:"customerId"`
	SpecialistID int64   `json:"specialistId"`
	ServiceID    int64   `json:"serviceId"`
	StartTime    string  `json:"startTime"`
	EndTime      string  `json:"endTime"`
	Status       string  `json:"status"`
	Reason       *string `json:"reason,omitempty"`
	CreatedAt    string  `json:"createdAt"`
	UpdatedAt    string  `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
// Заказчик берётся из заголовка авторизации, а не из тела
func (r *CreateOrderRequest) ToUseCaseRequest(customerID int64) (*createOrder.Request, error) {
	startTime, err := time.Parse(time.RFC3339, r.StartTime)
	if err != nil {
		return nil, err
	}

	return &createOrder.Request{
		CustomerID:   customerID,
		SpecialistID: r.SpecialistID,
		ServiceID:    r.ServiceID,
		StartTime:    startTime,
	}, nil
}

// FromDomainOrder конвертирует заказ в HTTP response
func FromDomainOrder(o *domain.Order) *OrderResponse {
	return &OrderResponse{
		ID:           o.ID,
		CustomerID:   o.CustomerID,
		SpecialistID: o.SpecialistID,
		ServiceID:    o.ServiceID,
		StartTime:    o.StartTime.Format(time.RFC3339),
		EndTime:      o.EndTime.Format(time.RFC3339),
		Status:       string(o.Status),
		Reason:       o.Reason,
		CreatedAt:    o.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    o.UpdatedAt.Format(time.RFC3339),
	}
}
