package models

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/orderstate"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid order status")

	// ErrInvalidRole возвращается при некорректной роли в фильтре
	ErrInvalidRole = errors.New("invalid order role")
)

// Роли пользователя в фильтре списка заказов
const (
	RoleAny        = ""
	RoleCustomer   = "customer"
	RoleSpecialist = "specialist"
)

// Request модели

// GetUserOrdersRequest запрос на получение заказов пользователя
type GetUserOrdersRequest struct {
	UserID   int64     `json:"userId"`
	Status   *string   `json:"status,omitempty"`
	Role     string    `json:"role,omitempty"` // customer, specialist или пусто - обе стороны
	Upcoming bool      `json:"upcoming,omitempty"`
	Limit    uint64    `json:"limit,omitempty"`
	Now      time.Time `json:"-"`
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetUserOrdersRequest) ToDomainFilter() (domain.OrdersFilter, error) {
	var filter domain.OrdersFilter

	switch r.Role {
	case RoleAny:
		// Одинаковые ID в обоих полях репозиторий трактует как "любая сторона"
		filter.CustomerID = &r.UserID
		filter.SpecialistID = &r.UserID
	case RoleCustomer:
		filter.CustomerID = &r.UserID
	case RoleSpecialist:
		filter.SpecialistID = &r.UserID
	default:
		return filter, ErrInvalidRole
	}

	if r.Status != nil {
		status, err := ToDomainOrderStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Statuses = []domain.OrderStatus{status}
	}

	if r.Upcoming {
		now := r.Now
		filter.StartFrom = &now
	}

	filter.Limit = r.Limit
	return filter, nil
}

// Response модели

// OrderResponse ответ с данными заказа
type OrderResponse struct {
	ID           int64     `json:"id"`
	CustomerID   int64     `json:"customerId"`
	SpecialistID int64     `json:"specialistId"`
	ServiceID    int64     `json:"serviceId"`
	StartTime    time.Time `json:"startTime"`
	EndTime      time.Time `json:"endTime"`
	Status       string    `json:"status"`
	Reason       *string   `json:"reason,omitempty"`

	// Переходы, доступные запросившему пользователю
	Actions []string `json:"actions"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// OrderListResponse ответ со списком заказов
type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
}

// Методы конвертации

// FromDomainOrder конвертирует domain модель в DTO с учётом того, кто смотрит
func FromDomainOrder(o *domain.Order, viewerID int64) *OrderResponse {
	if o == nil {
		return nil
	}

	actions := make([]string, 0)
	for _, to := range orderstate.Targets(o, orderstate.ActorFor(o, viewerID)) {
		actions = append(actions, string(to))
	}

	return &OrderResponse{
		ID:           o.ID,
		CustomerID:   o.CustomerID,
		SpecialistID: o.SpecialistID,
		ServiceID:    o.ServiceID,
		StartTime:    o.StartTime,
		EndTime:      o.EndTime,
		Status:       string(o.Status),
		Reason:       o.Reason,
		Actions:      actions,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}

// FromDomainOrderList конвертирует список domain моделей в DTO
func FromDomainOrderList(orders []*domain.Order, viewerID int64) *OrderListResponse {
	resp := &OrderListResponse{
		Orders: make([]OrderResponse, 0, len(orders)),
	}

	for _, order := range orders {
		if orderResp := FromDomainOrder(order, viewerID); orderResp != nil {
			resp.Orders = append(resp.Orders, *orderResp)
		}
	}

	return resp
}

// ToDomainOrderStatus конвертирует строку в domain.OrderStatus с валидацией
func ToDomainOrderStatus(status string) (domain.OrderStatus, error) {
	s, ok := domain.ParseOrderStatus(status)
	if !ok {
		return "", ErrInvalidStatus
	}
	return s, nil
}
