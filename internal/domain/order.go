package domain

import "time"

// OrderStatus represents the lifecycle status of an order
type OrderStatus string

const (
	OrderStatusActive    OrderStatus = "active"
	OrderStatusApproved  OrderStatus = "approved"
	OrderStatusDeclined  OrderStatus = "declined"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusCompleted OrderStatus = "completed"
)

// Order represents an appointment requested by a customer from a specialist
type Order struct {
	ID           int64
	CustomerID   int64
	SpecialistID int64
	ServiceID    int64
	StartTime    time.Time
	EndTime      time.Time // StartTime + длительность услуги
	Status       OrderStatus
	Reason       *string // причина отмены

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the order waits for a specialist decision
func (o *Order) IsActive() bool {
	return o.Status == OrderStatusActive
}

// IsApproved returns true if the order was approved by the specialist
func (o *Order) IsApproved() bool {
	return o.Status == OrderStatusApproved
}

// IsTerminal returns true if the order can no longer change
func (o *Order) IsTerminal() bool {
	return IsTerminalStatus(o.Status)
}

// IsParty returns true if the user is the customer or the specialist of the order
func (o *Order) IsParty(userID int64) bool {
	return o.CustomerID == userID || o.SpecialistID == userID
}

// Overlaps returns true if [start, end) intersects the order's time range
// Touching ranges (end == start) do not overlap
func (o *Order) Overlaps(start, end time.Time) bool {
	return o.StartTime.Before(end) && o.EndTime.After(start)
}

// IsTerminalStatus returns true for statuses that admit no further transitions
func IsTerminalStatus(s OrderStatus) bool {
	return s == OrderStatusDeclined || s == OrderStatusCancelled || s == OrderStatusCompleted
}

// OrdersFilter фильтр для выборки заказов
type OrdersFilter struct {
	CustomerID   *int64
	SpecialistID *int64
	Statuses     []OrderStatus // пусто - все статусы
	StartFrom    *time.Time    // start_time >= StartFrom
	StartTo      *time.Time    // start_time < StartTo
	EndBefore    *time.Time    // end_time <= EndBefore
	EndAfter     *time.Time    // end_time > EndAfter
	Limit        uint64        // 0 - без ограничения
}
