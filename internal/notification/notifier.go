package notification

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

const startLayout = "2006-01-02 15:04"

// LinkBuilder ссылки, которые попадают в письма
type LinkBuilder interface {
	OrderDetail(userID, orderID int64) string
}

// OrderNotifier рассылает письма об изменениях заказа
// Все методы работают по принципу fire-and-forget: ошибки только логируются
type OrderNotifier struct {
	sender   Sender
	links    LinkBuilder
	location *time.Location
	logger   Logger
}

// NewOrderNotifier создает рассыльщик уведомлений о заказах
// location - часовой пояс, в котором время записи показывается в письмах
func NewOrderNotifier(sender Sender, links LinkBuilder, location *time.Location, logger Logger) *OrderNotifier {
	if location == nil {
		location = time.UTC
	}
	return &OrderNotifier{
		sender:   sender,
		links:    links,
		location: location,
		logger:   logger,
	}
}

// ApprovalRequested отправляет специалисту ссылки для подтверждения и отклонения заказа
func (n *OrderNotifier) ApprovalRequested(ctx context.Context, order *domain.Order, serviceName, approveURL, declineURL string) {
	data := n.baseData(order)
	data.ServiceName = serviceName
	data.ApproveURL = approveURL
	data.DeclineURL = declineURL

	n.send(ctx, order.SpecialistID, order.CustomerID, TemplateApprovalRequest, data)
}

// Decided сообщает заказчику о решении специалиста
func (n *OrderNotifier) Decided(ctx context.Context, order *domain.Order) {
	data := n.baseData(order)
	data.DetailURL = n.links.OrderDetail(order.CustomerID, order.ID)

	n.send(ctx, order.CustomerID, 0, TemplateStatusChanged, data)
}

// Cancelled сообщает второй стороне об отмене заказа
func (n *OrderNotifier) Cancelled(ctx context.Context, order *domain.Order, cancelledBy int64) {
	recipient := order.CustomerID
	if cancelledBy == order.CustomerID {
		recipient = order.SpecialistID
	}

	data := n.baseData(order)
	if order.Reason != nil {
		data.Reason = *order.Reason
	}

	n.send(ctx, recipient, cancelledBy, TemplateCancelled, data)
}

// AutoDeclined сообщает обеим сторонам, что заказ отклонён по таймауту
func (n *OrderNotifier) AutoDeclined(ctx context.Context, order *domain.Order) {
	data := n.baseData(order)
	n.send(ctx, order.CustomerID, 0, TemplateAutoDeclined, data)
	n.send(ctx, order.SpecialistID, 0, TemplateAutoDeclined, data)
}

// Reminder напоминает заказчику о записи
func (n *OrderNotifier) Reminder(ctx context.Context, order *domain.Order) {
	data := n.baseData(order)
	data.DetailURL = n.links.OrderDetail(order.CustomerID, order.ID)

	n.send(ctx, order.CustomerID, 0, TemplateReminder, data)
}

func (n *OrderNotifier) baseData(order *domain.Order) Data {
	return Data{
		OrderID: order.ID,
		Start:   order.StartTime.In(n.location).Format(startLayout),
		Status:  string(order.Status),
	}
}

func (n *OrderNotifier) send(ctx context.Context, recipientID, counterpartyID int64, template Template, data Data) {
	err := n.sender.Send(ctx, Notification{
		RecipientID:    recipientID,
		CounterpartyID: counterpartyID,
		Template:       template,
		Data:           data,
	})
	if err != nil {
		n.logger.Error("OrderNotifier: %s for order=%d: %v", template, data.OrderID, err)
	}
}
