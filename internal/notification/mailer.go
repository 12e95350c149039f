package notification

import (
	"context"
	"fmt"
)

// Notification письмо, адресованное пользователю по ID
// Адрес и имена подставляются при отправке, а не при постановке в очередь
type Notification struct {
	RecipientID    int64
	CounterpartyID int64 // 0 - имя второй стороны не подставляется
	Template       Template
	Data           Data
}

// Mailer находит получателя, рендерит шаблон и передаёт письмо транспорту
type Mailer struct {
	transport Transport
	users     UserProvider
	metrics   Metrics
	logger    Logger
}

// NewMailer создает синхронный отправитель
func NewMailer(transport Transport, users UserProvider, metrics Metrics, logger Logger) *Mailer {
	return &Mailer{transport: transport, users: users, metrics: metrics, logger: logger}
}

// Send отправляет письмо и возвращает ошибку доставки
func (m *Mailer) Send(ctx context.Context, n Notification) error {
	user, err := m.users.GetUser(ctx, n.RecipientID)
	if err != nil {
		m.metrics.ObserveNotification(string(n.Template), "no_recipient")
		return fmt.Errorf("%w: %s for order=%d: user=%d: %v", ErrRecipient, n.Template, n.Data.OrderID, n.RecipientID, err)
	}
	if user.Email == "" {
		m.metrics.ObserveNotification(string(n.Template), "no_recipient")
		return fmt.Errorf("%w: %s for order=%d: user=%d has no email", ErrRecipient, n.Template, n.Data.OrderID, n.RecipientID)
	}

	data := n.Data
	data.RecipientName = user.FullName
	if n.CounterpartyID != 0 {
		// Без имени второй стороны шаблон всё равно читается
		if other, err := m.users.GetUser(ctx, n.CounterpartyID); err == nil {
			data.CounterpartyName = other.FullName
		}
	}

	subject, body, err := Render(n.Template, data)
	if err != nil {
		m.metrics.ObserveNotification(string(n.Template), "render_error")
		return err
	}

	msg := Message{To: user.Email, Subject: subject, Body: body, Template: n.Template}
	if err := m.transport.Deliver(ctx, msg); err != nil {
		m.metrics.ObserveNotification(string(n.Template), "error")
		return fmt.Errorf("%w: %s to %s: %v", ErrDeliver, n.Template, user.Email, err)
	}

	m.metrics.ObserveNotification(string(n.Template), "sent")
	m.logger.Info("Mailer: %s sent to %s", n.Template, user.Email)
	return nil
}
