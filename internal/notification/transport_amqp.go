package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPConfig параметры публикации писем в RabbitMQ
type AMQPConfig struct {
	URL      string
	Exchange string // topic exchange, routing key = "email.<template>"
}

// AMQPTransport публикует письма в брокер, доставку выполняет внешний почтовый сервис
type AMQPTransport struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	mu       sync.Mutex
}

type amqpEnvelope struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	Template string `json:"template"`
}

// DialAMQP подключается к брокеру и объявляет exchange
func DialAMQP(cfg AMQPConfig) (*AMQPTransport, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}

	if err := ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("amqp exchange declare %s: %w", cfg.Exchange, err)
	}

	return &AMQPTransport{conn: conn, ch: ch, exchange: cfg.Exchange}, nil
}

// Deliver публикует письмо как persistent JSON сообщение
func (t *AMQPTransport) Deliver(ctx context.Context, msg Message) error {
	body, err := json.Marshal(amqpEnvelope{
		To:       msg.To,
		Subject:  msg.Subject,
		Body:     msg.Body,
		Template: string(msg.Template),
	})
	if err != nil {
		return fmt.Errorf("amqp marshal: %w", err)
	}

	// Канал amqp091 не потокобезопасен для публикации
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.ch.PublishWithContext(ctx, t.exchange, "email."+string(msg.Template), false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Timestamp:    time.Now().UTC(),
		Headers: amqp.Table{
			"x-source": "appointment-service",
		},
		Body: body,
	})
}

// Close закрывает канал и соединение
func (t *AMQPTransport) Close() {
	if t.ch != nil {
		_ = t.ch.Close()
	}
	if t.conn != nil {
		_ = t.conn.Close()
	}
}
