package notification

import "errors"

var (
	// ErrUnknownTemplate возвращается для незарегистрированного шаблона
	ErrUnknownTemplate = errors.New("notification: unknown template")

	// ErrRender возвращается при ошибке рендеринга шаблона
	ErrRender = errors.New("notification: failed to render template")

	// ErrRecipient возвращается, если получателю нельзя отправить письмо
	ErrRecipient = errors.New("notification: recipient unavailable")

	// ErrDeliver возвращается при ошибке доставки письма
	ErrDeliver = errors.New("notification: failed to deliver message")

	// ErrQueueFull возвращается, когда очередь асинхронной отправки переполнена
	ErrQueueFull = errors.New("notification: queue is full")

	// ErrClosed возвращается при отправке после остановки
	ErrClosed = errors.New("notification: sender is closed")
)
