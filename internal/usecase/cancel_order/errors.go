package cancel_order

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("cancel_order: invalid input data")

	// ErrReasonRequired возвращается при пустой причине отмены
	ErrReasonRequired = errors.New("cancel_order: cancellation reason is required")

	// ErrReasonTooLong возвращается, когда причина длиннее допустимого
	ErrReasonTooLong = errors.New("cancel_order: cancellation reason is too long")

	// ErrOrderNotFound возвращается, когда заказ не найден
	ErrOrderNotFound = errors.New("cancel_order: order not found")

	// ErrPermissionDenied возвращается, когда пользователь не участник заказа
	ErrPermissionDenied = errors.New("cancel_order: user is not a party of the order")

	// ErrInvalidTransition возвращается, когда заказ уже нельзя отменить
	ErrInvalidTransition = errors.New("cancel_order: order cannot be cancelled")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("cancel_order: internal error")
)
