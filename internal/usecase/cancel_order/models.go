package cancel_order

import "github.com/m04kA/SMC-AppointmentService/internal/domain"

// Request модель запроса на отмену заказа
type Request struct {
	UserID  int64  // кто отменяет (из заголовка авторизации)
	OrderID int64  // ID заказа
	Reason  string // причина отмены, обязательна
}

// Response модель ответа с отменённым заказом
type Response struct {
	Order *domain.Order
}
