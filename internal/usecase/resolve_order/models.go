package resolve_order

// Request параметры ссылки из письма, все сегменты в исходном (закодированном) виде
type Request struct {
	UID    string // base64 ID заказа
	Token  string // токен подтверждения
	Status string // base64 целевого статуса
}

// Result куда перенаправить пользователя
type Result struct {
	Redirect string
	Applied  bool // переход применён
}
