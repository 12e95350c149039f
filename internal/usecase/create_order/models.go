package create_order

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Request модель запроса на создание заказа
type Request struct {
	CustomerID   int64     // ID заказчика (из заголовка авторизации)
	SpecialistID int64     // ID специалиста
	ServiceID    int64     // ID услуги
	StartTime    time.Time // Время начала записи
}

// Config параметры оркестрации заказа
type Config struct {
	AutoDeclineDelay time.Duration  // через сколько отклонять заказ без ответа специалиста
	ReminderLeadTime time.Duration  // за сколько до начала напоминать заказчику
	Location         *time.Location // часовой пояс рабочих расписаний
}

// Response модель ответа с созданным заказом
type Response struct {
	Order *domain.Order
}
