package get_free_slots

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Request модель запроса свободного времени специалиста
type Request struct {
	PositionID   int64     // ID должности
	SpecialistID int64     // ID специалиста
	ServiceID    int64     // ID услуги
	Date         time.Time // Дата (время игнорируется)
}

// Config параметры сетки слотов
type Config struct {
	StepMinutes int            // шаг сетки
	Location    *time.Location // часовой пояс рабочих расписаний
}

// Response модель ответа со свободными слотами
type Response struct {
	Date            time.Time // Дата, на которую запрашивались слоты
	PositionID      int64
	SpecialistID    int64
	ServiceID       int64
	DurationMinutes int    // Длительность услуги
	Slots           []Slot // Свободные слоты по возрастанию
}

// Slot свободный интервал под услугу
type Slot struct {
	StartTime types.TimeString // "10:00"
	EndTime   types.TimeString // "11:00"
	Start     time.Time        // Полная отметка начала, её принимает создание заказа
}
