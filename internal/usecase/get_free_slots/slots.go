package get_free_slots

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/workinghours"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// generateFreeSlots строит сетку начал с шагом step внутри рабочего окна дня
// Слот попадает в ответ, если услуга целиком помещается до закрытия,
// начинается позже now и не пересекается ни с одним открытым заказом
func generateFreeSlots(
	window workinghours.Window,
	day time.Time,
	duration time.Duration,
	step time.Duration,
	now time.Time,
	orders []*domain.Order,
) []Slot {
	slots := make([]Slot, 0)

	open := window.Open.On(day)
	closing := window.Close.On(day)

	for start := open; !start.Add(duration).After(closing); start = start.Add(step) {
		// Прошедшее время не предлагаем
		if !start.After(now) {
			continue
		}

		end := start.Add(duration)
		if overlapsAny(start, end, orders) {
			continue
		}

		slots = append(slots, Slot{
			StartTime: types.NewTimeString(start),
			EndTime:   types.NewTimeString(end),
			Start:     start,
		})
	}

	return slots
}

// overlapsAny проверяет пересечение [start, end) с открытыми заказами
// Заказы встык (конец одного равен началу другого) не пересекаются
func overlapsAny(start, end time.Time, orders []*domain.Order) bool {
	for _, order := range orders {
		if !order.IsActive() && !order.IsApproved() {
			continue
		}
		if order.Overlaps(start, end) {
			return true
		}
	}
	return false
}
