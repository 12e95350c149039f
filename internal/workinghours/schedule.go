package workinghours

import (
	"strings"
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Weekdays ключи дней недели в расписании (регистр важен)
var Weekdays = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

var weekdayKeys = map[time.Weekday]string{
	time.Monday:    "Mon",
	time.Tuesday:   "Tue",
	time.Wednesday: "Wed",
	time.Thursday:  "Thu",
	time.Friday:    "Fri",
	time.Saturday:  "Sat",
	time.Sunday:    "Sun",
}

// Window рабочее окно дня: [Open, Close)
type Window struct {
	Open  types.TimeString
	Close types.TimeString
}

// Contains возвращает true, если время суток попадает в [Open, Close)
func (w Window) Contains(t types.TimeString) bool {
	return !t.IsBefore(w.Open) && t.IsBefore(w.Close)
}

// Schedule нормализованное недельное расписание
// Для каждого дня либо пустой список (выходной), либо [open, close] с open < close
type Schedule map[string][]types.TimeString

// Raw возвращает расписание в исходном виде (для JSON и повторной валидации)
func (s Schedule) Raw() map[string][]string {
	raw := make(map[string][]string, len(s))
	for day, marks := range s {
		values := make([]string, 0, len(marks))
		for _, m := range marks {
			values = append(values, m.String())
		}
		raw[day] = values
	}
	return raw
}

// WeekdayKey возвращает ключ расписания для дня недели
func WeekdayKey(d time.Weekday) string {
	return weekdayKeys[d]
}

// ParseTimeOfDay парсит время в формате "HH:MM"
func ParseTimeOfDay(text string) (types.TimeString, error) {
	t, err := types.NewTimeStringFromString(text)
	if err != nil {
		return "", &FormatError{Value: text, Msg: "time must match HH:MM"}
	}
	return t, nil
}

// ValidateWeekSchedule проверяет и нормализует недельное расписание
// Лишние ключи игнорируются, отсутствие любого из семи дней - ошибка
// Совпадающие open и close означают выходной
func ValidateWeekSchedule(raw map[string][]string) (Schedule, error) {
	schedule := make(Schedule, len(Weekdays))

	for _, day := range Weekdays {
		marks, ok := raw[day]
		if !ok {
			return nil, &MissingDayError{Day: day}
		}

		switch len(marks) {
		case 0:
			schedule[day] = []types.TimeString{}
			continue
		case 2:
		default:
			return nil, &FormatError{Day: day, Value: strings.Join(marks, ","), Msg: "must contain 2 elements or 0"}
		}

		open, err := types.NewTimeStringFromString(marks[0])
		if err != nil {
			return nil, &FormatError{Day: day, Value: marks[0], Msg: "day schedule does not match ['HH:MM', 'HH:MM']"}
		}
		closing, err := types.NewTimeStringFromString(marks[1])
		if err != nil {
			return nil, &FormatError{Day: day, Value: marks[1], Msg: "day schedule does not match ['HH:MM', 'HH:MM']"}
		}

		if open.IsAfter(closing) {
			return nil, &RangeError{Day: day, Open: open.String(), Close: closing.String()}
		}

		if open == closing {
			schedule[day] = []types.TimeString{}
			continue
		}

		schedule[day] = []types.TimeString{open, closing}
	}

	return schedule, nil
}

// GetWorkingWindow возвращает рабочее окно для дня недели даты
// false - в этот день не работают
func GetWorkingWindow(schedule Schedule, date time.Time) (Window, bool) {
	marks := schedule[WeekdayKey(date.Weekday())]
	if len(marks) != 2 {
		return Window{}, false
	}
	return Window{Open: marks[0], Close: marks[1]}, true
}

// IsWithinWindow возвращает true, если время суток ts попадает в рабочее окно его дня
// Часовой пояс берётся из ts
func IsWithinWindow(schedule Schedule, ts time.Time) bool {
	window, ok := GetWorkingWindow(schedule, ts)
	if !ok {
		return false
	}
	return window.Contains(types.NewTimeString(ts))
}
