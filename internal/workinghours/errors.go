package workinghours

import (
	"errors"
	"fmt"
)

// ErrInvalidSchedule базовая ошибка для всех ошибок расписания
var ErrInvalidSchedule = errors.New("workinghours: invalid schedule")

// FormatError некорректное время или количество отметок за день
type FormatError struct {
	Day   string
	Value string
	Msg   string
}

func (e *FormatError) Error() string {
	if e.Day == "" {
		return fmt.Sprintf("workinghours: %s: %q", e.Msg, e.Value)
	}
	return fmt.Sprintf("workinghours: %s: %s: %q", e.Day, e.Msg, e.Value)
}

func (e *FormatError) Unwrap() error { return ErrInvalidSchedule }

// RangeError время открытия позже времени закрытия
type RangeError struct {
	Day   string
	Open  string
	Close string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("workinghours: %s: working hours must begin before they end (%s > %s)", e.Day, e.Open, e.Close)
}

func (e *RangeError) Unwrap() error { return ErrInvalidSchedule }

// MissingDayError в расписании отсутствует день недели
type MissingDayError struct {
	Day string
}

func (e *MissingDayError) Error() string {
	return fmt.Sprintf("workinghours: day %q is missing", e.Day)
}

func (e *MissingDayError) Unwrap() error { return ErrInvalidSchedule }
