package get_free_slots

import "errors"

var (
	// ErrPositionNotFound возвращается, когда должность не найдена
	ErrPositionNotFound = errors.New("get_free_slots: position not found")

	// ErrServiceNotFound возвращается, когда услуга не найдена или относится к другой должности
	ErrServiceNotFound = errors.New("get_free_slots: service not found")

	// ErrSpecialistNotFound возвращается, когда специалист не занимает должность
	ErrSpecialistNotFound = errors.New("get_free_slots: specialist not found")

	// ErrInvalidServiceDuration возвращается, когда у услуги неположительная длительность
	ErrInvalidServiceDuration = errors.New("get_free_slots: service duration must be positive")

	// ErrInvalidDate возвращается, когда дата в прошлом
	ErrInvalidDate = errors.New("get_free_slots: invalid date")

	// ErrInvalidSchedule возвращается, когда расписание должности некорректно
	ErrInvalidSchedule = errors.New("get_free_slots: position working time is invalid")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("get_free_slots: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_free_slots: internal error")
)
