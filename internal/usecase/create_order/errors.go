package create_order

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_order: invalid input data")

	// ErrSelfBooking возвращается, когда заказчик и специалист - один человек
	ErrSelfBooking = errors.New("create_order: customer and specialist are the same person")

	// ErrStartInPast возвращается, когда время начала уже прошло
	ErrStartInPast = errors.New("create_order: start time is in the past")

	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("create_order: service not found")

	// ErrInvalidServiceDuration возвращается, когда у услуги неположительная длительность
	ErrInvalidServiceDuration = errors.New("create_order: service duration must be positive")

	// ErrServiceNotOffered возвращается, когда специалист не оказывает услугу
	ErrServiceNotOffered = errors.New("create_order: specialist does not have such service")

	// ErrSpecialistNotFound возвращается, когда специалист не найден
	ErrSpecialistNotFound = errors.New("create_order: specialist not found")

	// ErrNotSpecialist возвращается, когда пользователь не состоит в группе специалистов
	ErrNotSpecialist = errors.New("create_order: user is not a specialist")

	// ErrInvalidSchedule возвращается, когда расписание должности некорректно
	ErrInvalidSchedule = errors.New("create_order: position working time is invalid")

	// ErrOutsideWorkingHours возвращается, когда время начала вне рабочего окна
	ErrOutsideWorkingHours = errors.New("create_order: start time is outside working hours")

	// ErrSlotTaken возвращается, когда у специалиста уже есть заказ на это время
	ErrSlotTaken = errors.New("create_order: specialist is busy at this time")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_order: internal error")
)
