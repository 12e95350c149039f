package get_free_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	businessClient "github.com/m04kA/SMC-AppointmentService/internal/integrations/businessservice"
	"github.com/m04kA/SMC-AppointmentService/internal/workinghours"
)

// UseCase use case для получения свободного времени специалиста
type UseCase struct {
	orderRepo    OrderRepository
	catalog      CatalogClient
	timeProvider TimeProvider
	cfg          Config
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	orderRepo OrderRepository,
	catalog CatalogClient,
	cfg Config,
	logger Logger,
) *UseCase {
	if cfg.StepMinutes <= 0 {
		cfg.StepMinutes = domain.DefaultScheduleStepMinutes
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &UseCase{
		orderRepo:    orderRepo,
		catalog:      catalog,
		timeProvider: &RealTimeProvider{},
		cfg:          cfg,
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени (для тестов)
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case получения свободных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetFreeSlots: position=%d, specialist=%d, service=%d, date=%s",
		req.PositionID, req.SpecialistID, req.ServiceID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetFreeSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Дата в часовом поясе расписаний
	now := uc.timeProvider.Now().In(uc.cfg.Location)
	day := time.Date(req.Date.Year(), req.Date.Month(), req.Date.Day(), 0, 0, 0, 0, uc.cfg.Location)
	if isDateInPast(day, now) {
		uc.logger.Warn("GetFreeSlots: date %s is in the past", day.Format(domain.DateFormat))
		return nil, ErrInvalidDate
	}

	// 3. Получаем должность
	position, err := uc.catalog.GetPosition(ctx, req.PositionID)
	if err != nil {
		if errors.Is(err, businessClient.ErrPositionNotFound) {
			uc.logger.Warn("GetFreeSlots: position id=%d not found", req.PositionID)
			return nil, ErrPositionNotFound
		}
		uc.logger.Error("GetFreeSlots: failed to get position id=%d: %v", req.PositionID, err)
		return nil, fmt.Errorf("%w: failed to get position: %v", ErrInternal, err)
	}

	if !position.HasSpecialist(req.SpecialistID) {
		uc.logger.Warn("GetFreeSlots: specialist=%d does not hold position=%d", req.SpecialistID, req.PositionID)
		return nil, ErrSpecialistNotFound
	}

	// 4. Получаем услугу, она должна относиться к должности
	service, err := uc.catalog.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, businessClient.ErrServiceNotFound) {
			uc.logger.Warn("GetFreeSlots: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("GetFreeSlots: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}
	if service.PositionID != position.ID {
		uc.logger.Warn("GetFreeSlots: service id=%d belongs to position=%d, not %d", service.ID, service.PositionID, position.ID)
		return nil, ErrServiceNotFound
	}
	if service.DurationMinutes <= 0 {
		uc.logger.Warn("GetFreeSlots: service id=%d has duration %d min", service.ID, service.DurationMinutes)
		return nil, ErrInvalidServiceDuration
	}

	resp := &Response{
		Date:            day,
		PositionID:      req.PositionID,
		SpecialistID:    req.SpecialistID,
		ServiceID:       req.ServiceID,
		DurationMinutes: service.DurationMinutes,
		Slots:           []Slot{},
	}

	// 5. Рабочее окно дня
	schedule, err := workinghours.ValidateWeekSchedule(position.WorkingTime)
	if err != nil {
		uc.logger.Error("GetFreeSlots: position=%d has invalid working time: %v", position.ID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}

	window, ok := workinghours.GetWorkingWindow(schedule, day)
	if !ok {
		uc.logger.Info("GetFreeSlots: position=%d is closed on %s", position.ID, day.Format(domain.DateFormat))
		return resp, nil
	}

	// 6. Открытые заказы специалиста, задевающие окно
	dayOpen := window.Open.On(day)
	dayClose := window.Close.On(day)
	orders, err := uc.orderRepo.Find(ctx, domain.OrdersFilter{
		SpecialistID: &req.SpecialistID,
		Statuses:     domain.OpenStatuses,
		StartTo:      &dayClose,
		EndAfter:     &dayOpen,
	})
	if err != nil {
		uc.logger.Error("GetFreeSlots: failed to get orders: %v", err)
		return nil, fmt.Errorf("%w: failed to get orders: %v", ErrInternal, err)
	}

	// 7. Сетка свободных слотов
	resp.Slots = generateFreeSlots(
		window,
		day,
		time.Duration(service.DurationMinutes)*time.Minute,
		time.Duration(uc.cfg.StepMinutes)*time.Minute,
		now,
		orders,
	)

	uc.logger.Info("GetFreeSlots: %d free slots for specialist=%d on %s",
		len(resp.Slots), req.SpecialistID, day.Format(domain.DateFormat))

	return resp, nil
}
