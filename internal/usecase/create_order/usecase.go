package create_order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	businessClient "github.com/m04kA/SMC-AppointmentService/internal/integrations/businessservice"
	userClient "github.com/m04kA/SMC-AppointmentService/internal/integrations/userservice"
	"github.com/m04kA/SMC-AppointmentService/internal/workinghours"
)

// UseCase use case для создания заказа
type UseCase struct {
	orderRepo    OrderRepository
	catalog      CatalogClient
	users        UserServiceClient
	dispatcher   TaskDispatcher
	tokens       TokenGenerator
	links        LinkBuilder
	notifier     Notifier
	txManager    TransactionManager
	timeProvider TimeProvider
	cfg          Config
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	orderRepo OrderRepository,
	catalog CatalogClient,
	users UserServiceClient,
	dispatcher TaskDispatcher,
	tokens TokenGenerator,
	links LinkBuilder,
	notifier Notifier,
	txManager TransactionManager,
	cfg Config,
	logger Logger,
) *UseCase {
	if cfg.AutoDeclineDelay <= 0 {
		cfg.AutoDeclineDelay = domain.DefaultAutoDeclineDelayMinutes * time.Minute
	}
	if cfg.ReminderLeadTime <= 0 {
		cfg.ReminderLeadTime = domain.DefaultReminderLeadTimeMinutes * time.Minute
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &UseCase{
		orderRepo:    orderRepo,
		catalog:      catalog,
		users:        users,
		dispatcher:   dispatcher,
		tokens:       tokens,
		links:        links,
		notifier:     notifier,
		txManager:    txManager,
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

// Execute создает заказ в статусе active
// Проверка занятости и вставка выполняются в сериализуемой транзакции вместе с постановкой задач
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateOrder: customer=%d, specialist=%d, service=%d, start=%s",
		req.CustomerID, req.SpecialistID, req.ServiceID, req.StartTime.Format(time.RFC3339))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateOrder: validation failed: %v", err)
		return nil, err
	}

	// 2. Нельзя записаться к самому себе
	if req.CustomerID == req.SpecialistID {
		uc.logger.Warn("CreateOrder: customer and specialist are the same person, user=%d", req.CustomerID)
		return nil, ErrSelfBooking
	}

	// 3. Время начала должно быть в будущем
	now := uc.timeProvider.Now()
	if !req.StartTime.After(now) {
		uc.logger.Warn("CreateOrder: start %s is not after now %s", req.StartTime.Format(time.RFC3339), now.Format(time.RFC3339))
		return nil, ErrStartInPast
	}

	// 4. Получаем услугу и должность
	service, err := uc.catalog.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, businessClient.ErrServiceNotFound) {
			uc.logger.Warn("CreateOrder: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateOrder: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}
	if service.DurationMinutes <= 0 {
		uc.logger.Warn("CreateOrder: service id=%d has duration %d min", service.ID, service.DurationMinutes)
		return nil, ErrInvalidServiceDuration
	}

	position, err := uc.catalog.GetPosition(ctx, service.PositionID)
	if err != nil {
		if errors.Is(err, businessClient.ErrPositionNotFound) {
			uc.logger.Warn("CreateOrder: position id=%d of service id=%d not found", service.PositionID, service.ID)
			return nil, ErrServiceNotOffered
		}
		uc.logger.Error("CreateOrder: failed to get position id=%d: %v", service.PositionID, err)
		return nil, fmt.Errorf("%w: failed to get position: %v", ErrInternal, err)
	}

	// 5. Специалист должен занимать должность, к которой относится услуга
	if !position.HasSpecialist(req.SpecialistID) {
		uc.logger.Warn("CreateOrder: specialist=%d does not hold position=%d", req.SpecialistID, position.ID)
		return nil, ErrServiceNotOffered
	}

	// 6. Проверяем группу специалиста
	specialist, err := uc.users.GetUser(ctx, req.SpecialistID)
	if err != nil {
		if errors.Is(err, userClient.ErrUserNotFound) {
			uc.logger.Warn("CreateOrder: specialist id=%d not found", req.SpecialistID)
			return nil, ErrSpecialistNotFound
		}
		uc.logger.Error("CreateOrder: failed to get specialist id=%d: %v", req.SpecialistID, err)
		return nil, fmt.Errorf("%w: failed to get specialist: %v", ErrInternal, err)
	}
	if !specialist.HasRole(domain.RoleSpecialist) {
		uc.logger.Warn("CreateOrder: user=%d is not a specialist", req.SpecialistID)
		return nil, ErrNotSpecialist
	}

	// 7. Проверяем рабочее окно должности
	schedule, err := workinghours.ValidateWeekSchedule(position.WorkingTime)
	if err != nil {
		uc.logger.Error("CreateOrder: position=%d has invalid working time: %v", position.ID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}

	start := req.StartTime.In(uc.cfg.Location)
	if !workinghours.IsWithinWindow(schedule, start) {
		uc.logger.Warn("CreateOrder: start %s is outside working hours of position=%d", start.Format(time.RFC3339), position.ID)
		return nil, ErrOutsideWorkingHours
	}

	end := start.Add(time.Duration(service.DurationMinutes) * time.Minute)

	// 8. Создаем заказ и ставим задачи в одной транзакции
	var created *domain.Order
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 8.1. Пересекающиеся открытые заказы специалиста (с блокировкой)
		busy, err := uc.orderRepo.Find(txCtx, domain.OrdersFilter{
			SpecialistID: &req.SpecialistID,
			Statuses:     domain.OpenStatuses,
			StartTo:      &end,
			EndAfter:     &start,
		})
		if err != nil {
			uc.logger.Error("CreateOrder: failed to get specialist orders: %v", err)
			return fmt.Errorf("%w: failed to get orders: %v", ErrInternal, err)
		}
		if len(busy) > 0 {
			uc.logger.Warn("CreateOrder: specialist=%d is busy, conflicting order=%d", req.SpecialistID, busy[0].ID)
			return ErrSlotTaken
		}

		// 8.2. Сохраняем заказ
		order, err := uc.orderRepo.Create(txCtx, &domain.Order{
			CustomerID:   req.CustomerID,
			SpecialistID: req.SpecialistID,
			ServiceID:    req.ServiceID,
			StartTime:    start.UTC(),
			EndTime:      end.UTC(),
			Status:       domain.OrderStatusActive,
		})
		if err != nil {
			uc.logger.Error("CreateOrder: failed to create order: %v", err)
			return fmt.Errorf("%w: failed to create order: %v", ErrInternal, err)
		}

		// 8.3. Автоотклонение, если специалист не ответит
		if err := uc.dispatcher.ScheduleAutoDecline(txCtx, order, autoDeclineAt(now, order.StartTime, uc.cfg.AutoDeclineDelay)); err != nil {
			return fmt.Errorf("%w: failed to schedule auto-decline: %v", ErrInternal, err)
		}

		// 8.4. Напоминание заказчику, если до начала ещё есть время
		if remindAt := order.StartTime.Add(-uc.cfg.ReminderLeadTime); remindAt.After(now) {
			if err := uc.dispatcher.ScheduleReminder(txCtx, order, remindAt); err != nil {
				return fmt.Errorf("%w: failed to schedule reminder: %v", ErrInternal, err)
			}
		}

		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("CreateOrder: order id=%d created, specialist=%d, start=%s",
		created.ID, created.SpecialistID, created.StartTime.Format(time.RFC3339))

	// 9. Письмо специалисту со ссылками подтверждения (в фоне)
	token := uc.tokens.MakeToken(created)
	uc.notifier.ApprovalRequested(ctx, created, service.Name,
		uc.links.Resolve(created, token, domain.OrderStatusApproved),
		uc.links.Resolve(created, token, domain.OrderStatusDeclined),
	)

	return &Response{Order: created}, nil
}

// autoDeclineAt заказ без ответа отклоняется не позже времени начала
func autoDeclineAt(now, start time.Time, delay time.Duration) time.Time {
	fireAt := now.Add(delay)
	if start.Before(fireAt) {
		return start
	}
	return fireAt
}

func validateRequest(req *Request) error {
	if req.CustomerID <= 0 {
		return fmt.Errorf("%w: customer must be positive", ErrInvalidInput)
	}
	if req.SpecialistID <= 0 {
		return fmt.Errorf("%w: specialist must be positive", ErrInvalidInput)
	}
	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: service must be positive", ErrInvalidInput)
	}
	if req.StartTime.IsZero() {
		return fmt.Errorf("%w: start_time is required", ErrInvalidInput)
	}
	return nil
}
