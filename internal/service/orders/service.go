package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	orderRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/order"
	"github.com/m04kA/SMC-AppointmentService/internal/service/orders/models"
)

// Service сервис чтения заказов
type Service struct {
	orderRepo OrderRepository
	now       func() time.Time
	logger    Logger
}

// NewService создает новый экземпляр сервиса заказов
func NewService(
	orderRepo OrderRepository,
	logger Logger,
) *Service {
	return &Service{
		orderRepo: orderRepo,
		now:       time.Now,
		logger:    logger,
	}
}

// GetByID получает заказ по ID
// Заказ видят только его участники: заказчик и специалист
func (s *Service) GetByID(ctx context.Context, id int64, userID int64) (*models.OrderResponse, error) {
	s.logger.Info("GetByID: fetching order id=%d for user=%d", id, userID)

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, orderRepo.ErrOrderNotFound) {
			s.logger.Warn("GetByID: order id=%d not found", id)
			return nil, ErrOrderNotFound
		}
		s.logger.Error("GetByID: repository error for order id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	if !order.IsParty(userID) {
		s.logger.Warn("GetByID: access denied for user=%d to order id=%d", userID, id)
		return nil, ErrAccessDenied
	}

	return models.FromDomainOrder(order, userID), nil
}

// GetUserOrders получает заказы пользователя в роли заказчика и/или специалиста
// Опционально фильтрует по статусу и только предстоящим
func (s *Service) GetUserOrders(ctx context.Context, req *models.GetUserOrdersRequest) (*models.OrderListResponse, error) {
	s.logger.Info("GetUserOrders: fetching orders for user=%d, role=%q, status=%v", req.UserID, req.Role, req.Status)

	if req.UserID <= 0 {
		return nil, fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}

	if req.Now.IsZero() {
		req.Now = s.now()
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetUserOrders: invalid filter for user=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	orders, err := s.orderRepo.Find(ctx, filter)
	if err != nil {
		s.logger.Error("GetUserOrders: repository error for user=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: GetUserOrders - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetUserOrders: successfully fetched %d orders for user=%d", len(orders), req.UserID)
	return models.FromDomainOrderList(orders, req.UserID), nil
}
