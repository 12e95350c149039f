package businessservice

import "github.com/m04kA/SMC-AppointmentService/internal/domain"

// Service модель услуги из BusinessService
type Service struct {
	ID         int64   `json:"id"`
	PositionID int64   `json:"position_id"`
	Title      string  `json:"title"`
	Price      float64 `json:"price"`
	Duration   int     `json:"duration"` // минуты
}

// ToDomain конвертирует ответ в доменную модель
func (s *Service) ToDomain() *domain.Service {
	return &domain.Service{
		ID:              s.ID,
		PositionID:      s.PositionID,
		Name:            s.Title,
		Price:           s.Price,
		DurationMinutes: s.Duration,
	}
}

// Position модель должности из BusinessService
// WorkingTime == nil означает, что действует расписание бизнеса
type Position struct {
	ID          int64               `json:"id"`
	BusinessID  int64               `json:"business_id"`
	Title       string              `json:"title"`
	WorkingTime map[string][]string `json:"working_time"`
	Specialists []int64             `json:"specialists"`
}

// ToDomain конвертирует ответ в доменную модель
func (p *Position) ToDomain() *domain.Position {
	return &domain.Position{
		ID:            p.ID,
		BusinessID:    p.BusinessID,
		Name:          p.Title,
		WorkingTime:   p.WorkingTime,
		SpecialistIDs: p.Specialists,
	}
}

// Business модель бизнеса из BusinessService
type Business struct {
	ID          int64               `json:"id"`
	OwnerID     int64               `json:"owner"`
	Name        string              `json:"name"`
	WorkingTime map[string][]string `json:"working_time"`
}

// ToDomain конвертирует ответ в доменную модель
func (b *Business) ToDomain() *domain.Business {
	return &domain.Business{
		ID:          b.ID,
		OwnerID:     b.OwnerID,
		Name:        b.Name,
		WorkingTime: b.WorkingTime,
	}
}
