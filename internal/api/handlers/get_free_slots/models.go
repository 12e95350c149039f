package get_free_slots

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	getFreeSlots "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_free_slots"
)

// FreeSlotsResponse HTTP response model
type FreeSlotsResponse struct {
	Date            string     `json:"date"`
	PositionID      int64      `json:"positionId"`
	SpecialistID    int64      `json:"specialistId"`
	ServiceID       int64      `json:"serviceId"`
	DurationMinutes int        `json:"durationMinutes"`
	Slots           []FreeSlot `json:"slots"`
}

// FreeSlot модель свободного слота
type FreeSlot struct {
	StartTime string `json:"startTime"` // "10:00"
	EndTime   string `json:"endTime"`   // "10:45"
	Start     string `json:"start"`     // RFC 3339, готово для POST /orders
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getFreeSlots.Response) *FreeSlotsResponse {
	slots := make([]FreeSlot, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = FreeSlot{
			StartTime: slot.StartTime.String(),
			EndTime:   slot.EndTime.String(),
			Start:     slot.Start.Format(time.RFC3339),
		}
	}

	return &FreeSlotsResponse{
		Date:            resp.Date.Format(domain.DateFormat),
		PositionID:      resp.PositionID,
		SpecialistID:    resp.SpecialistID,
		ServiceID:       resp.ServiceID,
		DurationMinutes: resp.DurationMinutes,
		Slots:           slots,
	}
}

// ToUseCaseRequest создает запрос use case из параметров пути
func ToUseCaseRequest(positionID, specialistID, serviceID int64, dateStr string) (*getFreeSlots.Request, error) {
	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		return nil, err
	}

	return &getFreeSlots.Request{
		PositionID:   positionID,
		SpecialistID: specialistID,
		ServiceID:    serviceID,
		Date:         date,
	}, nil
}
