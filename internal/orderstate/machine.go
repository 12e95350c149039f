package orderstate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

var (
	// ErrInvalidTransition возвращается при переходе из терминального или несовместимого статуса
	ErrInvalidTransition = errors.New("orderstate: invalid transition")

	// ErrPermissionDenied возвращается, когда участник не может выполнить переход
	ErrPermissionDenied = errors.New("orderstate: permission denied")

	// ErrReasonRequired возвращается при отмене без причины
	ErrReasonRequired = errors.New("orderstate: cancellation reason is required")
)

// Actor сторона, инициирующая переход
type Actor string

const (
	ActorNone       Actor = ""
	ActorCustomer   Actor = "customer"
	ActorSpecialist Actor = "specialist"
	ActorSystem     Actor = "system"
)

type rule struct {
	from   []domain.OrderStatus
	actors []Actor
}

// rules таблица допустимых переходов: целевой статус -> откуда и кем
var rules = map[domain.OrderStatus]rule{
	domain.OrderStatusApproved: {
		from:   []domain.OrderStatus{domain.OrderStatusActive},
		actors: []Actor{ActorSpecialist},
	},
	domain.OrderStatusDeclined: {
		from:   []domain.OrderStatus{domain.OrderStatusActive},
		actors: []Actor{ActorSpecialist, ActorSystem},
	},
	domain.OrderStatusCancelled: {
		from:   []domain.OrderStatus{domain.OrderStatusActive, domain.OrderStatusApproved},
		actors: []Actor{ActorCustomer, ActorSpecialist},
	},
	domain.OrderStatusCompleted: {
		from:   []domain.OrderStatus{domain.OrderStatusApproved},
		actors: []Actor{ActorSystem},
	},
}

// ActorFor определяет роль пользователя в заказе
// Если пользователь одновременно заказчик и специалист (невозможно по инварианту), приоритет у специалиста
func ActorFor(order *domain.Order, userID int64) Actor {
	switch userID {
	case order.SpecialistID:
		return ActorSpecialist
	case order.CustomerID:
		return ActorCustomer
	default:
		return ActorNone
	}
}

// CanTransition проверяет допустимость перехода без изменения заказа
// Порядок проверок: статус, затем права, затем причина
func CanTransition(order *domain.Order, to domain.OrderStatus, actor Actor, reason string) error {
	r, ok := rules[to]
	if !ok {
		return fmt.Errorf("%w: unknown target status %q", ErrInvalidTransition, to)
	}

	if !containsStatus(r.from, order.Status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, to)
	}

	if !containsActor(r.actors, actor) {
		return fmt.Errorf("%w: %q cannot move order to %s", ErrPermissionDenied, actor, to)
	}

	if to == domain.OrderStatusCancelled && strings.TrimSpace(reason) == "" {
		return ErrReasonRequired
	}

	return nil
}

// Transition применяет переход к заказу в памяти
// Сохранение выполняет вызывающий код с проверкой исходного статуса
func Transition(order *domain.Order, to domain.OrderStatus, actor Actor, reason string) error {
	if err := CanTransition(order, to, actor, reason); err != nil {
		return err
	}

	order.Status = to
	if to == domain.OrderStatusCancelled {
		trimmed := strings.TrimSpace(reason)
		order.Reason = &trimmed
	}
	return nil
}

// Targets возвращает статусы, в которые actor может перевести заказ из текущего состояния
func Targets(order *domain.Order, actor Actor) []domain.OrderStatus {
	targets := make([]domain.OrderStatus, 0)
	for _, to := range domain.AllStatuses {
		r, ok := rules[to]
		if !ok {
			continue
		}
		if containsStatus(r.from, order.Status) && containsActor(r.actors, actor) {
			targets = append(targets, to)
		}
	}
	return targets
}

func containsStatus(list []domain.OrderStatus, s domain.OrderStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsActor(list []Actor, a Actor) bool {
	for _, v := range list {
		if v == a {
			return true
		}
	}
	return false
}
