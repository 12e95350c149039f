package memqueue

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Queue отложенная очередь в памяти процесса
// Задачи теряются при перезапуске, поэтому используется для разработки и тестов
type Queue struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*domain.ScheduledTask
	now   func() time.Time
}

// New создает пустую очередь
func New() *Queue {
	return &Queue{
		tasks: make(map[uuid.UUID]*domain.ScheduledTask),
		now:   time.Now,
	}
}

// Enqueue ставит задачу в очередь, перезаписывая задачу с тем же ID
func (q *Queue) Enqueue(_ context.Context, task *domain.ScheduledTask) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	stored := *task
	stored.Status = domain.TaskStatusPending
	stored.Attempts = 0
	stored.LastError = nil
	stored.UpdatedAt = now
	if prev, ok := q.tasks[task.ID]; ok {
		stored.CreatedAt = prev.CreatedAt
	} else {
		stored.CreatedAt = now
	}
	q.tasks[task.ID] = &stored
	return nil
}

// Cancel отменяет ожидающую задачу
func (q *Queue) Cancel(_ context.Context, id uuid.UUID) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if t, ok := q.tasks[id]; ok && t.Status == domain.TaskStatusPending {
		t.Status = domain.TaskStatusCancelled
		t.UpdatedAt = q.now()
	}
	return nil
}

// CancelByOrder отменяет все ожидающие задачи заказа
func (q *Queue) CancelByOrder(_ context.Context, orderID int64) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, t := range q.tasks {
		if t.OrderID == orderID && t.Status == domain.TaskStatusPending {
			t.Status = domain.TaskStatusCancelled
			t.UpdatedAt = q.now()
		}
	}
	return nil
}

// FetchDue забирает сработавшие задачи в порядке RunAt
func (q *Queue) FetchDue(_ context.Context, now time.Time, limit int) ([]*domain.ScheduledTask, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	due := make([]*domain.ScheduledTask, 0)
	for _, t := range q.tasks {
		if t.Status == domain.TaskStatusPending && !t.RunAt.After(now) {
			due = append(due, t)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].RunAt.Before(due[j].RunAt) })
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}

	claimed := make([]*domain.ScheduledTask, 0, len(due))
	for _, t := range due {
		t.Status = domain.TaskStatusRunning
		t.Attempts++
		t.UpdatedAt = now
		c := *t
		claimed = append(claimed, &c)
	}
	return claimed, nil
}

// Ack помечает задачу выполненной
func (q *Queue) Ack(_ context.Context, id uuid.UUID) error {
	return q.update(id, func(t *domain.ScheduledTask) {
		t.Status = domain.TaskStatusDone
	})
}

// Retry возвращает задачу в очередь с новым временем запуска
func (q *Queue) Retry(_ context.Context, id uuid.UUID, nextRunAt time.Time, lastErr string) error {
	return q.update(id, func(t *domain.ScheduledTask) {
		t.Status = domain.TaskStatusPending
		t.RunAt = nextRunAt
		t.LastError = &lastErr
	})
}

// Fail помечает задачу окончательно проваленной
func (q *Queue) Fail(_ context.Context, id uuid.UUID, lastErr string) error {
	return q.update(id, func(t *domain.ScheduledTask) {
		t.Status = domain.TaskStatusFailed
		t.LastError = &lastErr
	})
}

// Get возвращает копию задачи (для тестов и отладки)
func (q *Queue) Get(id uuid.UUID) (domain.ScheduledTask, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	t, ok := q.tasks[id]
	if !ok {
		return domain.ScheduledTask{}, false
	}
	return *t, true
}

func (q *Queue) update(id uuid.UUID, fn func(t *domain.ScheduledTask)) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	// Задача могла быть перезаписана или удалена, это не ошибка
	t, ok := q.tasks[id]
	if !ok || t.Status != domain.TaskStatusRunning {
		return nil
	}
	fn(t)
	t.UpdatedAt = q.now()
	return nil
}
