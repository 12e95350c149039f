package redisqueue

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// encodeTask поля HASH задачи, время хранится в миллисекундах Unix
func encodeTask(task *domain.ScheduledTask, nowMs int64) map[string]interface{} {
	return map[string]interface{}{
		"kind":         string(task.Kind),
		"order_id":     task.OrderID,
		"run_at":       task.RunAt.UnixMilli(),
		"status":       string(domain.TaskStatusPending),
		"attempts":     0,
		"max_attempts": task.MaxAttempts,
		"created_at":   nowMs,
		"updated_at":   nowMs,
	}
}

func decodeTask(id string, fields map[string]string) (*domain.ScheduledTask, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: task %s has no fields", ErrDecode, id)
	}

	taskID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: id %q: %v", ErrDecode, id, err)
	}

	ints := make(map[string]int64, 6)
	for _, name := range []string{"order_id", "run_at", "attempts", "max_attempts", "created_at", "updated_at"} {
		v, err := strconv.ParseInt(fields[name], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: task %s field %s: %v", ErrDecode, id, name, err)
		}
		ints[name] = v
	}

	task := &domain.ScheduledTask{
		ID:          taskID,
		Kind:        domain.TaskKind(fields["kind"]),
		OrderID:     ints["order_id"],
		RunAt:       time.UnixMilli(ints["run_at"]).UTC(),
		Status:      domain.TaskStatus(fields["status"]),
		Attempts:    int(ints["attempts"]),
		MaxAttempts: int(ints["max_attempts"]),
		CreatedAt:   time.UnixMilli(ints["created_at"]).UTC(),
		UpdatedAt:   time.UnixMilli(ints["updated_at"]).UTC(),
	}
	if lastErr, ok := fields["last_error"]; ok {
		task.LastError = &lastErr
	}
	return task, nil
}
