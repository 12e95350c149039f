package domain

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// TaskKind represents the kind of a deferred task
type TaskKind string

const (
	TaskKindAutoDecline TaskKind = "auto_decline"
	TaskKindReminder    TaskKind = "reminder"
)

// TaskStatus represents the state of a deferred task in the queue
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusDone      TaskStatus = "done"
	TaskStatusFailed    TaskStatus = "failed"
	TaskStatusCancelled TaskStatus = "cancelled"
)

// taskNamespace пространство имён для детерминированных ID задач
var taskNamespace = uuid.MustParse("6f1c2b7e-8a3d-4c55-9e0b-2d7f4a1c9b30")

// ScheduledTask represents a deferred unit of work bound to an order
type ScheduledTask struct {
	ID          uuid.UUID
	Kind        TaskKind
	OrderID     int64
	RunAt       time.Time
	Status      TaskStatus
	Attempts    int
	MaxAttempts int
	LastError   *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TaskID returns a deterministic identifier for the (order, kind) pair,
// so a task can be revoked without looking it up
func TaskID(orderID int64, kind TaskKind) uuid.UUID {
	return uuid.NewSHA1(taskNamespace, []byte(string(kind)+":"+strconv.FormatInt(orderID, 10)))
}

// CanRetry returns true if another attempt is allowed
func (t *ScheduledTask) CanRetry() bool {
	return t.Attempts < t.MaxAttempts
}
