package redisqueue

import (
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

func TestDecodeEncodedTask(t *testing.T) {
	runAt := time.Date(2024, 2, 1, 10, 30, 0, 0, time.UTC)
	task := &domain.ScheduledTask{
		ID:          domain.TaskID(12, domain.TaskKindReminder),
		Kind:        domain.TaskKindReminder,
		OrderID:     12,
		RunAt:       runAt,
		MaxAttempts: 5,
	}

	// HGETALL отдаёт все значения строками
	fields := make(map[string]string)
	for k, v := range encodeTask(task, runAt.UnixMilli()) {
		switch val := v.(type) {
		case string:
			fields[k] = val
		case int64:
			fields[k] = strconv.FormatInt(val, 10)
		case int:
			fields[k] = strconv.Itoa(val)
		}
	}
	fields["attempts"] = "2"
	fields["status"] = "running"

	got, err := decodeTask(task.ID.String(), fields)
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)
	assert.Equal(t, domain.TaskKindReminder, got.Kind)
	assert.Equal(t, int64(12), got.OrderID)
	assert.True(t, runAt.Equal(got.RunAt))
	assert.Equal(t, domain.TaskStatusRunning, got.Status)
	assert.Equal(t, 2, got.Attempts)
	assert.True(t, got.CanRetry())
	assert.Nil(t, got.LastError)
}

func TestDecodeRejectsBrokenTask(t *testing.T) {
	_, err := decodeTask("not-a-uuid", map[string]string{"kind": "reminder"})
	assert.ErrorIs(t, err, ErrDecode)

	_, err = decodeTask(domain.TaskID(1, domain.TaskKindReminder).String(), nil)
	assert.ErrorIs(t, err, ErrDecode)

	_, err = decodeTask(domain.TaskID(1, domain.TaskKindReminder).String(), map[string]string{"order_id": "x"})
	assert.ErrorIs(t, err, ErrDecode)
}

type recordingLogger struct {
	nopLogger
	errors []string
}

func (l *recordingLogger) Error(format string, v ...interface{}) {
	l.errors = append(l.errors, fmt.Sprintf(format, v...))
}

func TestDecodeBatchSkipsBrokenTasks(t *testing.T) {
	good := domain.TaskID(1, domain.TaskKindReminder).String()
	broken := domain.TaskID(2, domain.TaskKindReminder).String()
	expired := domain.TaskID(3, domain.TaskKindReminder).String()
	alsoGood := domain.TaskID(4, domain.TaskKindAutoDecline).String()

	fields := func(orderID, kind string) map[string]string {
		return map[string]string{
			"kind": kind, "order_id": orderID, "run_at": "1706783400000",
			"status": "running", "attempts": "1", "max_attempts": "3",
			"created_at": "1706783000000", "updated_at": "1706783400000",
		}
	}

	log := &recordingLogger{}
	tasks, dropped := decodeBatch(
		[]string{good, broken, expired, alsoGood},
		[]map[string]string{
			fields("1", "reminder"),
			{"kind": "reminder", "order_id": "not-a-number"},
			nil,
			fields("4", "auto_decline"),
		},
		log,
	)

	require.Len(t, tasks, 2)
	assert.Equal(t, int64(1), tasks[0].OrderID)
	assert.Equal(t, int64(4), tasks[1].OrderID)
	assert.Equal(t, domain.TaskKindAutoDecline, tasks[1].Kind)

	assert.Equal(t, []string{broken, expired}, dropped)
	require.Len(t, log.errors, 1)
	assert.Contains(t, log.errors[0], broken)
}

func TestKeys(t *testing.T) {
	q := New(nil, "")
	assert.Equal(t, "smc:tasks:due", q.dueKey())
	assert.Equal(t, "smc:tasks:order:7", q.orderKey(7))
}
