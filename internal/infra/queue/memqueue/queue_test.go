package memqueue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

func task(orderID int64, kind domain.TaskKind, runAt time.Time) *domain.ScheduledTask {
	return &domain.ScheduledTask{
		ID:          domain.TaskID(orderID, kind),
		Kind:        kind,
		OrderID:     orderID,
		RunAt:       runAt,
		MaxAttempts: 3,
	}
}

func TestFetchDueOrderAndLimit(t *testing.T) {
	ctx := context.Background()
	q := New()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, q.Enqueue(ctx, task(1, domain.TaskKindReminder, now.Add(-time.Minute))))
	require.NoError(t, q.Enqueue(ctx, task(2, domain.TaskKindAutoDecline, now.Add(-time.Hour))))
	require.NoError(t, q.Enqueue(ctx, task(3, domain.TaskKindAutoDecline, now.Add(time.Hour))))

	due, err := q.FetchDue(ctx, now, 1)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, int64(2), due[0].OrderID)
	assert.Equal(t, 1, due[0].Attempts)

	due, err = q.FetchDue(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, due, 1, "claimed tasks are not handed out twice")
	assert.Equal(t, int64(1), due[0].OrderID)
}

func TestCancelByOrderIsNoopWithoutTasks(t *testing.T) {
	ctx := context.Background()
	q := New()
	assert.NoError(t, q.CancelByOrder(ctx, 99))
	assert.NoError(t, q.Cancel(ctx, domain.TaskID(99, domain.TaskKindReminder)))
}

func TestCancelledTaskIsNotFetched(t *testing.T) {
	ctx := context.Background()
	q := New()
	now := time.Now()

	require.NoError(t, q.Enqueue(ctx, task(1, domain.TaskKindAutoDecline, now.Add(-time.Second))))
	require.NoError(t, q.Enqueue(ctx, task(1, domain.TaskKindReminder, now.Add(-time.Second))))
	require.NoError(t, q.CancelByOrder(ctx, 1))

	due, err := q.FetchDue(ctx, now, 10)
	require.NoError(t, err)
	assert.Empty(t, due)

	stored, ok := q.Get(domain.TaskID(1, domain.TaskKindReminder))
	require.True(t, ok)
	assert.Equal(t, domain.TaskStatusCancelled, stored.Status)
}

func TestRetryAndFail(t *testing.T) {
	ctx := context.Background()
	q := New()
	now := time.Now()
	tk := task(5, domain.TaskKindReminder, now.Add(-time.Second))
	require.NoError(t, q.Enqueue(ctx, tk))

	_, err := q.FetchDue(ctx, now, 10)
	require.NoError(t, err)
	require.NoError(t, q.Retry(ctx, tk.ID, now.Add(time.Minute), "boom"))

	stored, _ := q.Get(tk.ID)
	assert.Equal(t, domain.TaskStatusPending, stored.Status)
	require.NotNil(t, stored.LastError)
	assert.Equal(t, "boom", *stored.LastError)

	due, err := q.FetchDue(ctx, now.Add(time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, 2, due[0].Attempts)

	require.NoError(t, q.Fail(ctx, tk.ID, "boom again"))
	stored, _ = q.Get(tk.ID)
	assert.Equal(t, domain.TaskStatusFailed, stored.Status)
}
