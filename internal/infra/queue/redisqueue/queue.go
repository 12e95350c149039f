package redisqueue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

var (
	// ErrRedis возвращается при ошибках обращения к Redis
	ErrRedis = errors.New("redisqueue: redis error")

	// ErrDecode возвращается, если задача в Redis повреждена
	ErrDecode = errors.New("redisqueue: failed to decode task")
)

// finishedTTL сколько хранить выполненные, отменённые и проваленные задачи
const finishedTTL = 7 * 24 * time.Hour

// DefaultLease время, после которого задача в running считается брошенной
const DefaultLease = 5 * time.Minute

// Раскладка ключей:
//
//	<prefix>:due           ZSET id -> run_at (ms), ожидающие задачи
//	<prefix>:running       ZSET id -> срок аренды (ms), захваченные задачи
//	<prefix>:task:<id>     HASH поля задачи
//	<prefix>:order:<id>    SET  id задач заказа
var fetchScript = redis.NewScript(`
local due, running, prefix = KEYS[1], KEYS[2], ARGV[1]
local now, limit, deadline = tonumber(ARGV[2]), tonumber(ARGV[3]), ARGV[4]
local claimed = {}

local expired = redis.call("ZRANGEBYSCORE", running, "-inf", now, "LIMIT", 0, limit)
for _, id in ipairs(expired) do
  table.insert(claimed, id)
end

if #claimed < limit then
  local ready = redis.call("ZRANGEBYSCORE", due, "-inf", now, "LIMIT", 0, limit - #claimed)
  for _, id in ipairs(ready) do
    redis.call("ZREM", due, id)
    table.insert(claimed, id)
  end
end

for _, id in ipairs(claimed) do
  redis.call("ZADD", running, deadline, id)
  local key = prefix .. ":task:" .. id
  redis.call("HSET", key, "status", "running", "updated_at", now)
  redis.call("HINCRBY", key, "attempts", 1)
end

return claimed
`)

var cancelScript = redis.NewScript(`
if redis.call("ZREM", KEYS[1], ARGV[1]) == 1 then
  redis.call("HSET", KEYS[2], "status", "cancelled", "updated_at", ARGV[2])
  redis.call("PEXPIRE", KEYS[2], ARGV[3])
  return 1
end
return 0
`)

// KEYS: running, due, task hash, order set
// ARGV: id, status, now, last_error, next_run_at ("" - не возвращать в очередь), ttl
var finishScript = redis.NewScript(`
if redis.call("ZREM", KEYS[1], ARGV[1]) == 0 then
  return 0
end
redis.call("HSET", KEYS[3], "status", ARGV[2], "updated_at", ARGV[3])
if ARGV[4] ~= "" then
  redis.call("HSET", KEYS[3], "last_error", ARGV[4])
end
if ARGV[5] ~= "" then
  redis.call("HSET", KEYS[3], "run_at", ARGV[5])
  redis.call("ZADD", KEYS[2], ARGV[5], ARGV[1])
else
  redis.call("SREM", KEYS[4], ARGV[1])
  redis.call("PEXPIRE", KEYS[3], ARGV[6])
end
return 1
`)

// Queue отложенная очередь на сортированных множествах Redis
type Queue struct {
	rdb    *redis.Client
	prefix string
	lease  time.Duration
	logger Logger
}

// New создает очередь. Пустой prefix заменяется на "smc:tasks"
func New(rdb *redis.Client, prefix string) *Queue {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "smc:tasks"
	}
	return &Queue{rdb: rdb, prefix: prefix, lease: DefaultLease, logger: nopLogger{}}
}

// WithLogger задаёт логгер для пропущенных при захвате задач
func (q *Queue) WithLogger(logger Logger) *Queue {
	q.logger = logger
	return q
}

// Enqueue ставит задачу в очередь, перезаписывая задачу с тем же ID
func (q *Queue) Enqueue(ctx context.Context, task *domain.ScheduledTask) error {
	id := task.ID.String()
	now := time.Now().UnixMilli()

	_, err := q.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, q.taskKey(id))
		pipe.HSet(ctx, q.taskKey(id), encodeTask(task, now))
		pipe.ZRem(ctx, q.runningKey(), id)
		pipe.ZAdd(ctx, q.dueKey(), redis.Z{Score: float64(task.RunAt.UnixMilli()), Member: id})
		pipe.SAdd(ctx, q.orderKey(task.OrderID), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: Enqueue - %v", ErrRedis, err)
	}
	return nil
}

// Cancel отменяет ожидающую задачу
func (q *Queue) Cancel(ctx context.Context, id uuid.UUID) error {
	key := id.String()
	err := cancelScript.Run(ctx, q.rdb,
		[]string{q.dueKey(), q.taskKey(key)},
		key, time.Now().UnixMilli(), finishedTTL.Milliseconds(),
	).Err()
	if err != nil {
		return fmt.Errorf("%w: Cancel - %v", ErrRedis, err)
	}
	return nil
}

// CancelByOrder отменяет все ожидающие задачи заказа
func (q *Queue) CancelByOrder(ctx context.Context, orderID int64) error {
	ids, err := q.rdb.SMembers(ctx, q.orderKey(orderID)).Result()
	if err != nil {
		return fmt.Errorf("%w: CancelByOrder - %v", ErrRedis, err)
	}

	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		if err := q.Cancel(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// FetchDue атомарно переносит сработавшие задачи из due в running
func (q *Queue) FetchDue(ctx context.Context, now time.Time, limit int) ([]*domain.ScheduledTask, error) {
	res, err := fetchScript.Run(ctx, q.rdb,
		[]string{q.dueKey(), q.runningKey()},
		q.prefix, now.UnixMilli(), limit, now.Add(q.lease).UnixMilli(),
	).StringSlice()
	if err != nil {
		return nil, fmt.Errorf("%w: FetchDue - %v", ErrRedis, err)
	}
	if len(res) == 0 {
		return nil, nil
	}

	pipe := q.rdb.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(res))
	for i, id := range res {
		cmds[i] = pipe.HGetAll(ctx, q.taskKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("%w: FetchDue - load tasks: %v", ErrRedis, err)
	}

	hashes := make([]map[string]string, len(cmds))
	for i, cmd := range cmds {
		hashes[i] = cmd.Val()
	}

	tasks, dropped := decodeBatch(res, hashes, q.logger)
	if len(dropped) > 0 {
		// Без удаления из running такие id захватывались бы снова после каждой аренды
		_, err := q.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, id := range dropped {
				pipe.ZRem(ctx, q.runningKey(), id)
				pipe.PExpire(ctx, q.taskKey(id), finishedTTL)
			}
			return nil
		})
		if err != nil {
			q.logger.Warn("FetchDue: failed to release %d undecodable tasks: %v", len(dropped), err)
		}
	}
	return tasks, nil
}

// decodeBatch разбирает захваченные задачи. Пустые (истёкшие) и повреждённые
// HASH не прерывают пачку: их id возвращаются в dropped
func decodeBatch(ids []string, hashes []map[string]string, logger Logger) ([]*domain.ScheduledTask, []string) {
	tasks := make([]*domain.ScheduledTask, 0, len(ids))
	var dropped []string
	for i, id := range ids {
		// HASH мог истечь, пока id оставался в множестве
		if len(hashes[i]) == 0 {
			dropped = append(dropped, id)
			continue
		}
		task, err := decodeTask(id, hashes[i])
		if err != nil {
			logger.Error("FetchDue: skipping task %s: %v", id, err)
			dropped = append(dropped, id)
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks, dropped
}

// Ack помечает задачу выполненной
func (q *Queue) Ack(ctx context.Context, id uuid.UUID) error {
	return q.finish(ctx, "Ack", id, domain.TaskStatusDone, "", nil)
}

// Retry возвращает задачу в очередь с новым временем запуска
func (q *Queue) Retry(ctx context.Context, id uuid.UUID, nextRunAt time.Time, lastErr string) error {
	return q.finish(ctx, "Retry", id, domain.TaskStatusPending, lastErr, &nextRunAt)
}

// Fail помечает задачу окончательно проваленной
func (q *Queue) Fail(ctx context.Context, id uuid.UUID, lastErr string) error {
	return q.finish(ctx, "Fail", id, domain.TaskStatusFailed, lastErr, nil)
}

func (q *Queue) finish(ctx context.Context, method string, id uuid.UUID, status domain.TaskStatus, lastErr string, nextRunAt *time.Time) error {
	key := id.String()

	next := ""
	if nextRunAt != nil {
		next = strconv.FormatInt(nextRunAt.UnixMilli(), 10)
	}

	orderID, err := q.rdb.HGet(ctx, q.taskKey(key), "order_id").Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: %s - %v", ErrRedis, method, err)
	}

	err = finishScript.Run(ctx, q.rdb,
		[]string{q.runningKey(), q.dueKey(), q.taskKey(key), q.orderKey(orderID)},
		key, string(status), time.Now().UnixMilli(), lastErr, next, finishedTTL.Milliseconds(),
	).Err()
	if err != nil {
		return fmt.Errorf("%w: %s - %v", ErrRedis, method, err)
	}
	return nil
}

func (q *Queue) dueKey() string     { return q.prefix + ":due" }
func (q *Queue) runningKey() string { return q.prefix + ":running" }
func (q *Queue) taskKey(id string) string {
	return q.prefix + ":task:" + id
}
func (q *Queue) orderKey(orderID int64) string {
	return q.prefix + ":order:" + strconv.FormatInt(orderID, 10)
}
