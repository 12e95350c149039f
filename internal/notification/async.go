package notification

import (
	"context"
	"sync"
	"time"
)

// deliveryTimeout ограничивает одну отправку в фоне
const deliveryTimeout = 30 * time.Second

// AsyncSender отправляет письма в фоне на фиксированном числе воркеров
// Запрос не ждёт ни доставки, ни обращений к сервису пользователей:
// при переполнении буфера письмо отбрасывается с записью в лог
type AsyncSender struct {
	next    Sender
	jobs    chan Notification
	metrics Metrics
	logger  Logger

	wg        sync.WaitGroup
	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

// NewAsyncSender создает асинхронный отправитель и запускает воркеры
func NewAsyncSender(next Sender, workers, buffer int, metrics Metrics, logger Logger) *AsyncSender {
	if workers <= 0 {
		workers = 2
	}
	if buffer <= 0 {
		buffer = 100
	}

	s := &AsyncSender{
		next:    next,
		jobs:    make(chan Notification, buffer),
		metrics: metrics,
		logger:  logger,
	}

	s.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go s.work()
	}
	return s
}

// Send ставит письмо в очередь и сразу возвращает управление
func (s *AsyncSender) Send(_ context.Context, n Notification) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrClosed
	}

	select {
	case s.jobs <- n:
		return nil
	default:
		s.metrics.ObserveNotification(string(n.Template), "dropped")
		s.logger.Warn("AsyncSender: queue is full, %s to user=%d dropped", n.Template, n.RecipientID)
		return ErrQueueFull
	}
}

// Close перестаёт принимать письма и дожидается отправки уже принятых
func (s *AsyncSender) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.jobs)
		s.mu.Unlock()
	})
	s.wg.Wait()
}

func (s *AsyncSender) work() {
	defer s.wg.Done()

	for n := range s.jobs {
		// Контекст запроса к этому моменту уже может быть отменён
		ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
		if err := s.next.Send(ctx, n); err != nil {
			s.logger.Error("AsyncSender: %v", err)
		}
		cancel()
	}
}
