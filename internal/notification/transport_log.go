package notification

import "context"

// LogTransport пишет письма в лог вместо отправки (локальная разработка)
type LogTransport struct {
	logger Logger
}

func NewLogTransport(logger Logger) *LogTransport {
	return &LogTransport{logger: logger}
}

func (t *LogTransport) Deliver(_ context.Context, msg Message) error {
	t.logger.Info("LogTransport: to=%s subject=%q\n%s", msg.To, msg.Subject, msg.Body)
	return nil
}
