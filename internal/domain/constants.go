package domain

// Default configuration values
const (
	DefaultTokenExpiryHours        = 72  // 3 дня
	DefaultAutoDeclineDelayMinutes = 180 // 3 часа без ответа специалиста
	DefaultReminderLeadTimeMinutes = 120
	DefaultTaskMaxAttempts         = 5
	DefaultScheduleStepMinutes     = 15
	DefaultCompletionSweepSeconds  = 60
)

// Business validation constants
const (
	MaxCancellationReasonLength = 500
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// OpenStatuses статусы заказов, занимающих время специалиста
var OpenStatuses = []OrderStatus{
	OrderStatusActive,
	OrderStatusApproved,
}

// AllStatuses все допустимые статусы заказа
var AllStatuses = []OrderStatus{
	OrderStatusActive,
	OrderStatusApproved,
	OrderStatusDeclined,
	OrderStatusCancelled,
	OrderStatusCompleted,
}

// ParseOrderStatus конвертирует строку в OrderStatus с валидацией
func ParseOrderStatus(s string) (OrderStatus, bool) {
	for _, status := range AllStatuses {
		if string(status) == s {
			return status, true
		}
	}
	return "", false
}
