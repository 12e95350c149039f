package approval

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// EncodeParam кодирует сегмент ссылки в URL-safe base64 без паддинга
func EncodeParam(value string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(value))
}

// DecodeParam декодирует сегмент ссылки
func DecodeParam(param string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(param, "="))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidParam, err)
	}
	return string(raw), nil
}

// DecodeOrderID декодирует идентификатор заказа из сегмента uid
func DecodeOrderID(uid string) (int64, error) {
	value, err := DecodeParam(uid)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: order id %q", ErrInvalidParam, value)
	}
	return id, nil
}

// DecodeStatus декодирует целевой статус из сегмента status
func DecodeStatus(param string) (domain.OrderStatus, error) {
	value, err := DecodeParam(param)
	if err != nil {
		return "", err
	}
	status, ok := domain.ParseOrderStatus(value)
	if !ok {
		return "", fmt.Errorf("%w: status %q", ErrInvalidParam, value)
	}
	return status, nil
}

// Links строит ссылки, которые попадают в письма и редиректы
// Все ссылки строятся от baseURL, который указывает на корень API (вместе с /api/v1)
type Links struct {
	baseURL     string
	fallbackURL string
}

// NewLinks создаёт построитель ссылок
// fallbackURL используется, когда заказ не удалось загрузить
func NewLinks(baseURL, fallbackURL string) *Links {
	baseURL = strings.TrimRight(baseURL, "/")
	if fallbackURL == "" {
		fallbackURL = baseURL + "/"
	}
	return &Links{baseURL: baseURL, fallbackURL: fallbackURL}
}

// Resolve ссылка на смену статуса заказа
func (l *Links) Resolve(order *domain.Order, token string, status domain.OrderStatus) string {
	return fmt.Sprintf("%s/orders/%s/%s/%s",
		l.baseURL,
		EncodeParam(strconv.FormatInt(order.ID, 10)),
		token,
		EncodeParam(string(status)),
	)
}

// OrderDetail страница заказа в кабинете пользователя
func (l *Links) OrderDetail(userID, orderID int64) string {
	return fmt.Sprintf("%s/users/%d/orders/%d", l.baseURL, userID, orderID)
}

// UserPage страница пользователя
func (l *Links) UserPage(userID int64) string {
	return fmt.Sprintf("%s/users/%d", l.baseURL, userID)
}

// Fallback страница по умолчанию
func (l *Links) Fallback() string {
	return l.fallbackURL
}
