package approval

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/hkdf"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// hkdfInfo метка назначения ключа, отделяет ключ токенов от других производных секрета
const hkdfInfo = "smc-appointment/order-approval-token"

// epoch точка отсчёта временной метки токена
var epoch = time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)

// Generator создаёт и проверяет токены подтверждения заказа
// Токен не хранится: при проверке он пересчитывается из текущего состояния заказа,
// поэтому смена статуса заказа делает все выданные токены недействительными
type Generator struct {
	key    []byte
	expiry time.Duration
	now    func() time.Time
}

// NewGenerator создаёт генератор токенов
// expiry <= 0 заменяется значением по умолчанию
func NewGenerator(secret string, expiry time.Duration) (*Generator, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if expiry <= 0 {
		expiry = domain.DefaultTokenExpiryHours * time.Hour
	}

	key := make([]byte, sha256.Size)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(hkdfInfo)), key); err != nil {
		return nil, fmt.Errorf("approval: derive key: %w", err)
	}

	return &Generator{
		key:    key,
		expiry: expiry,
		now:    time.Now,
	}, nil
}

// WithClock подменяет источник времени (для тестов)
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Expiry возвращает срок действия токена
func (g *Generator) Expiry() time.Duration {
	return g.expiry
}

// MakeToken возвращает токен для текущего состояния заказа
func (g *Generator) MakeToken(order *domain.Order) string {
	return g.makeTokenWithTimestamp(order, g.timestamp(g.now()))
}

// VerifyToken проверяет, что токен выдан для текущего состояния заказа и не истёк
func (g *Generator) VerifyToken(order *domain.Order, token string) bool {
	if order == nil || token == "" {
		return false
	}

	tsPart, _, ok := strings.Cut(token, "-")
	if !ok {
		return false
	}

	ts, err := strconv.ParseInt(tsPart, 36, 64)
	if err != nil || ts < 0 {
		return false
	}

	expected := g.makeTokenWithTimestamp(order, ts)
	if !hmac.Equal([]byte(expected), []byte(token)) {
		return false
	}

	age := g.timestamp(g.now()) - ts
	return age <= int64(g.expiry/time.Second)
}

func (g *Generator) makeTokenWithTimestamp(order *domain.Order, ts int64) string {
	mac := hmac.New(sha256.New, g.key)
	// updated_at меняется при каждом сохранении заказа
	fmt.Fprintf(mac, "%d|%s|%d|%d", order.ID, order.Status, order.UpdatedAt.Unix(), ts)
	return strconv.FormatInt(ts, 36) + "-" + hex.EncodeToString(mac.Sum(nil))
}

func (g *Generator) timestamp(t time.Time) int64 {
	return int64(t.Sub(epoch) / time.Second)
}
