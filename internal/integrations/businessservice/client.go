package businessservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

const cacheSize = 1024

// errNotFound внутренний признак 404, заменяется на ошибку конкретной сущности
var errNotFound = errors.New("not found")

// Client клиент для работы с BusinessService
// Каталог меняется редко, поэтому ответы кешируются на cacheTTL
type Client struct {
	baseURL    string
	httpClient *http.Client
	services   *expirable.LRU[int64, *domain.Service]
	positions  *expirable.LRU[int64, *domain.Position]
	log        Logger
}

// NewClient создает новый экземпляр клиента BusinessService
// cacheTTL <= 0 отключает кеш
func NewClient(baseURL string, timeout, cacheTTL time.Duration, log Logger) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		log: log,
	}
	if cacheTTL > 0 {
		c.services = expirable.NewLRU[int64, *domain.Service](cacheSize, nil, cacheTTL)
		c.positions = expirable.NewLRU[int64, *domain.Position](cacheSize, nil, cacheTTL)
	}
	return c
}

// GetService получает услугу
func (c *Client) GetService(ctx context.Context, serviceID int64) (*domain.Service, error) {
	if c.services != nil {
		if s, ok := c.services.Get(serviceID); ok {
			return s, nil
		}
	}

	var dto Service
	if err := c.get(ctx, fmt.Sprintf("/internal/services/%d", serviceID), &dto); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}

	service := dto.ToDomain()
	if c.services != nil {
		c.services.Add(serviceID, service)
	}
	return service, nil
}

// GetPosition получает должность с действующим расписанием
// Если у должности нет своего расписания, подставляется расписание бизнеса
func (c *Client) GetPosition(ctx context.Context, positionID int64) (*domain.Position, error) {
	if c.positions != nil {
		if p, ok := c.positions.Get(positionID); ok {
			return p, nil
		}
	}

	var dto Position
	if err := c.get(ctx, fmt.Sprintf("/internal/positions/%d", positionID), &dto); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, ErrPositionNotFound
		}
		return nil, err
	}

	position := dto.ToDomain()
	if position.WorkingTime == nil {
		business, err := c.GetBusiness(ctx, position.BusinessID)
		if err != nil {
			return nil, err
		}
		c.log.Info("BusinessService: position=%d inherits working time of business=%d", positionID, business.ID)
		position.WorkingTime = business.WorkingTime
	}

	if c.positions != nil {
		c.positions.Add(positionID, position)
	}
	return position, nil
}

// GetBusiness получает бизнес
func (c *Client) GetBusiness(ctx context.Context, businessID int64) (*domain.Business, error) {
	var dto Business
	if err := c.get(ctx, fmt.Sprintf("/internal/businesses/%d", businessID), &dto); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, err
	}
	return dto.ToDomain(), nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	url := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("BusinessService: GET %s failed: %v", url, err)
		return fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return errNotFound
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}
	return nil
}
