package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // часовые пояса доступны и в минимальных образах

	"github.com/BurntSushi/toml"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// ErrInvalidConfig возвращается, если конфигурация не прошла валидацию
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Переменные окружения, перекрывающие секреты из файла
const (
	EnvTokenSecret   = "ORDERS_TOKEN_SECRET"
	EnvDBPassword    = "DB_PASSWORD"
	EnvSMTPPassword  = "SMTP_PASSWORD"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvAMQPURL       = "AMQP_URL"
)

// Бэкенды очереди отложенных задач
const (
	SchedulerPostgres = "postgres"
	SchedulerRedis    = "redis"
	SchedulerMemory   = "memory"
)

// Транспорты уведомлений
const (
	TransportLog  = "log"
	TransportSMTP = "smtp"
	TransportAMQP = "amqp"
)

type Config struct {
	Server          ServerConfig        `toml:"server"`
	Database        DatabaseConfig      `toml:"database"`
	Logs            LogsConfig          `toml:"logs"`
	Metrics         MetricsConfig       `toml:"metrics"`
	UserService     ServiceClientConfig `toml:"user_service"`
	BusinessService ServiceClientConfig `toml:"business_service"`
	Orders          OrdersConfig        `toml:"orders"`
	Links           LinksConfig         `toml:"links"`
	Scheduler       SchedulerConfig     `toml:"scheduler"`
	Redis           RedisConfig         `toml:"redis"`
	Notifications   NotificationsConfig `toml:"notifications"`
	SMTP            SMTPConfig          `toml:"smtp"`
	AMQP            AMQPConfig          `toml:"amqp"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`     // секунды
	WriteTimeout    int `toml:"write_timeout"`    // секунды
	IdleTimeout     int `toml:"idle_timeout"`     // секунды
	ShutdownTimeout int `toml:"shutdown_timeout"` // секунды
}

type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type LogsConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"` // пусто - только stdout
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

type ServiceClientConfig struct {
	URL      string `toml:"url"`
	Timeout  int    `toml:"timeout"`   // секунды
	CacheTTL int    `toml:"cache_ttl"` // секунды, 0 - без кэша
}

type OrdersConfig struct {
	TokenSecret             string `toml:"token_secret"`
	TokenExpiryHours        int    `toml:"token_expiry_hours"`
	AutoDeclineDelayMinutes int    `toml:"auto_decline_delay_minutes"`
	ReminderLeadTimeMinutes int    `toml:"reminder_lead_time_minutes"`
	Timezone                string `toml:"timezone"`
	CompletionSweepSeconds  int    `toml:"completion_sweep_seconds"`
	ScheduleStepMinutes     int    `toml:"schedule_step_minutes"`
}

// TokenExpiry срок жизни ссылок подтверждения
func (o OrdersConfig) TokenExpiry() time.Duration {
	return time.Duration(o.TokenExpiryHours) * time.Hour
}

// AutoDeclineDelay через сколько отклонять заказ без ответа
func (o OrdersConfig) AutoDeclineDelay() time.Duration {
	return time.Duration(o.AutoDeclineDelayMinutes) * time.Minute
}

// ReminderLeadTime за сколько до начала напоминать
func (o OrdersConfig) ReminderLeadTime() time.Duration {
	return time.Duration(o.ReminderLeadTimeMinutes) * time.Minute
}

// CompletionSweepInterval период закрытия прошедших заказов
func (o OrdersConfig) CompletionSweepInterval() time.Duration {
	return time.Duration(o.CompletionSweepSeconds) * time.Second
}

// Location часовой пояс рабочих расписаний
func (o OrdersConfig) Location() (*time.Location, error) {
	return time.LoadLocation(o.Timezone)
}

type LinksConfig struct {
	BaseURL     string `toml:"base_url"`
	FallbackURL string `toml:"fallback_url"`
}

type SchedulerConfig struct {
	Backend             string `toml:"backend"`
	PollIntervalMs      int    `toml:"poll_interval_ms"`
	BatchSize           int    `toml:"batch_size"`
	Concurrency         int    `toml:"concurrency"`
	MaxAttempts         int    `toml:"max_attempts"`
	RetryBackoffSeconds int    `toml:"retry_backoff_seconds"`
}

type RedisConfig struct {
	Addr      string `toml:"addr"`
	Password  string `toml:"password"`
	DB        int    `toml:"db"`
	KeyPrefix string `toml:"key_prefix"`
}

type NotificationsConfig struct {
	Transport string `toml:"transport"`
	Workers   int    `toml:"workers"`
	Buffer    int    `toml:"buffer"`
}

type SMTPConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	From     string `toml:"from"`
}

type AMQPConfig struct {
	URL      string `toml:"url"`
	Exchange string `toml:"exchange"`
}

// Load читает TOML файл, применяет значения по умолчанию и переменные окружения
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to decode %s: %w", path, err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default конфигурация, поверх которой декодируется файл
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     10,
			WriteTimeout:    10,
			IdleTimeout:     60,
			ShutdownTimeout: 15,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs: LogsConfig{Level: "info"},
		Metrics: MetricsConfig{
			Path:        "/metrics",
			ServiceName: "appointment_service",
		},
		UserService:     ServiceClientConfig{Timeout: 5},
		BusinessService: ServiceClientConfig{Timeout: 5, CacheTTL: 60},
		Orders: OrdersConfig{
			TokenExpiryHours:        domain.DefaultTokenExpiryHours,
			AutoDeclineDelayMinutes: domain.DefaultAutoDeclineDelayMinutes,
			ReminderLeadTimeMinutes: domain.DefaultReminderLeadTimeMinutes,
			Timezone:                "UTC",
			CompletionSweepSeconds:  domain.DefaultCompletionSweepSeconds,
			ScheduleStepMinutes:     domain.DefaultScheduleStepMinutes,
		},
		Scheduler: SchedulerConfig{
			Backend:             SchedulerPostgres,
			PollIntervalMs:      1000,
			BatchSize:           50,
			Concurrency:         4,
			MaxAttempts:         domain.DefaultTaskMaxAttempts,
			RetryBackoffSeconds: 30,
		},
		Redis: RedisConfig{Addr: "localhost:6379", KeyPrefix: "smc:tasks"},
		Notifications: NotificationsConfig{
			Transport: TransportLog,
			Workers:   2,
			Buffer:    256,
		},
		SMTP: SMTPConfig{Port: 587},
		AMQP: AMQPConfig{Exchange: "notifications"},
	}
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvTokenSecret)); v != "" {
		cfg.Orders.TokenSecret = v
	}
	if v := os.Getenv(EnvDBPassword); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv(EnvSMTPPassword); v != "" {
		cfg.SMTP.Password = v
	}
	if v := os.Getenv(EnvRedisPassword); v != "" {
		cfg.Redis.Password = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAMQPURL)); v != "" {
		cfg.AMQP.URL = v
	}
}

// Validate проверяет обязательные поля и допустимые значения
// Возвращает все найденные проблемы одной ошибкой
func (c *Config) Validate() error {
	problems := make([]string, 0)

	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		problems = append(problems, "server.http_port must be in 1..65535")
	}
	if c.Database.DBName == "" {
		problems = append(problems, "database.dbname is required")
	}
	if c.UserService.URL == "" {
		problems = append(problems, "user_service.url is required")
	}
	if c.BusinessService.URL == "" {
		problems = append(problems, "business_service.url is required")
	}
	if c.Orders.TokenSecret == "" {
		problems = append(problems, "orders.token_secret is required (or "+EnvTokenSecret+")")
	}
	if c.Orders.TokenExpiryHours <= 0 {
		problems = append(problems, "orders.token_expiry_hours must be positive")
	}
	if c.Orders.AutoDeclineDelayMinutes <= 0 {
		problems = append(problems, "orders.auto_decline_delay_minutes must be positive")
	}
	if c.Orders.ReminderLeadTimeMinutes < 0 {
		problems = append(problems, "orders.reminder_lead_time_minutes must not be negative")
	}
	if c.Orders.CompletionSweepSeconds <= 0 {
		problems = append(problems, "orders.completion_sweep_seconds must be positive")
	}
	if _, err := c.Orders.Location(); err != nil {
		problems = append(problems, fmt.Sprintf("orders.timezone %q: %v", c.Orders.Timezone, err))
	}
	if c.Links.BaseURL == "" {
		problems = append(problems, "links.base_url is required")
	}

	switch c.Scheduler.Backend {
	case SchedulerPostgres, SchedulerMemory:
	case SchedulerRedis:
		if c.Redis.Addr == "" {
			problems = append(problems, "redis.addr is required for scheduler.backend=redis")
		}
	default:
		problems = append(problems, fmt.Sprintf("scheduler.backend %q is not one of postgres, redis, memory", c.Scheduler.Backend))
	}
	if c.Scheduler.MaxAttempts <= 0 {
		problems = append(problems, "scheduler.max_attempts must be positive")
	}

	switch c.Notifications.Transport {
	case TransportLog:
	case TransportSMTP:
		if c.SMTP.Host == "" || c.SMTP.From == "" {
			problems = append(problems, "smtp.host and smtp.from are required for notifications.transport=smtp")
		}
	case TransportAMQP:
		if c.AMQP.URL == "" {
			problems = append(problems, "amqp.url is required for notifications.transport=amqp")
		}
	default:
		problems = append(problems, fmt.Sprintf("notifications.transport %q is not one of log, smtp, amqp", c.Notifications.Transport))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
