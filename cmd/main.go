package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	cancelOrderHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/cancel_order"
	createOrderHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/create_order"
	getFreeSlotsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_free_slots"
	getOrderHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_order"
	getUserOrdersHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_user_orders"
	resolveOrderHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/resolve_order"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/approval"
	"github.com/m04kA/SMC-AppointmentService/internal/config"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/queue/memqueue"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/queue/redisqueue"
	orderRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/order"
	taskRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/task"
	businessServiceClient "github.com/m04kA/SMC-AppointmentService/internal/integrations/businessservice"
	userServiceClient "github.com/m04kA/SMC-AppointmentService/internal/integrations/userservice"
	"github.com/m04kA/SMC-AppointmentService/internal/notification"
	ordersService "github.com/m04kA/SMC-AppointmentService/internal/service/orders"
	"github.com/m04kA/SMC-AppointmentService/internal/tasks"
	cancelOrderUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/cancel_order"
	completeOrdersUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/complete_orders"
	createOrderUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_order"
	getFreeSlotsUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_free_slots"
	resolveOrderUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/resolve_order"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/metrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	configPath := "config.toml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		configPath = v
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-AppointmentService...")
	log.Info("Configuration loaded from %s", configPath)

	location, err := cfg.Orders.Location()
	if err != nil {
		log.Fatal("Invalid timezone %q: %v", cfg.Orders.Timezone, err)
	}

	// Инициализируем метрики (если включены)
	// nil-коллектор безопасен: все Observe* становятся no-op
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Инициализируем репозитории
	orderRepository := orderRepo.NewRepository(wrappedDB)

	// Выбираем хранилище отложенных задач
	var scheduler tasks.Scheduler
	switch cfg.Scheduler.Backend {
	case config.SchedulerRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancelPing()
		if err != nil {
			log.Fatal("Failed to ping redis at %s: %v", cfg.Redis.Addr, err)
		}
		scheduler = redisqueue.New(rdb, cfg.Redis.KeyPrefix).WithLogger(log)
	case config.SchedulerMemory:
		log.Warn("Scheduler backend is in-memory: pending tasks are lost on restart")
		scheduler = memqueue.New()
	default:
		scheduler = taskRepo.NewRepository(wrappedDB, txMgr)
	}
	log.Info("Task scheduler backend: %s", cfg.Scheduler.Backend)

	// Инициализируем интеграционных клиентов
	userClient := userServiceClient.NewClient(
		cfg.UserService.URL,
		time.Duration(cfg.UserService.Timeout)*time.Second,
		log,
	)
	businessClient := businessServiceClient.NewClient(
		cfg.BusinessService.URL,
		time.Duration(cfg.BusinessService.Timeout)*time.Second,
		time.Duration(cfg.BusinessService.CacheTTL)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (UserService=%s timeout=%ds, BusinessService=%s timeout=%ds)",
		cfg.UserService.URL, cfg.UserService.Timeout, cfg.BusinessService.URL, cfg.BusinessService.Timeout)

	// Ссылки подтверждения
	tokens, err := approval.NewGenerator(cfg.Orders.TokenSecret, cfg.Orders.TokenExpiry())
	if err != nil {
		log.Fatal("Failed to initialize token generator: %v", err)
	}
	links := approval.NewLinks(cfg.Links.BaseURL, cfg.Links.FallbackURL)

	// Транспорт уведомлений
	var transport notification.Transport
	switch cfg.Notifications.Transport {
	case config.TransportSMTP:
		transport = notification.NewSMTPTransport(notification.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	case config.TransportAMQP:
		amqpTransport, err := notification.DialAMQP(notification.AMQPConfig{
			URL:      cfg.AMQP.URL,
			Exchange: cfg.AMQP.Exchange,
		})
		if err != nil {
			log.Fatal("Failed to connect to AMQP broker: %v", err)
		}
		defer amqpTransport.Close()
		transport = amqpTransport
	default:
		transport = notification.NewLogTransport(log)
	}
	log.Info("Notification transport: %s", cfg.Notifications.Transport)

	mailer := notification.NewMailer(transport, userClient, metricsCollector, log)
	sender := notification.NewAsyncSender(mailer, cfg.Notifications.Workers, cfg.Notifications.Buffer, metricsCollector, log)
	notifier := notification.NewOrderNotifier(sender, links, location, log)

	// Отложенные задачи
	dispatcher := tasks.NewDispatcher(scheduler, cfg.Scheduler.MaxAttempts, log)
	runner := tasks.NewRunner(orderRepository, notifier, metricsCollector, log)
	worker := tasks.NewWorker(scheduler, runner, metricsCollector, log, tasks.WorkerConfig{
		PollInterval: time.Duration(cfg.Scheduler.PollIntervalMs) * time.Millisecond,
		BatchSize:    cfg.Scheduler.BatchSize,
		Concurrency:  cfg.Scheduler.Concurrency,
		RetryBackoff: time.Duration(cfg.Scheduler.RetryBackoffSeconds) * time.Second,
	})

	// Инициализируем сервисы
	orderSvc := ordersService.NewService(orderRepository, log)

	// Инициализируем use cases
	createOrderUseCase := createOrderUC.NewUseCase(
		orderRepository,
		businessClient,
		userClient,
		dispatcher,
		tokens,
		links,
		notifier,
		txMgr,
		createOrderUC.Config{
			AutoDeclineDelay: cfg.Orders.AutoDeclineDelay(),
			ReminderLeadTime: cfg.Orders.ReminderLeadTime(),
			Location:         location,
		},
		log,
	)

	resolveOrderUseCase := resolveOrderUC.NewUseCase(
		orderRepository,
		tokens,
		links,
		dispatcher,
		notifier,
		metricsCollector,
		log,
	)

	cancelOrderUseCase := cancelOrderUC.NewUseCase(
		orderRepository,
		dispatcher,
		notifier,
		metricsCollector,
		log,
	)

	getFreeSlotsUseCase := getFreeSlotsUC.NewUseCase(
		orderRepository,
		businessClient,
		getFreeSlotsUC.Config{
			StepMinutes: cfg.Orders.ScheduleStepMinutes,
			Location:    location,
		},
		log,
	)

	completeOrdersUseCase := completeOrdersUC.NewUseCase(
		orderRepository,
		metricsCollector,
		completeOrdersUC.DefaultBatchSize,
		log,
	)

	// Инициализируем handlers
	createOrder := createOrderHandler.NewHandler(createOrderUseCase, log)
	resolveOrder := resolveOrderHandler.NewHandler(resolveOrderUseCase, log)
	cancelOrder := cancelOrderHandler.NewHandler(cancelOrderUseCase, links, log)
	getOrder := getOrderHandler.NewHandler(orderSvc, log)
	getUserOrders := getUserOrdersHandler.NewHandler(orderSvc, log)
	getFreeSlots := getFreeSlotsHandler.NewHandler(getFreeSlotsUseCase, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		log.Info("HTTP metrics middleware enabled")

		// Metrics endpoint (публичный, без аутентификации)
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Свободные слоты специалиста на дату
	api.HandleFunc("/positions/{positionId}/specialists/{specialistId}/services/{serviceId}/schedule/{date}",
		getFreeSlots.Handle).Methods(http.MethodGet)

	// Ссылка подтверждения из письма: специалист не передаёт X-User-ID
	api.HandleFunc("/orders/{uid}/{token}/{status}", resolveOrder.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Заказы ---
	// Создание заказа
	protected.HandleFunc("/orders", createOrder.Handle).Methods(http.MethodPost)

	// Заказы пользователя
	protected.HandleFunc("/users/{userId}/orders", getUserOrders.Handle).Methods(http.MethodGet)

	// Получение заказа по ID
	protected.HandleFunc("/users/{userId}/orders/{orderId}", getOrder.Handle).Methods(http.MethodGet)

	// Отмена заказа
	protected.HandleFunc("/users/{userId}/orders/{orderId}", cancelOrder.Handle).Methods(http.MethodPut)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      otelhttp.NewHandler(r, "appointment"),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Фоновые процессы живут до сигнала завершения
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return worker.Run(gctx)
	})

	g.Go(func() error {
		return completeOrdersUseCase.Run(gctx, cfg.Orders.CompletionSweepInterval())
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
		)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Server forced to shutdown: %v", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("Service stopped with error: %v", err)
	}

	// Дожидаемся отправки писем из очереди
	sender.Close()

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	log.Info("Server stopped gracefully")
}
