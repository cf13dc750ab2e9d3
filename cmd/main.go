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
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	createReservationHandler "github.com/m04kA/SMC-SalonBooking/internal/api/handlers/create_reservation"
	getAvailableDaysHandler "github.com/m04kA/SMC-SalonBooking/internal/api/handlers/get_available_days"
	getAvailableSlotsHandler "github.com/m04kA/SMC-SalonBooking/internal/api/handlers/get_available_slots"
	getProfessionalsHandler "github.com/m04kA/SMC-SalonBooking/internal/api/handlers/get_professionals"
	getReservationHandler "github.com/m04kA/SMC-SalonBooking/internal/api/handlers/get_reservation"
	getServicesHandler "github.com/m04kA/SMC-SalonBooking/internal/api/handlers/get_services"
	healthHandler "github.com/m04kA/SMC-SalonBooking/internal/api/handlers/health"
	listReservationsHandler "github.com/m04kA/SMC-SalonBooking/internal/api/handlers/list_reservations"
	markReservationHandler "github.com/m04kA/SMC-SalonBooking/internal/api/handlers/mark_reservation"
	rescheduleReservationHandler "github.com/m04kA/SMC-SalonBooking/internal/api/handlers/reschedule_reservation"
	"github.com/m04kA/SMC-SalonBooking/internal/api/middleware"
	"github.com/m04kA/SMC-SalonBooking/internal/availability"
	"github.com/m04kA/SMC-SalonBooking/internal/config"
	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	"github.com/m04kA/SMC-SalonBooking/internal/infra/events"
	"github.com/m04kA/SMC-SalonBooking/internal/infra/migrator"
	catalogRepo "github.com/m04kA/SMC-SalonBooking/internal/infra/storage/catalog"
	idempotencyRepo "github.com/m04kA/SMC-SalonBooking/internal/infra/storage/idempotency"
	outboxRepo "github.com/m04kA/SMC-SalonBooking/internal/infra/storage/outbox"
	reservationRepo "github.com/m04kA/SMC-SalonBooking/internal/infra/storage/reservation"
	catalogService "github.com/m04kA/SMC-SalonBooking/internal/service/catalog"
	reservationsService "github.com/m04kA/SMC-SalonBooking/internal/service/reservations"
	createReservationUC "github.com/m04kA/SMC-SalonBooking/internal/usecase/create_reservation"
	getAvailableDaysUC "github.com/m04kA/SMC-SalonBooking/internal/usecase/get_available_days"
	getAvailableSlotsUC "github.com/m04kA/SMC-SalonBooking/internal/usecase/get_available_slots"
	rescheduleReservationUC "github.com/m04kA/SMC-SalonBooking/internal/usecase/reschedule_reservation"
	"github.com/m04kA/SMC-SalonBooking/migrations"
	"github.com/m04kA/SMC-SalonBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-SalonBooking/pkg/logger"
	"github.com/m04kA/SMC-SalonBooking/pkg/metrics"
	"github.com/m04kA/SMC-SalonBooking/pkg/tracing"
	"github.com/m04kA/SMC-SalonBooking/pkg/txmanager"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.toml"
	}

	// Загружаем конфигурацию
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

	log.Info("Starting SMC-SalonBooking...")
	log.Info("Configuration loaded from %s", configPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Трассировка
	shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		Endpoint:    cfg.Tracing.Endpoint,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		log.Fatal("Failed to set up tracing: %v", err)
	}

	// Календарь салона; ошибка конфигурации фатальна
	calendarSettings, err := cfg.CalendarSettings()
	if err != nil {
		log.Fatal("Invalid calendar: %v", err)
	}
	calendar, err := domain.NewBusinessCalendar(calendarSettings)
	if err != nil {
		log.Fatal("Invalid calendar: %v", err)
	}
	log.Info("Business calendar: tz=%s, step=%s, horizon=%s",
		calendar.Location(), calendar.SlotStep(), calendar.MaxHorizon())

	// Метрики (если включены); nil-коллектор безопасен для всех вызовов
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

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	if err := db.PingContext(ctx); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	if cfg.Database.AutoMigrate {
		m, err := migrator.New(db, migrations.FS, log)
		if err != nil {
			log.Fatal("Failed to create migrator: %v", err)
		}
		if err := m.Up(ctx); err != nil {
			log.Fatal("Failed to apply migrations: %v", err)
		}
	}

	var wrappedDB *dbmetrics.DB
	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
		log.Info("Database metrics collection started")
	} else {
		wrappedDB = dbmetrics.Wrap(db, nil)
	}
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Репозитории
	reservationRepository := reservationRepo.NewRepository(wrappedDB)
	idempotencyRepository := idempotencyRepo.NewRepository(wrappedDB)
	outboxRepository := outboxRepo.NewRepository(wrappedDB)
	catalogRepository := catalogRepo.NewRepository(wrappedDB)

	// Сервисы
	catalogSvc := catalogService.NewService(
		catalogRepository,
		log,
		time.Duration(cfg.Catalog.CacheTTL)*time.Second,
	)
	reservationsSvc := reservationsService.NewService(
		reservationRepository,
		outboxRepository,
		txMgr,
		metricsCollector,
		calendar.Location(),
		log,
	)

	// Use cases
	generator := availability.NewGenerator(calendar)

	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		generator,
		catalogSvc,
		reservationRepository,
		txMgr,
		metricsCollector,
		log,
	)
	getAvailableDaysUseCase := getAvailableDaysUC.NewUseCase(
		generator,
		catalogSvc,
		reservationRepository,
		txMgr,
		metricsCollector,
		cfg.Calendar.MaxRangeDays,
		log,
	)
	createReservationUseCase := createReservationUC.NewUseCase(
		generator,
		catalogSvc,
		reservationRepository,
		idempotencyRepository,
		outboxRepository,
		txMgr,
		metricsCollector,
		log,
	)
	rescheduleReservationUseCase := rescheduleReservationUC.NewUseCase(
		generator,
		catalogSvc,
		reservationRepository,
		outboxRepository,
		txMgr,
		metricsCollector,
		log,
	)

	// Handlers
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getAvailableDays := getAvailableDaysHandler.NewHandler(getAvailableDaysUseCase, log)
	createReservation := createReservationHandler.NewHandler(createReservationUseCase, log)
	rescheduleReservation := rescheduleReservationHandler.NewHandler(rescheduleReservationUseCase, log)
	getReservation := getReservationHandler.NewHandler(reservationsSvc, log)
	listReservations := listReservationsHandler.NewHandler(reservationsSvc, log)
	markReservation := markReservationHandler.NewHandler(reservationsSvc, log)
	getServices := getServicesHandler.NewHandler(catalogSvc, log)
	getProfessionals := getProfessionalsHandler.NewHandler(catalogSvc, log)
	health := healthHandler.NewHandler(wrappedDB, 2*time.Second, log)

	// Ограничение частоты на изменяющих эндпоинтах
	var rateLimit mux.MiddlewareFunc
	var redisClient *redis.Client
	if cfg.RateLimit.Enabled {
		window := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
		var limiter middleware.Limiter
		if cfg.RateLimit.RedisAddr != "" {
			redisClient = redis.NewClient(&redis.Options{
				Addr:     cfg.RateLimit.RedisAddr,
				Password: cfg.RateLimit.RedisPassword,
				DB:       cfg.RateLimit.RedisDB,
			})
			limiter = middleware.NewRedisLimiter(redisClient, cfg.RateLimit.Limit, window, "salon:rl")
			log.Info("Rate limiter: redis at %s, %d req per %s", cfg.RateLimit.RedisAddr, cfg.RateLimit.Limit, window)
		} else {
			limiter = middleware.NewLocalLimiter(cfg.RateLimit.Limit, window)
			log.Info("Rate limiter: in-process, %d req per %s", cfg.RateLimit.Limit, window)
		}
		trustedProxies, err := cfg.RateLimit.TrustedProxyPrefixes()
		if err != nil {
			log.Fatal("Invalid rate limit config: %v", err)
		}
		rateLimit = mux.MiddlewareFunc(middleware.RateLimit(
			limiter,
			middleware.ClientIP(trustedProxies),
			metricsCollector,
			log,
			cfg.RateLimit.FailOpen,
		))
	}

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, metricsCollector.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	r.HandleFunc("/healthz", health.Live).Methods(http.MethodGet)
	r.HandleFunc("/readyz", health.Ready).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	// --- Справочник ---
	api.HandleFunc("/services", getServices.Handle).Methods(http.MethodGet)
	api.HandleFunc("/professionals", getProfessionals.Handle).Methods(http.MethodGet)

	// --- Доступность ---
	api.HandleFunc("/slots", getAvailableSlots.HandleQuery).Methods(http.MethodGet)
	api.HandleFunc("/slots", getAvailableSlots.HandleBody).Methods(http.MethodPost)
	api.HandleFunc("/slots/days", getAvailableDays.Handle).Methods(http.MethodPost)

	// --- Брони: чтение ---
	api.HandleFunc("/reservations", listReservations.Handle).Methods(http.MethodGet)
	api.HandleFunc("/reservations/{reservationId}", getReservation.Handle).Methods(http.MethodGet)

	// --- Брони: изменения ---
	mutations := api.NewRoute().Subrouter()
	if rateLimit != nil {
		mutations.Use(rateLimit)
	}
	mutations.HandleFunc("/reservations", createReservation.Handle).Methods(http.MethodPost)
	mutations.HandleFunc("/reservations/{reservationId}/reschedule", rescheduleReservation.Handle).Methods(http.MethodPost)
	mutations.HandleFunc("/reservations/{reservationId}/cancel", markReservation.HandleCancel).Methods(http.MethodPost)
	mutations.HandleFunc("/reservations/{reservationId}/attended", markReservation.HandleAttended).Methods(http.MethodPost)
	mutations.HandleFunc("/reservations/{reservationId}/no-show", markReservation.HandleNoShow).Methods(http.MethodPost)

	handler := middleware.Chain(r,
		middleware.RequestID,
		middleware.Recover(log),
		middleware.AccessLog(log),
		middleware.BodyLimit(cfg.Server.MaxBodyBytes),
		middleware.Timeout(time.Duration(cfg.Server.RequestTimeout)*time.Second),
	)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      otelhttp.NewHandler(handler, "http.server"),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Публикация outbox в Kafka
	publisherDone := make(chan struct{})
	if cfg.Outbox.Enabled {
		publisher := events.NewPublisher(
			events.NewKafkaWriter(cfg.Outbox.Brokers),
			outboxRepository,
			txMgr,
			metricsCollector,
			log,
			events.Config{
				Brokers:      cfg.Outbox.Brokers,
				TopicPrefix:  cfg.Outbox.TopicPrefix,
				PollInterval: time.Duration(cfg.Outbox.PollIntervalSeconds) * time.Second,
				BatchSize:    cfg.Outbox.BatchSize,
			},
		)
		go func() {
			defer close(publisherDone)
			publisher.Run(ctx)
		}()
		log.Info("Outbox publisher started (brokers=%v)", cfg.Outbox.Brokers)
	} else {
		close(publisherDone)
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	<-publisherDone

	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close redis client: %v", err)
		}
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("Failed to flush traces: %v", err)
	}

	log.Info("Server stopped gracefully")
}
