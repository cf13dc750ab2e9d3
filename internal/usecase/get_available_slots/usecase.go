package get_available_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/m04kA/SMC-SalonBooking/internal/availability"
	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	"github.com/m04kA/SMC-SalonBooking/internal/service/catalog"
)

var tracer = otel.Tracer("usecase/get_available_slots")

// UseCase use case для получения доступных слотов на дату
type UseCase struct {
	generator    *availability.Generator
	catalog      CatalogService
	repo         ReservationRepository
	txManager    TransactionManager
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	generator *availability.Generator,
	catalog CatalogService,
	repo ReservationRepository,
	txManager TransactionManager,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		generator:    generator,
		catalog:      catalog,
		repo:         repo,
		txManager:    txManager,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case получения доступных слотов.
// Брони читаются заново на каждый запрос, без кэширования.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (resp *Response, err error) {
	ctx, span := tracer.Start(ctx, "GetAvailableSlots")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	uc.logger.Info("GetAvailableSlots: service=%s, date=%s, professional=%v", req.ServiceID, req.Date, req.ProfessionalID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()
	cal := uc.generator.Calendar()

	// 3. Дата должна попадать в окно записи
	if err := validateDate(cal, req, now); err != nil {
		uc.logger.Warn("GetAvailableSlots: date validation failed: %v", err)
		return nil, err
	}

	// 4. Получаем услугу
	service, err := uc.catalog.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalog.ErrServiceNotFound) {
			uc.logger.Warn("GetAvailableSlots: service id=%s not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get service id=%s: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	// 5. Определяем мастеров
	professionalIDs, err := uc.resolveProfessionals(ctx, req.ServiceID, req.ProfessionalID)
	if err != nil {
		uc.logger.Warn("GetAvailableSlots: %v", err)
		return nil, err
	}
	span.SetAttributes(
		attribute.String("service.id", req.ServiceID),
		attribute.String("date", req.Date.String()),
		attribute.Int("professionals", len(professionalIDs)),
	)

	resp = &Response{
		Date:            req.Date,
		ServiceID:       req.ServiceID,
		ProfessionalID:  req.ProfessionalID,
		DurationMinutes: service.DurationMinutes,
		Slots:           []time.Time{},
	}
	if len(professionalIDs) == 0 {
		uc.logger.Info("GetAvailableSlots: nobody offers service=%s", req.ServiceID)
		return resp, nil
	}

	// 6. Читаем активные брони дня
	day := cal.DayBounds(req.Date)
	var reservations []domain.Reservation
	err = uc.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		var err error
		reservations, err = uc.repo.ListActive(txCtx, professionalIDs, day.Start, day.End)
		return err
	})
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to list reservations: %v", err)
		return nil, fmt.Errorf("%w: failed to list reservations: %v", ErrInternal, err)
	}

	// 7. Генерируем слоты
	var slots []domain.SlotCandidate
	if len(professionalIDs) == 1 {
		slots = uc.generator.Slots(req.Date, *service, reservations, now)
	} else {
		slots = uc.generator.SlotsForAny(req.Date, *service, availability.ByProfessional(professionalIDs, reservations), now)
	}
	for _, s := range slots {
		resp.Slots = append(resp.Slots, s.Start.In(cal.Location()))
	}

	uc.metrics.AvailabilityQuery("slots")
	uc.logger.Info("GetAvailableSlots: %d slots for service=%s, date=%s", len(resp.Slots), req.ServiceID, req.Date)
	return resp, nil
}
