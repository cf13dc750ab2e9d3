package get_available_days

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/m04kA/SMC-SalonBooking/internal/availability"
	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	"github.com/m04kA/SMC-SalonBooking/internal/service/catalog"
	"github.com/m04kA/SMC-SalonBooking/pkg/types"
)

var tracer = otel.Tracer("usecase/get_available_days")

// UseCase use case для поиска дней со свободными слотами
type UseCase struct {
	generator    *availability.Generator
	catalog      CatalogService
	repo         ReservationRepository
	txManager    TransactionManager
	metrics      Metrics
	maxRangeDays int
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
	maxRangeDays int,
	logger Logger,
) *UseCase {
	if maxRangeDays <= 0 {
		maxRangeDays = domain.DefaultMaxRangeDays
	}
	return &UseCase{
		generator:    generator,
		catalog:      catalog,
		repo:         repo,
		txManager:    txManager,
		metrics:      metrics,
		maxRangeDays: maxRangeDays,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case. Брони всего диапазона читаются одним запросом,
// дальше каждый день проверяется до первого свободного слота.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (resp *Response, err error) {
	ctx, span := tracer.Start(ctx, "GetAvailableDays")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	uc.logger.Info("GetAvailableDays: service=%s, range=%s..%s, professional=%v",
		req.ServiceID, req.StartDate, req.EndDate, req.ProfessionalID)

	// 1. Валидация входных данных
	if err := uc.validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableDays: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()
	cal := uc.generator.Calendar()

	// 3. Получаем услугу
	service, err := uc.catalog.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalog.ErrServiceNotFound) {
			uc.logger.Warn("GetAvailableDays: service id=%s not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("GetAvailableDays: failed to get service id=%s: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	// 4. Определяем мастеров
	professionalIDs, err := uc.resolveProfessionals(ctx, req.ServiceID, req.ProfessionalID)
	if err != nil {
		uc.logger.Warn("GetAvailableDays: %v", err)
		return nil, err
	}
	span.SetAttributes(
		attribute.String("service.id", req.ServiceID),
		attribute.Int("range.days", req.StartDate.DaysUntil(req.EndDate)+1),
	)

	resp = &Response{
		ServiceID:      req.ServiceID,
		ProfessionalID: req.ProfessionalID,
		AvailableDays:  []types.Date{},
	}
	if len(professionalIDs) == 0 {
		return resp, nil
	}

	// 5. Обрезаем диапазон по окну записи: дни вне окна недоступны без чтения броней
	start, end := req.StartDate, req.EndDate
	if today := cal.DateOf(now); start.Before(today) {
		start = today
	}
	if lastDay := cal.DateOf(now.Add(cal.MaxHorizon())); end.After(lastDay) {
		end = lastDay
	}
	if end.Before(start) {
		return resp, nil
	}

	// 6. Читаем активные брони диапазона
	from := cal.DayBounds(start).Start
	to := cal.DayBounds(end).End
	var reservations []domain.Reservation
	err = uc.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		var err error
		reservations, err = uc.repo.ListActive(txCtx, professionalIDs, from, to)
		return err
	})
	if err != nil {
		uc.logger.Error("GetAvailableDays: failed to list reservations: %v", err)
		return nil, fmt.Errorf("%w: failed to list reservations: %v", ErrInternal, err)
	}

	// 7. Агрегируем по дням
	resp.AvailableDays = uc.generator.AvailableDays(start, end, *service,
		availability.ByProfessional(professionalIDs, reservations), now)

	uc.metrics.AvailabilityQuery("days")
	uc.logger.Info("GetAvailableDays: %d available days for service=%s", len(resp.AvailableDays), req.ServiceID)
	return resp, nil
}

func (uc *UseCase) validateRequest(req *Request) error {
	if req.ServiceID == "" {
		return fmt.Errorf("%w: serviceId is required", ErrInvalidInput)
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		return fmt.Errorf("%w: startDate and endDate are required", ErrInvalidInput)
	}
	if req.ProfessionalID != nil && *req.ProfessionalID == "" {
		return fmt.Errorf("%w: professionalId must not be empty", ErrInvalidInput)
	}
	if req.EndDate.Before(req.StartDate) {
		return ErrInvalidRange
	}
	if days := req.StartDate.DaysUntil(req.EndDate); days > uc.maxRangeDays {
		return fmt.Errorf("%w: %d days, at most %d", ErrRangeTooLong, days, uc.maxRangeDays)
	}
	return nil
}

func (uc *UseCase) resolveProfessionals(ctx context.Context, serviceID string, professionalID *string) ([]string, error) {
	if professionalID != nil {
		p, err := uc.catalog.GetProfessional(ctx, *professionalID)
		if err != nil {
			if errors.Is(err, catalog.ErrProfessionalNotFound) {
				return nil, ErrProfessionalNotFound
			}
			return nil, fmt.Errorf("%w: failed to get professional: %v", ErrInternal, err)
		}
		if !p.Offers(serviceID) {
			return nil, ErrServiceNotOffered
		}
		return []string{p.ID}, nil
	}

	professionals, err := uc.catalog.ProfessionalsForService(ctx, serviceID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list professionals: %v", ErrInternal, err)
	}
	ids := make([]string, 0, len(professionals))
	for _, p := range professionals {
		ids = append(ids, p.ID)
	}
	return ids, nil
}
