package reschedule_reservation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/m04kA/SMC-SalonBooking/internal/availability"
	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	reservationRepo "github.com/m04kA/SMC-SalonBooking/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-SalonBooking/internal/service/catalog"
	"github.com/m04kA/SMC-SalonBooking/internal/service/reservations/models"
)

const action = "rescheduled"

var tracer = otel.Tracer("usecase/reschedule_reservation")

// UseCase use case для переноса брони
type UseCase struct {
	generator    *availability.Generator
	catalog      CatalogService
	repo         ReservationRepository
	outbox       OutboxRepository
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
	outbox OutboxRepository,
	txManager TransactionManager,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		generator:    generator,
		catalog:      catalog,
		repo:         repo,
		outbox:       outbox,
		txManager:    txManager,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute переносит бронь одним UPDATE: старый интервал освобождается
// и новый занимается в одной транзакции. Сама бронь не мешает своему переносу.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (resp *Response, err error) {
	ctx, span := tracer.Start(ctx, "RescheduleReservation")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RescheduleReservation: validation failed: %v", err)
		return nil, err
	}
	uc.logger.Info("RescheduleReservation: reservation id=%s, newStart=%s, professional=%v",
		req.ReservationID, req.NewStart.Format(time.RFC3339), req.ProfessionalID)
	span.SetAttributes(attribute.String("reservation.id", req.ReservationID))

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()
	cal := uc.generator.Calendar()

	// 3. Целевой мастер, если меняется
	var target *domain.Professional
	if req.ProfessionalID != nil {
		target, err = uc.catalog.GetProfessional(ctx, *req.ProfessionalID)
		if err != nil {
			if errors.Is(err, catalog.ErrProfessionalNotFound) {
				uc.logger.Warn("RescheduleReservation: professional id=%s not found", *req.ProfessionalID)
				return nil, ErrProfessionalNotFound
			}
			uc.logger.Error("RescheduleReservation: failed to get professional: %v", err)
			return nil, fmt.Errorf("%w: failed to get professional: %v", ErrInternal, err)
		}
	}

	var result *domain.Reservation

	// 4. Все изменения в одной транзакции
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		// 4.1. Блокируем строку брони
		current, err := uc.repo.GetByIDForUpdate(txCtx, req.ReservationID)
		if err != nil {
			if errors.Is(err, reservationRepo.ErrReservationNotFound) {
				return ErrReservationNotFound
			}
			return fmt.Errorf("%w: get reservation: %v", ErrInternal, err)
		}

		// 4.2. Переносить можно только подтвержденную бронь
		if current.Status != domain.StatusConfirmed {
			return fmt.Errorf("%w: status is %s", ErrNotReschedulable, current.Status)
		}

		// 4.3. Услуга брони определяет длительность
		service, err := uc.catalog.GetService(txCtx, current.ServiceID)
		if err != nil {
			if errors.Is(err, catalog.ErrServiceNotFound) {
				return ErrServiceNotFound
			}
			return fmt.Errorf("%w: get service: %v", ErrInternal, err)
		}

		professionalID := current.ProfessionalID
		if target != nil {
			if !target.Offers(service.ID) {
				return ErrServiceNotOffered
			}
			professionalID = target.ID
		}

		// 4.4. Новый интервал в окне записи, в рабочем блоке и на сетке
		candidate := domain.IntervalOf(req.NewStart, service.Duration())
		if !cal.IsBookable(candidate.Start, now) {
			return ErrOutsideBookingWindow
		}
		if !cal.FitsSchedule(candidate) {
			return ErrNotInSchedule
		}

		// 4.5. Блокируем старого и нового мастера в фиксированном порядке
		if err := uc.repo.LockProfessionals(txCtx, current.ProfessionalID, professionalID); err != nil {
			return fmt.Errorf("%w: lock professionals: %v", ErrInternal, err)
		}

		// 4.6. Свежий снимок дня у целевого мастера, без самой переносимой брони
		day := cal.DayBounds(cal.DateOf(candidate.Start))
		active, err := uc.repo.ListActive(txCtx, []string{professionalID}, day.Start, day.End)
		if err != nil {
			return fmt.Errorf("%w: list reservations: %v", ErrInternal, err)
		}
		if !uc.generator.IsFree(candidate, active, current.ID) {
			uc.metrics.ReservationConflict(action, "precheck")
			return ErrSlotNotAvailable
		}

		// 4.7. Переносим
		moved, err := uc.repo.UpdateInterval(txCtx, current.ID, professionalID, candidate.Start, candidate.End)
		if err != nil {
			switch {
			case errors.Is(err, reservationRepo.ErrOverlap):
				uc.metrics.ReservationConflict(action, "store")
				return ErrSlotNotAvailable
			case errors.Is(err, reservationRepo.ErrReservationNotFound):
				return ErrReservationNotFound
			}
			return fmt.Errorf("%w: update interval: %v", ErrInternal, err)
		}

		// 4.8. Событие в outbox
		event, err := domain.NewReservationEvent(domain.EventReservationRescheduled, moved, current, now)
		if err != nil {
			return fmt.Errorf("%w: build event: %v", ErrInternal, err)
		}
		if err := uc.outbox.Add(txCtx, event); err != nil {
			return fmt.Errorf("%w: add outbox event: %v", ErrInternal, err)
		}

		result = moved
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInternal):
			uc.logger.Error("RescheduleReservation: %v", err)
			return nil, err
		case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrValidation):
			uc.logger.Warn("RescheduleReservation: reservation id=%s: %v", req.ReservationID, err)
			return nil, err
		}
		uc.logger.Error("RescheduleReservation: transaction failed: %v", err)
		return nil, fmt.Errorf("%w: transaction: %v", ErrInternal, err)
	}

	uc.metrics.ReservationCommitted(action)
	uc.logger.Info("RescheduleReservation: reservation id=%s moved to %s, professional=%s",
		result.ID, result.Start.Format(time.RFC3339), result.ProfessionalID)

	return &Response{Reservation: models.FromDomainReservation(result, cal.Location())}, nil
}

func validateRequest(req *Request) error {
	req.ReservationID = strings.TrimSpace(req.ReservationID)
	if req.ReservationID == "" {
		return fmt.Errorf("%w: reservation id is required", ErrInvalidInput)
	}
	if req.NewStart.IsZero() {
		return fmt.Errorf("%w: newStart is required", ErrInvalidInput)
	}
	if req.ProfessionalID != nil && strings.TrimSpace(*req.ProfessionalID) == "" {
		return fmt.Errorf("%w: professionalId must not be empty", ErrInvalidInput)
	}
	return nil
}
