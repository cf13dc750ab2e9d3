package create_reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/m04kA/SMC-SalonBooking/internal/availability"
	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	reservationRepo "github.com/m04kA/SMC-SalonBooking/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-SalonBooking/internal/service/catalog"
	"github.com/m04kA/SMC-SalonBooking/internal/service/reservations/models"
)

const action = "created"

var tracer = otel.Tracer("usecase/create_reservation")

// UseCase use case для создания брони
type UseCase struct {
	generator    *availability.Generator
	catalog      CatalogService
	repo         ReservationRepository
	idempotency  IdempotencyRepository
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
	idempotency IdempotencyRepository,
	outbox OutboxRepository,
	txManager TransactionManager,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		generator:    generator,
		catalog:      catalog,
		repo:         repo,
		idempotency:  idempotency,
		outbox:       outbox,
		txManager:    txManager,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case создания брони.
// Свободность интервала перепроверяется в транзакции под блокировкой мастера;
// окончательное решение принимает ограничение reservations_no_overlap в БД.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (resp *Response, err error) {
	ctx, span := tracer.Start(ctx, "CreateReservation")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateReservation: validation failed: %v", err)
		return nil, err
	}

	uc.logger.Info("CreateReservation: service=%s, professional=%s, start=%s",
		req.ServiceID, req.ProfessionalID, req.Start.Format(time.RFC3339))
	span.SetAttributes(
		attribute.String("service.id", req.ServiceID),
		attribute.String("professional.id", req.ProfessionalID),
	)

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()
	cal := uc.generator.Calendar()

	var (
		result       *domain.Reservation
		replayed     bool
		professional *domain.Professional
		candidate    domain.Interval
	)

	// 3. Все изменения в одной транзакции
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		// 3.1. Ключ идемпотентности проверяется первым: повтор возвращает исходную бронь,
		// даже если окно записи или справочник с тех пор изменились
		if req.IdempotencyKey != nil {
			hash := requestHash(req)
			rec, err := uc.idempotency.Lock(txCtx, *req.IdempotencyKey, hash)
			if err != nil {
				return fmt.Errorf("%w: lock idempotency key: %v", ErrInternal, err)
			}
			if rec.RequestHash != hash {
				return ErrIdempotencyKeyReused
			}
			if rec.ReservationID != nil {
				existing, err := uc.repo.GetByID(txCtx, *rec.ReservationID)
				if err != nil {
					return fmt.Errorf("%w: load replayed reservation: %v", ErrInternal, err)
				}
				result, replayed = existing, true
				return nil
			}
		}

		// 3.2. Получаем услугу
		service, err := uc.catalog.GetService(txCtx, req.ServiceID)
		if err != nil {
			if errors.Is(err, catalog.ErrServiceNotFound) {
				uc.logger.Warn("CreateReservation: service id=%s not found", req.ServiceID)
				return ErrServiceNotFound
			}
			return fmt.Errorf("%w: failed to get service id=%s: %v", ErrInternal, req.ServiceID, err)
		}

		// 3.3. Получаем мастера и проверяем, что он оказывает услугу
		professional, err = uc.catalog.GetProfessional(txCtx, req.ProfessionalID)
		if err != nil {
			if errors.Is(err, catalog.ErrProfessionalNotFound) {
				uc.logger.Warn("CreateReservation: professional id=%s not found", req.ProfessionalID)
				return ErrProfessionalNotFound
			}
			return fmt.Errorf("%w: failed to get professional id=%s: %v", ErrInternal, req.ProfessionalID, err)
		}
		if !professional.Offers(service.ID) {
			uc.logger.Warn("CreateReservation: professional id=%s does not offer service=%s", professional.ID, service.ID)
			return ErrServiceNotOffered
		}

		// 3.4. Интервал должен попадать в окно записи, в рабочий блок и на сетку
		candidate = domain.IntervalOf(req.Start, service.Duration())
		if !cal.IsBookable(candidate.Start, now) {
			uc.logger.Warn("CreateReservation: start=%s is outside the booking window", candidate.Start)
			return ErrOutsideBookingWindow
		}
		if !cal.FitsSchedule(candidate) {
			uc.logger.Warn("CreateReservation: interval %s-%s is not in the schedule", candidate.Start, candidate.End)
			return ErrNotInSchedule
		}

		// 3.5. Сериализуем изменения по мастеру
		if err := uc.repo.LockProfessionals(txCtx, professional.ID); err != nil {
			return fmt.Errorf("%w: lock professional: %v", ErrInternal, err)
		}

		// 3.6. Свежий снимок активных броней дня
		day := cal.DayBounds(cal.DateOf(candidate.Start))
		active, err := uc.repo.ListActive(txCtx, []string{professional.ID}, day.Start, day.End)
		if err != nil {
			return fmt.Errorf("%w: list reservations: %v", ErrInternal, err)
		}

		// 3.7. Быстрая проверка: интервал все еще свободен
		if !uc.generator.IsFree(candidate, active, "") {
			uc.metrics.ReservationConflict(action, "precheck")
			return ErrSlotNotAvailable
		}

		// 3.8. Вставка; пересечение ловит ограничение в БД
		created, err := uc.repo.Create(txCtx, &domain.Reservation{
			ID:             uuid.NewString(),
			ProfessionalID: professional.ID,
			ServiceID:      service.ID,
			Start:          candidate.Start,
			End:            candidate.End,
			Status:         domain.StatusConfirmed,
			Customer:       req.Customer,
			Notes:          req.Notes,
		})
		if err != nil {
			if errors.Is(err, reservationRepo.ErrOverlap) {
				uc.metrics.ReservationConflict(action, "store")
				return ErrSlotNotAvailable
			}
			return fmt.Errorf("%w: insert reservation: %v", ErrInternal, err)
		}

		// 3.9. Событие в outbox
		event, err := domain.NewReservationEvent(domain.EventReservationCreated, created, nil, now)
		if err != nil {
			return fmt.Errorf("%w: build event: %v", ErrInternal, err)
		}
		if err := uc.outbox.Add(txCtx, event); err != nil {
			return fmt.Errorf("%w: add outbox event: %v", ErrInternal, err)
		}

		// 3.10. Привязываем бронь к ключу
		if req.IdempotencyKey != nil {
			if err := uc.idempotency.Finalize(txCtx, *req.IdempotencyKey, created.ID); err != nil {
				return fmt.Errorf("%w: finalize idempotency key: %v", ErrInternal, err)
			}
		}

		result = created
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrSlotNotAvailable):
			uc.logger.Warn("CreateReservation: slot %s is taken for professional=%s", candidate.Start, professional.ID)
			return nil, err
		case errors.Is(err, ErrIdempotencyKeyReused):
			uc.logger.Warn("CreateReservation: idempotency key %q reused with another payload", *req.IdempotencyKey)
			return nil, err
		case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrValidation):
			return nil, err
		case errors.Is(err, ErrInternal):
			uc.logger.Error("CreateReservation: %v", err)
			return nil, err
		}
		uc.logger.Error("CreateReservation: transaction failed: %v", err)
		return nil, fmt.Errorf("%w: transaction: %v", ErrInternal, err)
	}

	if replayed {
		uc.metrics.IdempotentReplay()
		uc.logger.Info("CreateReservation: replayed reservation id=%s for key %q", result.ID, *req.IdempotencyKey)
	} else {
		uc.metrics.ReservationCommitted(action)
		uc.logger.Info("CreateReservation: created reservation id=%s", result.ID)
	}
	span.SetAttributes(attribute.String("reservation.id", result.ID), attribute.Bool("replayed", replayed))

	return &Response{
		Reservation: models.FromDomainReservation(result, cal.Location()),
		Replayed:    replayed,
	}, nil
}
