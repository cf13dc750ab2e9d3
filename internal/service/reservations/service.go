package reservations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	reservationRepo "github.com/m04kA/SMC-SalonBooking/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-SalonBooking/internal/service/reservations/models"
)

// Service операции над существующими бронями: чтение, отмена и отметка визита
type Service struct {
	repo         ReservationRepository
	outbox       OutboxRepository
	txManager    TransactionManager
	metrics      Metrics
	location     *time.Location
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса броней
func NewService(
	repo ReservationRepository,
	outbox OutboxRepository,
	txManager TransactionManager,
	metrics Metrics,
	location *time.Location,
	logger Logger,
) *Service {
	return &Service{
		repo:         repo,
		outbox:       outbox,
		txManager:    txManager,
		metrics:      metrics,
		location:     location,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// GetByID получает бронь по ID
func (s *Service) GetByID(ctx context.Context, id string) (*models.ReservationResponse, error) {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			s.logger.Warn("GetByID: reservation id=%s not found", id)
			return nil, ErrReservationNotFound
		}
		s.logger.Error("GetByID: repository error for reservation id=%s: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainReservation(res, s.location), nil
}

// List агенда: брони, пересекающие [From, To), по возрастанию начала
func (s *Service) List(ctx context.Context, req *models.ListRequest) (*models.ReservationListResponse, error) {
	filter, err := s.toFilter(req)
	if err != nil {
		s.logger.Warn("List: invalid filter: %v", err)
		return nil, err
	}

	var list []domain.Reservation
	err = s.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		var err error
		list, err = s.repo.List(txCtx, filter)
		return err
	})
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("List: fetched %d reservations", len(list))
	return models.FromDomainReservationList(list, s.location), nil
}

// Cancel отменяет бронь. Повторная отмена возвращает бронь без изменений.
// Отменить уже состоявшийся визит или неявку нельзя.
func (s *Service) Cancel(ctx context.Context, id string) (*models.ReservationResponse, error) {
	return s.transition(ctx, "Cancel", id, domain.StatusCanceled, domain.EventReservationCanceled)
}

// MarkAttended отмечает, что клиент пришел
func (s *Service) MarkAttended(ctx context.Context, id string) (*models.ReservationResponse, error) {
	return s.transition(ctx, "MarkAttended", id, domain.StatusAttended, domain.EventReservationStatusChanged)
}

// MarkNoShow отмечает неявку клиента
func (s *Service) MarkNoShow(ctx context.Context, id string) (*models.ReservationResponse, error) {
	return s.transition(ctx, "MarkNoShow", id, domain.StatusNoShow, domain.EventReservationStatusChanged)
}

func (s *Service) transition(
	ctx context.Context,
	op string,
	id string,
	target domain.ReservationStatus,
	eventType domain.EventType,
) (*models.ReservationResponse, error) {
	s.logger.Info("%s: reservation id=%s -> %s", op, id, target)

	var (
		result  *domain.Reservation
		changed bool
	)

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		// 1. Блокируем строку брони
		current, err := s.repo.GetByIDForUpdate(txCtx, id)
		if err != nil {
			if errors.Is(err, reservationRepo.ErrReservationNotFound) {
				return ErrReservationNotFound
			}
			return fmt.Errorf("%w: %s - get reservation: %v", ErrInternal, op, err)
		}

		// 2. Уже в целевом статусе: ничего не делаем
		if current.Status == target {
			result = current
			return nil
		}
		if !current.Status.CanTransitionTo(target) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, target)
		}

		// 3. Меняем статус
		updated, err := s.repo.UpdateStatus(txCtx, id, target)
		if err != nil {
			if errors.Is(err, reservationRepo.ErrReservationNotFound) {
				return ErrReservationNotFound
			}
			return fmt.Errorf("%w: %s - update status: %v", ErrInternal, op, err)
		}

		// 4. Событие в outbox в той же транзакции
		event, err := domain.NewReservationEvent(eventType, updated, nil, s.timeProvider.Now())
		if err != nil {
			return fmt.Errorf("%w: %s - build event: %v", ErrInternal, op, err)
		}
		if err := s.outbox.Add(txCtx, event); err != nil {
			return fmt.Errorf("%w: %s - add outbox event: %v", ErrInternal, op, err)
		}

		result = updated
		changed = true
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrConflict):
			s.logger.Warn("%s: reservation id=%s: %v", op, id, err)
			return nil, err
		case errors.Is(err, ErrInternal):
			s.logger.Error("%s: reservation id=%s: %v", op, id, err)
			return nil, err
		}
		s.logger.Error("%s: transaction failed for reservation id=%s: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - transaction: %v", ErrInternal, op, err)
	}

	if changed {
		s.metrics.ReservationCommitted(string(target))
		s.logger.Info("%s: reservation id=%s is now %s", op, id, target)
	} else {
		s.logger.Info("%s: reservation id=%s already %s", op, id, target)
	}
	return models.FromDomainReservation(result, s.location), nil
}

func (s *Service) toFilter(req *models.ListRequest) (domain.ReservationsFilter, error) {
	filter := domain.ReservationsFilter{
		From:   req.From,
		To:     req.To,
		Limit:  req.Limit,
		Offset: req.Offset,
	}

	if req.ProfessionalID != nil && *req.ProfessionalID != "" {
		filter.ProfessionalIDs = []string{*req.ProfessionalID}
	}
	if req.From != nil && req.To != nil && !req.From.Before(*req.To) {
		return filter, fmt.Errorf("%w: from must be before to", ErrInvalidInput)
	}
	if req.Status != nil {
		status, ok := domain.ParseReservationStatus(*req.Status)
		if !ok {
			return filter, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *req.Status)
		}
		filter.Statuses = []domain.ReservationStatus{status}
	}

	switch {
	case filter.Limit == 0:
		filter.Limit = domain.DefaultListLimit
	case filter.Limit > domain.MaxListLimit:
		return filter, fmt.Errorf("%w: limit must be at most %d", ErrInvalidInput, domain.MaxListLimit)
	}

	return filter, nil
}
