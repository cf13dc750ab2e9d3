package get_available_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	"github.com/m04kA/SMC-SalonBooking/internal/service/catalog"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.ServiceID == "" {
		return fmt.Errorf("%w: serviceId is required", ErrInvalidInput)
	}
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if req.ProfessionalID != nil && *req.ProfessionalID == "" {
		return fmt.Errorf("%w: professionalId must not be empty", ErrInvalidInput)
	}
	return nil
}

// validateDate дата не раньше сегодняшней и не дальше горизонта записи
func validateDate(cal *domain.BusinessCalendar, req *Request, now time.Time) error {
	today := cal.DateOf(now)
	if req.Date.Before(today) {
		return fmt.Errorf("%w: %s is before %s", ErrDateInPast, req.Date, today)
	}
	lastDay := cal.DateOf(now.Add(cal.MaxHorizon()))
	if req.Date.After(lastDay) {
		return fmt.Errorf("%w: can only book until %s", ErrDateTooFarInFuture, lastDay)
	}
	return nil
}

// resolveProfessionals мастера, среди которых ищутся слоты
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
