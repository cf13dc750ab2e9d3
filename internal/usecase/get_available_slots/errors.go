package get_available_slots

import (
	"fmt"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
)

var (
	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = fmt.Errorf("%w: get_available_slots: service not found", domain.ErrNotFound)

	// ErrProfessionalNotFound возвращается, когда мастер не найден
	ErrProfessionalNotFound = fmt.Errorf("%w: get_available_slots: professional not found", domain.ErrNotFound)

	// ErrServiceNotOffered возвращается, когда мастер не оказывает услугу
	ErrServiceNotOffered = fmt.Errorf("%w: get_available_slots: professional does not offer this service", domain.ErrValidation)

	// ErrDateInPast возвращается, когда дата раньше сегодняшней
	ErrDateInPast = fmt.Errorf("%w: get_available_slots: date is in the past", domain.ErrValidation)

	// ErrDateTooFarInFuture возвращается, когда дата за горизонтом записи
	ErrDateTooFarInFuture = fmt.Errorf("%w: get_available_slots: date is too far in the future", domain.ErrValidation)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("%w: get_available_slots: invalid input data", domain.ErrValidation)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = fmt.Errorf("%w: get_available_slots: internal error", domain.ErrInfrastructure)
)
