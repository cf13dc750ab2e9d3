package get_available_days

import (
	"fmt"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
)

var (
	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = fmt.Errorf("%w: get_available_days: service not found", domain.ErrNotFound)

	// ErrProfessionalNotFound возвращается, когда мастер не найден
	ErrProfessionalNotFound = fmt.Errorf("%w: get_available_days: professional not found", domain.ErrNotFound)

	// ErrServiceNotOffered возвращается, когда мастер не оказывает услугу
	ErrServiceNotOffered = fmt.Errorf("%w: get_available_days: professional does not offer this service", domain.ErrValidation)

	// ErrInvalidRange возвращается, когда конец диапазона раньше начала
	ErrInvalidRange = fmt.Errorf("%w: get_available_days: endDate is before startDate", domain.ErrValidation)

	// ErrRangeTooLong возвращается, когда диапазон длиннее допустимого
	ErrRangeTooLong = fmt.Errorf("%w: get_available_days: date range is too long", domain.ErrValidation)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("%w: get_available_days: invalid input data", domain.ErrValidation)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = fmt.Errorf("%w: get_available_days: internal error", domain.ErrInfrastructure)
)
