package reservations

import (
	"fmt"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
)

var (
	// ErrReservationNotFound возвращается, когда бронь не найдена
	ErrReservationNotFound = fmt.Errorf("%w: reservation not found", domain.ErrNotFound)

	// ErrInvalidTransition возвращается, когда бронь уже в другом конечном статусе
	ErrInvalidTransition = fmt.Errorf("%w: reservation status cannot be changed", domain.ErrConflict)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("%w: reservations: invalid input data", domain.ErrValidation)

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = fmt.Errorf("%w: reservations: internal error", domain.ErrInfrastructure)
)
