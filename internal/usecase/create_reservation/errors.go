package create_reservation

import (
	"fmt"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
)

var (
	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = fmt.Errorf("%w: create_reservation: service not found", domain.ErrNotFound)

	// ErrProfessionalNotFound возвращается, когда мастер не найден
	ErrProfessionalNotFound = fmt.Errorf("%w: create_reservation: professional not found", domain.ErrNotFound)

	// ErrServiceNotOffered возвращается, когда мастер не оказывает услугу
	ErrServiceNotOffered = fmt.Errorf("%w: create_reservation: professional does not offer this service", domain.ErrValidation)

	// ErrOutsideBookingWindow возвращается, когда начало раньше минимального упреждения или за горизонтом
	ErrOutsideBookingWindow = fmt.Errorf("%w: create_reservation: start is outside the booking window", domain.ErrValidation)

	// ErrNotInSchedule возвращается, когда интервал не лежит в рабочем блоке или не стоит на сетке
	ErrNotInSchedule = fmt.Errorf("%w: create_reservation: start is not in the schedule", domain.ErrValidation)

	// ErrIdempotencyKeyReused возвращается, когда ключ уже использован с другим запросом
	ErrIdempotencyKeyReused = fmt.Errorf("%w: create_reservation: idempotency key reused with a different request", domain.ErrValidation)

	// ErrSlotNotAvailable возвращается, когда интервал уже занят
	ErrSlotNotAvailable = fmt.Errorf("%w: create_reservation: slot is not available", domain.ErrConflict)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("%w: create_reservation: invalid input data", domain.ErrValidation)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = fmt.Errorf("%w: create_reservation: internal error", domain.ErrInfrastructure)
)
