package reschedule_reservation

import (
	"fmt"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
)

var (
	// ErrReservationNotFound возвращается, когда бронь не найдена
	ErrReservationNotFound = fmt.Errorf("%w: reschedule_reservation: reservation not found", domain.ErrNotFound)

	// ErrServiceNotFound возвращается, когда услуга брони больше не доступна
	ErrServiceNotFound = fmt.Errorf("%w: reschedule_reservation: service not found", domain.ErrNotFound)

	// ErrProfessionalNotFound возвращается, когда целевой мастер не найден
	ErrProfessionalNotFound = fmt.Errorf("%w: reschedule_reservation: professional not found", domain.ErrNotFound)

	// ErrServiceNotOffered возвращается, когда целевой мастер не оказывает услугу брони
	ErrServiceNotOffered = fmt.Errorf("%w: reschedule_reservation: professional does not offer this service", domain.ErrValidation)

	// ErrNotReschedulable возвращается, когда бронь не в статусе confirmed
	ErrNotReschedulable = fmt.Errorf("%w: reschedule_reservation: only confirmed reservations can be moved", domain.ErrConflict)

	// ErrOutsideBookingWindow возвращается, когда новое начало вне окна записи
	ErrOutsideBookingWindow = fmt.Errorf("%w: reschedule_reservation: start is outside the booking window", domain.ErrValidation)

	// ErrNotInSchedule возвращается, когда новый интервал не лежит в рабочем блоке или не стоит на сетке
	ErrNotInSchedule = fmt.Errorf("%w: reschedule_reservation: start is not in the schedule", domain.ErrValidation)

	// ErrSlotNotAvailable возвращается, когда новый интервал уже занят
	ErrSlotNotAvailable = fmt.Errorf("%w: reschedule_reservation: slot is not available", domain.ErrConflict)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("%w: reschedule_reservation: invalid input data", domain.ErrValidation)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = fmt.Errorf("%w: reschedule_reservation: internal error", domain.ErrInfrastructure)
)
