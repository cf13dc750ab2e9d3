package reschedule_reservation

import (
	"time"

	"github.com/m04kA/SMC-SalonBooking/internal/service/reservations/models"
)

// Request модель запроса на перенос брони
type Request struct {
	ReservationID  string
	NewStart       time.Time
	ProfessionalID *string // nil - тот же мастер
}

// Response перенесенная бронь
type Response struct {
	Reservation *models.ReservationResponse
}
