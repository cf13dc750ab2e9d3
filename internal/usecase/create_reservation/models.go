package create_reservation

import (
	"time"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	"github.com/m04kA/SMC-SalonBooking/internal/service/reservations/models"
)

// Request модель запроса на создание брони
type Request struct {
	ServiceID      string
	ProfessionalID string
	Start          time.Time
	Customer       domain.Customer
	Notes          *string
	IdempotencyKey *string // заголовок Idempotency-Key, опционально
}

// Response созданная бронь. Replayed: ответ на повтор запроса с тем же ключом.
type Response struct {
	Reservation *models.ReservationResponse
	Replayed    bool
}
