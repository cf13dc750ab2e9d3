package reschedule_reservation

import (
	"time"

	rescheduleReservation "github.com/m04kA/SMC-SalonBooking/internal/usecase/reschedule_reservation"
)

// RescheduleRequest HTTP request model
type RescheduleRequest struct {
	NewStart       string  `json:"newStart"` // RFC 3339 со смещением
	ProfessionalID *string `json:"professionalId,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *RescheduleRequest) ToUseCaseRequest(reservationID string) (*rescheduleReservation.Request, error) {
	start, err := time.Parse(time.RFC3339, r.NewStart)
	if err != nil {
		return nil, err
	}

	return &rescheduleReservation.Request{
		ReservationID:  reservationID,
		NewStart:       start,
		ProfessionalID: r.ProfessionalID,
	}, nil
}
