package create_reservation

import (
	"time"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	createReservation "github.com/m04kA/SMC-SalonBooking/internal/usecase/create_reservation"
)

// CustomerRequest контакты клиента
type CustomerRequest struct {
	Name  string  `json:"name"`
	Phone string  `json:"phone"`
	Email *string `json:"email,omitempty"`
}

// CreateReservationRequest HTTP request model
type CreateReservationRequest struct {
	ServiceID      string          `json:"serviceId"`
	ProfessionalID string          `json:"professionalId"`
	Start          string          `json:"start"` // RFC 3339 со смещением, "2025-03-03T09:45:00+01:00"
	Customer       CustomerRequest `json:"customer"`
	Notes          *string         `json:"notes,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateReservationRequest) ToUseCaseRequest(idempotencyKey string) (*createReservation.Request, error) {
	start, err := time.Parse(time.RFC3339, r.Start)
	if err != nil {
		return nil, err
	}

	req := &createReservation.Request{
		ServiceID:      r.ServiceID,
		ProfessionalID: r.ProfessionalID,
		Start:          start,
		Customer: domain.Customer{
			Name:  r.Customer.Name,
			Phone: r.Customer.Phone,
			Email: r.Customer.Email,
		},
		Notes: r.Notes,
	}
	if idempotencyKey != "" {
		req.IdempotencyKey = &idempotencyKey
	}
	return req, nil
}
