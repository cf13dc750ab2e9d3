package models

import (
	"time"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
)

// CustomerResponse контакты клиента
type CustomerResponse struct {
	Name  string  `json:"name"`
	Phone string  `json:"phone"`
	Email *string `json:"email,omitempty"`
}

// ReservationResponse бронь в ответе API. Моменты времени в RFC 3339 в поясе салона.
type ReservationResponse struct {
	ID             string           `json:"id"`
	ProfessionalID string           `json:"professionalId"`
	ServiceID      string           `json:"serviceId"`
	Start          string           `json:"start"`
	End            string           `json:"end"`
	Status         string           `json:"status"`
	Customer       CustomerResponse `json:"customer"`
	Notes          *string          `json:"notes,omitempty"`
	CanceledAt     *string          `json:"canceledAt,omitempty"`
	CreatedAt      string           `json:"createdAt"`
	UpdatedAt      string           `json:"updatedAt"`
}

// ReservationListResponse список броней
type ReservationListResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
	Total        int                   `json:"total"`
}

// ListRequest фильтр агенды
type ListRequest struct {
	ProfessionalID *string
	From           *time.Time
	To             *time.Time
	Status         *string
	Limit          uint64
	Offset         uint64
}

// FromDomainReservation конвертирует бронь в ответ
func FromDomainReservation(r *domain.Reservation, loc *time.Location) *ReservationResponse {
	resp := &ReservationResponse{
		ID:             r.ID,
		ProfessionalID: r.ProfessionalID,
		ServiceID:      r.ServiceID,
		Start:          formatInstant(r.Start, loc),
		End:            formatInstant(r.End, loc),
		Status:         string(r.Status),
		Customer: CustomerResponse{
			Name:  r.Customer.Name,
			Phone: r.Customer.Phone,
			Email: r.Customer.Email,
		},
		Notes:     r.Notes,
		CreatedAt: formatInstant(r.CreatedAt, loc),
		UpdatedAt: formatInstant(r.UpdatedAt, loc),
	}
	if r.CanceledAt != nil {
		canceledAt := formatInstant(*r.CanceledAt, loc)
		resp.CanceledAt = &canceledAt
	}
	return resp
}

// FromDomainReservationList конвертирует список броней
func FromDomainReservationList(list []domain.Reservation, loc *time.Location) *ReservationListResponse {
	resp := &ReservationListResponse{
		Reservations: make([]ReservationResponse, 0, len(list)),
		Total:        len(list),
	}
	for i := range list {
		resp.Reservations = append(resp.Reservations, *FromDomainReservation(&list[i], loc))
	}
	return resp
}

func formatInstant(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(time.RFC3339)
}
