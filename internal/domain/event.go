package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType тип доменного события, он же топик в брокере
type EventType string

const (
	EventReservationCreated       EventType = "reservation.created"
	EventReservationRescheduled   EventType = "reservation.rescheduled"
	EventReservationCanceled      EventType = "reservation.canceled"
	EventReservationStatusChanged EventType = "reservation.status_changed"
)

// OutboxEvent событие, записываемое в outbox в той же транзакции, что и изменение брони
type OutboxEvent struct {
	ID          string
	Type        EventType
	AggregateID string
	Payload     []byte
	OccurredAt  time.Time
}

type reservationPayload struct {
	ReservationID  string            `json:"reservationId"`
	ProfessionalID string            `json:"professionalId"`
	ServiceID      string            `json:"serviceId"`
	Start          time.Time         `json:"start"`
	End            time.Time         `json:"end"`
	Status         ReservationStatus `json:"status"`
	PreviousStart  *time.Time        `json:"previousStart,omitempty"`
}

// NewReservationEvent собирает событие по текущему состоянию брони.
// previous передается только для переноса.
func NewReservationEvent(eventType EventType, r *Reservation, previous *Reservation, at time.Time) (OutboxEvent, error) {
	payload := reservationPayload{
		ReservationID:  r.ID,
		ProfessionalID: r.ProfessionalID,
		ServiceID:      r.ServiceID,
		Start:          r.Start,
		End:            r.End,
		Status:         r.Status,
	}
	if previous != nil {
		prevStart := previous.Start
		payload.PreviousStart = &prevStart
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return OutboxEvent{}, fmt.Errorf("domain: marshal %s payload: %w", eventType, err)
	}

	return OutboxEvent{
		ID:          uuid.NewString(),
		Type:        eventType,
		AggregateID: r.ID,
		Payload:     data,
		OccurredAt:  at,
	}, nil
}
