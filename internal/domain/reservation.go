package domain

import "time"

// ReservationStatus статус брони
type ReservationStatus string

const (
	StatusConfirmed ReservationStatus = "confirmed"
	StatusAttended  ReservationStatus = "attended"
	StatusNoShow    ReservationStatus = "no_show"
	StatusCanceled  ReservationStatus = "canceled"
)

// ParseReservationStatus проверяет строку статуса
func ParseReservationStatus(s string) (ReservationStatus, bool) {
	switch st := ReservationStatus(s); st {
	case StatusConfirmed, StatusAttended, StatusNoShow, StatusCanceled:
		return st, true
	}
	return "", false
}

// OccupiesTime true для статусов, которые занимают время мастера (все, кроме отмененного)
func (s ReservationStatus) OccupiesTime() bool {
	return s == StatusConfirmed || s == StatusAttended || s == StatusNoShow
}

// IsTerminal attended, no_show и canceled конечные
func (s ReservationStatus) IsTerminal() bool {
	return s != StatusConfirmed
}

// CanTransitionTo допустимы только переходы confirmed -> {attended, no_show, canceled}
func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	if s != StatusConfirmed {
		return false
	}
	return next == StatusAttended || next == StatusNoShow || next == StatusCanceled
}

// Customer контактные данные клиента
type Customer struct {
	Name  string
	Phone string
	Email *string
}

// Reservation бронь. Инвариант: End = Start + длительность услуги.
type Reservation struct {
	ID             string
	ProfessionalID string
	ServiceID      string
	Start          time.Time
	End            time.Time
	Status         ReservationStatus
	Customer       Customer
	Notes          *string

	CanceledAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Interval занимаемый бронью интервал
func (r *Reservation) Interval() Interval {
	return Interval{Start: r.Start, End: r.End}
}

// IsActive true, если бронь блокирует слоты
func (r *Reservation) IsActive() bool {
	return r.Status.OccupiesTime()
}

// ReservationsFilter фильтр для выборки броней
type ReservationsFilter struct {
	ProfessionalIDs []string            // пусто - все мастера
	From            *time.Time          // брони, заканчивающиеся после From
	To              *time.Time          // брони, начинающиеся до To
	Statuses        []ReservationStatus // пусто - любые статусы
	Limit           uint64
	Offset          uint64
}
