package mark_reservation

import (
	"context"

	"github.com/m04kA/SMC-SalonBooking/internal/service/reservations/models"
)

type ReservationService interface {
	Cancel(ctx context.Context, id string) (*models.ReservationResponse, error)
	MarkAttended(ctx context.Context, id string) (*models.ReservationResponse, error)
	MarkNoShow(ctx context.Context, id string) (*models.ReservationResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
