package mark_reservation

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SalonBooking/internal/api/handlers"
	"github.com/m04kA/SMC-SalonBooking/internal/service/reservations"
	"github.com/m04kA/SMC-SalonBooking/internal/service/reservations/models"
)

const (
	msgMissingReservationID = "ID брони обязателен"
	msgNotFound             = "бронь не найдена"
	msgInvalidTransition    = "статус брони не может быть изменен"
)

type transition func(ctx context.Context, id string) (*models.ReservationResponse, error)

// Handler смена статуса брони: отмена, визит, неявка.
// Повтор с тем же целевым статусом возвращает 200 без изменений.
type Handler struct {
	service ReservationService
	logger  Logger
}

func NewHandler(service ReservationService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// HandleCancel POST /api/v1/reservations/{reservationId}/cancel
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "POST /reservations/{id}/cancel", h.service.Cancel)
}

// HandleAttended POST /api/v1/reservations/{reservationId}/attended
func (h *Handler) HandleAttended(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "POST /reservations/{id}/attended", h.service.MarkAttended)
}

// HandleNoShow POST /api/v1/reservations/{reservationId}/no-show
func (h *Handler) HandleNoShow(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "POST /reservations/{id}/no-show", h.service.MarkNoShow)
}

func (h *Handler) handle(w http.ResponseWriter, r *http.Request, route string, apply transition) {
	reservationID := mux.Vars(r)["reservationId"]
	if reservationID == "" {
		h.logger.Warn("%s - Missing reservation ID", route)
		handlers.RespondBadRequest(w, msgMissingReservationID)
		return
	}

	result, err := apply(r.Context(), reservationID)
	if err != nil {
		switch {
		case errors.Is(err, reservations.ErrReservationNotFound):
			h.logger.Warn("%s - Reservation not found: reservation_id=%s", route, reservationID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, reservations.ErrInvalidTransition):
			h.logger.Warn("%s - Invalid transition: reservation_id=%s, error=%v", route, reservationID, err)
			handlers.RespondConflict(w, msgInvalidTransition)

		default:
			h.logger.Error("%s - Failed to change status: reservation_id=%s, error=%v", route, reservationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("%s - Status changed: reservation_id=%s, status=%s", route, reservationID, result.Status)
	handlers.RespondJSON(w, http.StatusOK, result)
}
