package reschedule_reservation

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SalonBooking/internal/api/handlers"
	rescheduleReservation "github.com/m04kA/SMC-SalonBooking/internal/usecase/reschedule_reservation"
)

const (
	msgMissingReservationID = "ID брони обязателен"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidStart         = "некорректное время начала, ожидается RFC 3339 со смещением"
	msgNotFound             = "бронь не найдена"
	msgServiceNotFound      = "услуга брони больше недоступна"
	msgProfessionalNotFound = "мастер не найден"
	msgServiceNotOffered    = "мастер не оказывает эту услугу"
	msgNotReschedulable     = "перенести можно только подтвержденную бронь"
	msgSlotNotAvailable     = "выбранный временной слот недоступен"
	msgOutsideWindow        = "время начала вне окна записи"
	msgNotInSchedule        = "время начала не совпадает с расписанием салона"
	msgInvalidInput         = "некорректные данные переноса"
)

type Handler struct {
	useCase RescheduleReservationUseCase
	logger  Logger
}

func NewHandler(useCase RescheduleReservationUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/reservations/{reservationId}/reschedule
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	reservationID := mux.Vars(r)["reservationId"]
	if reservationID == "" {
		h.logger.Warn("POST /reservations/{id}/reschedule - Missing reservation ID")
		handlers.RespondBadRequest(w, msgMissingReservationID)
		return
	}

	var req RescheduleRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /reservations/{id}/reschedule - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(reservationID)
	if err != nil {
		h.logger.Warn("POST /reservations/{id}/reschedule - Invalid start: %v", err)
		handlers.RespondBadRequest(w, msgInvalidStart)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, rescheduleReservation.ErrSlotNotAvailable):
			h.logger.Warn("POST /reservations/{id}/reschedule - Slot not available: reservation_id=%s, start=%s",
				reservationID, req.NewStart)
			handlers.RespondConflict(w, msgSlotNotAvailable)

		case errors.Is(err, rescheduleReservation.ErrNotReschedulable):
			handlers.RespondConflict(w, msgNotReschedulable)

		case errors.Is(err, rescheduleReservation.ErrReservationNotFound):
			h.logger.Warn("POST /reservations/{id}/reschedule - Reservation not found: reservation_id=%s", reservationID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, rescheduleReservation.ErrServiceNotFound):
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, rescheduleReservation.ErrProfessionalNotFound):
			handlers.RespondNotFound(w, msgProfessionalNotFound)

		case errors.Is(err, rescheduleReservation.ErrServiceNotOffered):
			handlers.RespondBadRequest(w, msgServiceNotOffered)

		case errors.Is(err, rescheduleReservation.ErrOutsideBookingWindow):
			handlers.RespondBadRequest(w, msgOutsideWindow)

		case errors.Is(err, rescheduleReservation.ErrNotInSchedule):
			handlers.RespondBadRequest(w, msgNotInSchedule)

		case errors.Is(err, rescheduleReservation.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /reservations/{id}/reschedule - Failed to reschedule: reservation_id=%s, error=%v",
				reservationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /reservations/{id}/reschedule - Reservation moved: reservation_id=%s, start=%s",
		reservationID, result.Reservation.Start)
	handlers.RespondJSON(w, http.StatusOK, result.Reservation)
}
