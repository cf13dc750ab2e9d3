package create_reservation

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SalonBooking/internal/api/handlers"
	createReservation "github.com/m04kA/SMC-SalonBooking/internal/usecase/create_reservation"
)

// IdempotencyKeyHeader заголовок для безопасного повтора создания брони
const IdempotencyKeyHeader = "Idempotency-Key"

const (
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidStart         = "некорректное время начала, ожидается RFC 3339 со смещением"
	msgSlotNotAvailable     = "выбранный временной слот недоступен"
	msgServiceNotFound      = "услуга не найдена"
	msgProfessionalNotFound = "мастер не найден"
	msgServiceNotOffered    = "мастер не оказывает эту услугу"
	msgOutsideWindow        = "время начала вне окна записи"
	msgNotInSchedule        = "время начала не совпадает с расписанием салона"
	msgKeyReused            = "ключ идемпотентности уже использован с другим запросом"
	msgInvalidInput         = "некорректные данные брони"
)

type Handler struct {
	useCase CreateReservationUseCase
	logger  Logger
}

func NewHandler(useCase CreateReservationUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/reservations
// Header Idempotency-Key (опционально): повтор с тем же ключом и телом вернет исходную бронь
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateReservationRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /reservations - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(r.Header.Get(IdempotencyKeyHeader))
	if err != nil {
		h.logger.Warn("POST /reservations - Invalid start: %v", err)
		handlers.RespondBadRequest(w, msgInvalidStart)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createReservation.ErrSlotNotAvailable):
			h.logger.Warn("POST /reservations - Slot not available: professional_id=%s, start=%s",
				req.ProfessionalID, req.Start)
			handlers.RespondConflict(w, msgSlotNotAvailable)

		case errors.Is(err, createReservation.ErrServiceNotFound):
			h.logger.Warn("POST /reservations - Service not found: service_id=%s", req.ServiceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, createReservation.ErrProfessionalNotFound):
			h.logger.Warn("POST /reservations - Professional not found: professional_id=%s", req.ProfessionalID)
			handlers.RespondNotFound(w, msgProfessionalNotFound)

		case errors.Is(err, createReservation.ErrServiceNotOffered):
			handlers.RespondBadRequest(w, msgServiceNotOffered)

		case errors.Is(err, createReservation.ErrOutsideBookingWindow):
			handlers.RespondBadRequest(w, msgOutsideWindow)

		case errors.Is(err, createReservation.ErrNotInSchedule):
			handlers.RespondBadRequest(w, msgNotInSchedule)

		case errors.Is(err, createReservation.ErrIdempotencyKeyReused):
			h.logger.Warn("POST /reservations - Idempotency key reused: key=%s", r.Header.Get(IdempotencyKeyHeader))
			handlers.RespondUnprocessable(w, msgKeyReused)

		case errors.Is(err, createReservation.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /reservations - Failed to create reservation: professional_id=%s, start=%s, error=%v",
				req.ProfessionalID, req.Start, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	if result.Replayed {
		h.logger.Info("POST /reservations - Replayed reservation: reservation_id=%s", result.Reservation.ID)
		handlers.RespondJSON(w, http.StatusOK, result.Reservation)
		return
	}

	h.logger.Info("POST /reservations - Reservation created successfully: reservation_id=%s, professional_id=%s",
		result.Reservation.ID, result.Reservation.ProfessionalID)
	handlers.RespondJSON(w, http.StatusCreated, result.Reservation)
}
