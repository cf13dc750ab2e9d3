package get_available_slots

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SalonBooking/internal/api/handlers"
	getAvailableSlots "github.com/m04kA/SMC-SalonBooking/internal/usecase/get_available_slots"
)

const (
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgMissingServiceID     = "ID услуги обязателен"
	msgMissingDate          = "дата обязательна"
	msgInvalidDate          = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgServiceNotFound      = "услуга не найдена"
	msgProfessionalNotFound = "мастер не найден"
	msgServiceNotOffered    = "мастер не оказывает эту услугу"
	msgDateInPast           = "дата в прошлом"
	msgDateTooFar           = "дата слишком далеко в будущем"
	msgInvalidInput         = "некорректные параметры запроса"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// HandleQuery GET /api/v1/slots
// Query params: serviceId (required), date (required, YYYY-MM-DD), professionalId (optional)
func (h *Handler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := SlotsRequest{
		ServiceID: q.Get("serviceId"),
		Date:      q.Get("date"),
	}
	if id := q.Get("professionalId"); id != "" {
		req.ProfessionalID = &id
	}

	h.handle(w, r, "GET /slots", &req)
}

// HandleBody POST /api/v1/slots
func (h *Handler) HandleBody(w http.ResponseWriter, r *http.Request) {
	var req SlotsRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /slots - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	h.handle(w, r, "POST /slots", &req)
}

func (h *Handler) handle(w http.ResponseWriter, r *http.Request, route string, req *SlotsRequest) {
	if req.ServiceID == "" {
		h.logger.Warn("%s - Missing service ID", route)
		handlers.RespondBadRequest(w, msgMissingServiceID)
		return
	}
	if req.Date == "" {
		h.logger.Warn("%s - Missing date", route)
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest()
	if err != nil {
		h.logger.Warn("%s - Invalid date format: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrServiceNotFound):
			h.logger.Warn("%s - Service not found: service_id=%s", route, req.ServiceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, getAvailableSlots.ErrProfessionalNotFound):
			h.logger.Warn("%s - Professional not found: professional_id=%v", route, req.ProfessionalID)
			handlers.RespondNotFound(w, msgProfessionalNotFound)

		case errors.Is(err, getAvailableSlots.ErrServiceNotOffered):
			handlers.RespondBadRequest(w, msgServiceNotOffered)

		case errors.Is(err, getAvailableSlots.ErrDateInPast):
			handlers.RespondBadRequest(w, msgDateInPast)

		case errors.Is(err, getAvailableSlots.ErrDateTooFarInFuture):
			handlers.RespondBadRequest(w, msgDateTooFar)

		case errors.Is(err, getAvailableSlots.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("%s - Failed to get slots: service_id=%s, date=%s, error=%v",
				route, req.ServiceID, req.Date, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("%s - Slots retrieved successfully: service_id=%s, date=%s, slots_count=%d",
		route, req.ServiceID, req.Date, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
