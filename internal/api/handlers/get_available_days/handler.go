package get_available_days

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SalonBooking/internal/api/handlers"
	getAvailableDays "github.com/m04kA/SMC-SalonBooking/internal/usecase/get_available_days"
)

const (
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgMissingServiceID     = "ID услуги обязателен"
	msgInvalidDate          = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgServiceNotFound      = "услуга не найдена"
	msgProfessionalNotFound = "мастер не найден"
	msgServiceNotOffered    = "мастер не оказывает эту услугу"
	msgInvalidRange         = "дата окончания раньше даты начала"
	msgRangeTooLong         = "слишком длинный диапазон дат"
	msgInvalidInput         = "некорректные параметры запроса"
)

type Handler struct {
	useCase GetAvailableDaysUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableDaysUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/slots/days
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req DaysRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /slots/days - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	if req.ServiceID == "" {
		h.logger.Warn("POST /slots/days - Missing service ID")
		handlers.RespondBadRequest(w, msgMissingServiceID)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest()
	if err != nil {
		h.logger.Warn("POST /slots/days - Invalid date format: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, getAvailableDays.ErrServiceNotFound):
			h.logger.Warn("POST /slots/days - Service not found: service_id=%s", req.ServiceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, getAvailableDays.ErrProfessionalNotFound):
			h.logger.Warn("POST /slots/days - Professional not found: professional_id=%v", req.ProfessionalID)
			handlers.RespondNotFound(w, msgProfessionalNotFound)

		case errors.Is(err, getAvailableDays.ErrServiceNotOffered):
			handlers.RespondBadRequest(w, msgServiceNotOffered)

		case errors.Is(err, getAvailableDays.ErrInvalidRange):
			handlers.RespondBadRequest(w, msgInvalidRange)

		case errors.Is(err, getAvailableDays.ErrRangeTooLong):
			handlers.RespondBadRequest(w, msgRangeTooLong)

		case errors.Is(err, getAvailableDays.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /slots/days - Failed to get days: service_id=%s, range=%s..%s, error=%v",
				req.ServiceID, req.StartDate, req.EndDate, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /slots/days - Days retrieved successfully: service_id=%s, range=%s..%s, days_count=%d",
		req.ServiceID, req.StartDate, req.EndDate, len(result.AvailableDays))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
