package get_professionals

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SalonBooking/internal/api/handlers"
	"github.com/m04kA/SMC-SalonBooking/internal/service/catalog"
)

const msgServiceNotFound = "услуга не найдена"

type Handler struct {
	service CatalogService
	logger  Logger
}

func NewHandler(service CatalogService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/professionals
// Query params: serviceId (опционально) - только мастера, оказывающие услугу
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var serviceID *string
	if v := r.URL.Query().Get("serviceId"); v != "" {
		serviceID = &v
	}

	result, err := h.service.GetProfessionals(r.Context(), serviceID)
	if err != nil {
		if errors.Is(err, catalog.ErrServiceNotFound) {
			h.logger.Warn("GET /professionals - Service not found: service_id=%s", *serviceID)
			handlers.RespondNotFound(w, msgServiceNotFound)
			return
		}
		h.logger.Error("GET /professionals - Failed to list professionals: error=%v", err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
