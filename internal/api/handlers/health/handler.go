package health

import (
	"context"
	"net/http"
	"time"

	"github.com/m04kA/SMC-SalonBooking/internal/api/handlers"
)

const msgNotReady = "база данных недоступна"

// Pinger проверка доступности хранилища
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Logger interface {
	Warn(format string, v ...interface{})
}

type statusResponse struct {
	Status string `json:"status"`
}

type Handler struct {
	db      Pinger
	timeout time.Duration
	logger  Logger
}

func NewHandler(db Pinger, timeout time.Duration, logger Logger) *Handler {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Handler{
		db:      db,
		timeout: timeout,
		logger:  logger,
	}
}

// Live GET /healthz
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

// Ready GET /readyz
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Warn("GET /readyz - Database ping failed: %v", err)
		handlers.RespondServiceUnavailable(w, msgNotReady)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, statusResponse{Status: "ready"})
}
