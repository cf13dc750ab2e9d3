package get_available_slots

import (
	"strings"
	"time"

	getAvailableSlots "github.com/m04kA/SMC-SalonBooking/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-SalonBooking/pkg/types"
)

// SlotsRequest HTTP request model (тело POST или query-параметры GET)
type SlotsRequest struct {
	ServiceID      string  `json:"serviceId"`
	Date           string  `json:"date"` // "2025-03-03"
	ProfessionalID *string `json:"professionalId,omitempty"`
}

// SlotsResponse HTTP response model
type SlotsResponse struct {
	Date            string   `json:"date"`
	ServiceID       string   `json:"serviceId"`
	ProfessionalID  *string  `json:"professionalId,omitempty"`
	DurationMinutes int      `json:"durationMinutes"`
	Slots           []string `json:"slots"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *SlotsRequest) ToUseCaseRequest() (*getAvailableSlots.Request, error) {
	date, err := types.ParseDate(strings.TrimSpace(r.Date))
	if err != nil {
		return nil, err
	}

	var professionalID *string
	if r.ProfessionalID != nil && strings.TrimSpace(*r.ProfessionalID) != "" {
		id := strings.TrimSpace(*r.ProfessionalID)
		professionalID = &id
	}

	return &getAvailableSlots.Request{
		ServiceID:      strings.TrimSpace(r.ServiceID),
		Date:           date,
		ProfessionalID: professionalID,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *SlotsResponse {
	slots := make([]string, len(resp.Slots))
	for i, s := range resp.Slots {
		slots[i] = s.Format(time.RFC3339)
	}

	return &SlotsResponse{
		Date:            resp.Date.String(),
		ServiceID:       resp.ServiceID,
		ProfessionalID:  resp.ProfessionalID,
		DurationMinutes: resp.DurationMinutes,
		Slots:           slots,
	}
}
