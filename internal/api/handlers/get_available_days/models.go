package get_available_days

import (
	"strings"

	getAvailableDays "github.com/m04kA/SMC-SalonBooking/internal/usecase/get_available_days"
	"github.com/m04kA/SMC-SalonBooking/pkg/types"
)

// DaysRequest HTTP request model
type DaysRequest struct {
	ServiceID      string  `json:"serviceId"`
	StartDate      string  `json:"startDate"` // "2025-03-01"
	EndDate        string  `json:"endDate"`   // "2025-03-31", включительно
	ProfessionalID *string `json:"professionalId,omitempty"`
}

// DaysResponse HTTP response model
type DaysResponse struct {
	ServiceID      string       `json:"serviceId"`
	ProfessionalID *string      `json:"professionalId,omitempty"`
	AvailableDays  []types.Date `json:"availableDays"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *DaysRequest) ToUseCaseRequest() (*getAvailableDays.Request, error) {
	start, err := types.ParseDate(strings.TrimSpace(r.StartDate))
	if err != nil {
		return nil, err
	}
	end, err := types.ParseDate(strings.TrimSpace(r.EndDate))
	if err != nil {
		return nil, err
	}

	var professionalID *string
	if r.ProfessionalID != nil && strings.TrimSpace(*r.ProfessionalID) != "" {
		id := strings.TrimSpace(*r.ProfessionalID)
		professionalID = &id
	}

	return &getAvailableDays.Request{
		ServiceID:      strings.TrimSpace(r.ServiceID),
		StartDate:      start,
		EndDate:        end,
		ProfessionalID: professionalID,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableDays.Response) *DaysResponse {
	days := resp.AvailableDays
	if days == nil {
		days = []types.Date{}
	}
	return &DaysResponse{
		ServiceID:      resp.ServiceID,
		ProfessionalID: resp.ProfessionalID,
		AvailableDays:  days,
	}
}
