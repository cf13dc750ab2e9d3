package get_available_days

import "github.com/m04kA/SMC-SalonBooking/pkg/types"

// Request модель запроса дней с доступными слотами
type Request struct {
	ServiceID      string
	StartDate      types.Date
	EndDate        types.Date // включительно
	ProfessionalID *string    // nil - любой мастер, оказывающий услугу
}

// Response даты с хотя бы одним свободным слотом, по возрастанию
type Response struct {
	ServiceID      string
	ProfessionalID *string
	AvailableDays  []types.Date
}
