package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-SalonBooking/pkg/types"
)

// Request модель запроса на получение доступных слотов
type Request struct {
	ServiceID      string     // ID услуги
	Date           types.Date // Дата в поясе салона
	ProfessionalID *string    // Мастер; nil - любой, оказывающий услугу
}

// Response модель ответа со списком доступных слотов
type Response struct {
	Date            types.Date
	ServiceID       string
	ProfessionalID  *string
	DurationMinutes int
	Slots           []time.Time // Начала слотов в поясе салона, по возрастанию
}
