package domain

// Значения по умолчанию для календаря
const (
	DefaultTimezone        = "Europe/Madrid"
	DefaultSlotStepMinutes = 15
	DefaultMinLeadMinutes  = 0
	DefaultMaxHorizonDays  = 183 // ~6 месяцев
	DefaultMaxRangeDays    = 62
)

// Ограничения валидации
const (
	MaxCustomerNameLength   = 120
	MaxCustomerPhoneLength  = 32
	MaxNotesLength          = 500
	MaxIdempotencyKeyLength = 128
	DefaultListLimit        = 100
	MaxListLimit            = 500
)

// ActiveStatuses статусы, занимающие время мастера
var ActiveStatuses = []ReservationStatus{
	StatusConfirmed,
	StatusAttended,
	StatusNoShow,
}
