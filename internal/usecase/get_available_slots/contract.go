package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
)

// CatalogService интерфейс справочника услуг и мастеров
type CatalogService interface {
	GetService(ctx context.Context, id string) (*domain.Service, error)
	GetProfessional(ctx context.Context, id string) (*domain.Professional, error)
	ProfessionalsForService(ctx context.Context, serviceID string) ([]domain.Professional, error)
}

// ReservationRepository интерфейс репозитория броней
type ReservationRepository interface {
	ListActive(ctx context.Context, professionalIDs []string, from, to time.Time) ([]domain.Reservation, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics счетчики запросов доступности
type Metrics interface {
	AvailabilityQuery(kind string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
