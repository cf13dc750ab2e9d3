package create_reservation

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	"github.com/m04kA/SMC-SalonBooking/internal/infra/storage/idempotency"
)

// CatalogService интерфейс справочника услуг и мастеров
type CatalogService interface {
	GetService(ctx context.Context, id string) (*domain.Service, error)
	GetProfessional(ctx context.Context, id string) (*domain.Professional, error)
}

// ReservationRepository интерфейс репозитория броней
type ReservationRepository interface {
	LockProfessionals(ctx context.Context, professionalIDs ...string) error
	ListActive(ctx context.Context, professionalIDs []string, from, to time.Time) ([]domain.Reservation, error)
	GetByID(ctx context.Context, id string) (*domain.Reservation, error)
	Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error)
}

// IdempotencyRepository интерфейс ключей идемпотентности
type IdempotencyRepository interface {
	Lock(ctx context.Context, key, requestHash string) (*idempotency.Record, error)
	Finalize(ctx context.Context, key, reservationID string) error
}

// OutboxRepository интерфейс записи доменных событий
type OutboxRepository interface {
	Add(ctx context.Context, event domain.OutboxEvent) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics доменные счетчики
type Metrics interface {
	ReservationCommitted(action string)
	ReservationConflict(action, source string)
	IdempotentReplay()
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
