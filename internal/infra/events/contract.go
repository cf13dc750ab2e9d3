package events

import (
	"context"

	"github.com/segmentio/kafka-go"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
)

// MessageWriter интерфейс записи сообщений в брокер (*kafka.Writer)
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// OutboxRepository интерфейс outbox-хранилища
type OutboxRepository interface {
	FetchUnpublished(ctx context.Context, limit uint64) ([]domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, ids []string) error
	MarkFailed(ctx context.Context, ids []string) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics счетчики публикации
type Metrics interface {
	OutboxBatch(published int, err error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
