package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	defaultPollInterval = 2 * time.Second
	defaultBatchSize    = 50
)

// ErrPublish возвращается, если брокер не принял пачку событий
var ErrPublish = errors.New("events.publisher: failed to publish batch")

// Config параметры публикации outbox
type Config struct {
	Brokers      []string
	TopicPrefix  string
	PollInterval time.Duration
	BatchSize    int
}

// Publisher переносит события из outbox в Kafka. Событие отмечается опубликованным
// в той же транзакции, в которой было выбрано, поэтому доставка at-least-once.
type Publisher struct {
	writer    MessageWriter
	repo      OutboxRepository
	txManager TransactionManager
	metrics   Metrics
	logger    Logger
	prefix    string
	interval  time.Duration
	batchSize uint64
}

// NewKafkaWriter создает writer с ключевой балансировкой: события одной брони
// попадают в одну партицию и сохраняют порядок
func NewKafkaWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}
}

// NewPublisher создает публикатор
func NewPublisher(writer MessageWriter, repo OutboxRepository, txManager TransactionManager, metrics Metrics, logger Logger, cfg Config) *Publisher {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	return &Publisher{
		writer:    writer,
		repo:      repo,
		txManager: txManager,
		metrics:   metrics,
		logger:    logger,
		prefix:    cfg.TopicPrefix,
		interval:  cfg.PollInterval,
		batchSize: uint64(cfg.BatchSize),
	}
}

// Run публикует события по таймеру до отмены ctx
func (p *Publisher) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("Outbox publisher started: interval=%s, batch=%d", p.interval, p.batchSize)
	for {
		select {
		case <-ctx.Done():
			if err := p.writer.Close(); err != nil {
				p.logger.Warn("Outbox publisher: failed to close writer: %v", err)
			}
			p.logger.Info("Outbox publisher stopped")
			return
		case <-ticker.C:
			n, err := p.PublishBatch(ctx)
			p.metrics.OutboxBatch(n, err)
			if err != nil {
				p.logger.Error("Outbox publisher: %v", err)
			}
		}
	}
}

// PublishBatch публикует одну пачку и возвращает число опубликованных событий
func (p *Publisher) PublishBatch(ctx context.Context) (int, error) {
	published := 0
	var publishErr error

	err := p.txManager.Do(ctx, func(ctx context.Context) error {
		events, err := p.repo.FetchUnpublished(ctx, p.batchSize)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			return nil
		}

		ids := make([]string, 0, len(events))
		msgs := make([]kafka.Message, 0, len(events))
		for _, e := range events {
			ids = append(ids, e.ID)
			msgs = append(msgs, kafka.Message{
				Topic: p.topic(string(e.Type)),
				Key:   []byte(e.AggregateID),
				Value: e.Payload,
				Time:  e.OccurredAt,
				Headers: []kafka.Header{
					{Key: "event_id", Value: []byte(e.ID)},
					{Key: "event_type", Value: []byte(e.Type)},
				},
			})
		}

		// Ошибку брокера не возвращаем из транзакции: счетчик попыток должен сохраниться
		if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
			publishErr = fmt.Errorf("%w: %v", ErrPublish, err)
			return p.repo.MarkFailed(ctx, ids)
		}

		if err := p.repo.MarkPublished(ctx, ids); err != nil {
			return err
		}
		published = len(ids)
		return nil
	})
	if err != nil {
		return 0, err
	}

	return published, publishErr
}

func (p *Publisher) topic(eventType string) string {
	if p.prefix == "" {
		return eventType
	}
	return strings.TrimSuffix(p.prefix, ".") + "." + eventType
}
