package outbox

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	"github.com/m04kA/SMC-SalonBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-SalonBooking/pkg/psqlbuilder"
)

const table = "outbox_events"

// Repository outbox доменных событий
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Add записывает событие; вызывается в транзакции изменения брони
func (r *Repository) Add(ctx context.Context, event domain.OutboxEvent) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(table).
		Columns("id", "event_type", "aggregate_id", "payload", "occurred_at").
		Values(event.ID, string(event.Type), event.AggregateID, event.Payload, event.OccurredAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Add - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Add - execute insert: %v", ErrExecQuery, err)
	}
	return nil
}

// FetchUnpublished блокирует и возвращает до limit неопубликованных событий в порядке возникновения.
// SKIP LOCKED позволяет нескольким экземплярам сервиса публиковать параллельно.
func (r *Repository) FetchUnpublished(ctx context.Context, limit uint64) ([]domain.OutboxEvent, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "event_type", "aggregate_id", "payload", "occurred_at").
		From(table).
		Where(squirrel.Eq{"published_at": nil}).
		OrderBy("occurred_at ASC").
		Limit(limit).
		Suffix("FOR UPDATE SKIP LOCKED").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: FetchUnpublished - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: FetchUnpublished - execute select: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	events := make([]domain.OutboxEvent, 0)
	for rows.Next() {
		var (
			e         domain.OutboxEvent
			eventType string
		)
		if err := rows.Scan(&e.ID, &eventType, &e.AggregateID, &e.Payload, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("%w: FetchUnpublished - scan: %v", ErrScanRow, err)
		}
		e.Type = domain.EventType(eventType)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: FetchUnpublished - iterate rows: %v", ErrExecQuery, err)
	}

	return events, nil
}

// MarkPublished отмечает события опубликованными
func (r *Repository) MarkPublished(ctx context.Context, ids []string) error {
	return r.update(ctx, "MarkPublished", ids, psqlbuilder.Update(table).
		Set("published_at", squirrel.Expr("NOW()")).
		Set("attempts", squirrel.Expr("attempts + 1")))
}

// MarkFailed увеличивает счетчик попыток
func (r *Repository) MarkFailed(ctx context.Context, ids []string) error {
	return r.update(ctx, "MarkFailed", ids, psqlbuilder.Update(table).
		Set("attempts", squirrel.Expr("attempts + 1")))
}

func (r *Repository) update(ctx context.Context, op string, ids []string, builder squirrel.UpdateBuilder) error {
	if len(ids) == 0 {
		return nil
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := builder.Where(squirrel.Eq{"id": ids}).ToSql()
	if err != nil {
		return fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, op, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}
	return nil
}
