package idempotency

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-SalonBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-SalonBooking/pkg/psqlbuilder"
)

const table = "reservation_idempotency_keys"

// Record состояние ключа идемпотентности
type Record struct {
	Key           string
	RequestHash   string
	ReservationID *string // nil, пока бронь по ключу не создана
}

// Repository ключи идемпотентности создания броней
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Lock захватывает ключ до конца транзакции: вставляет его, если ключа нет,
// и читает строку с FOR UPDATE. Повторный запрос с тем же ключом ждет,
// пока первая транзакция завершится, и затем видит ее результат.
func (r *Repository) Lock(ctx context.Context, key, requestHash string) (*Record, error) {
	if !dbmetrics.IsInTransaction(ctx) {
		return nil, ErrNotInTransaction
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	insert, args, err := psqlbuilder.Insert(table).
		Columns("key", "request_hash").
		Values(key, requestHash).
		Suffix("ON CONFLICT (key) DO NOTHING").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Lock - build insert query: %v", ErrBuildQuery, err)
	}
	if _, err := executor.ExecContext(ctx, insert, args...); err != nil {
		return nil, fmt.Errorf("%w: Lock - insert key: %v", ErrExecQuery, err)
	}

	query, args, err := psqlbuilder.Select("key", "request_hash", "reservation_id").
		From(table).
		Where(squirrel.Eq{"key": key}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Lock - build select query: %v", ErrBuildQuery, err)
	}

	var (
		rec           Record
		reservationID sql.NullString
	)
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&rec.Key, &rec.RequestHash, &reservationID); err != nil {
		return nil, fmt.Errorf("%w: Lock - select key: %v", ErrExecQuery, err)
	}
	if reservationID.Valid {
		rec.ReservationID = &reservationID.String
	}

	return &rec, nil
}

// Finalize привязывает созданную бронь к ключу
func (r *Repository) Finalize(ctx context.Context, key, reservationID string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("reservation_id", reservationID).
		Where(squirrel.Eq{"key": key}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Finalize - build update query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Finalize - execute update: %v", ErrExecQuery, err)
	}
	return nil
}
