package reservation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	"github.com/m04kA/SMC-SalonBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-SalonBooking/pkg/psqlbuilder"
)

const table = "reservations"

// exclusionViolation SQLSTATE нарушения EXCLUDE-ограничения
const exclusionViolation = pq.ErrorCode("23P01")

var columns = []string{
	"id",
	"professional_id",
	"service_id",
	"start_at",
	"end_at",
	"status",
	"customer_name",
	"customer_phone",
	"customer_email",
	"notes",
	"canceled_at",
	"created_at",
	"updated_at",
}

// Repository хранилище броней. Последняя инстанция против двойной записи:
// ограничение reservations_no_overlap в БД.
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория броней
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// LockProfessionals берет транзакционные advisory-блокировки по мастерам в отсортированном порядке.
// Конкурентные изменения одного мастера выполняются строго по очереди до конца транзакции.
func (r *Repository) LockProfessionals(ctx context.Context, professionalIDs ...string) error {
	if !dbmetrics.IsInTransaction(ctx) {
		return ErrNotInTransaction
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	ids := uniqueSorted(professionalIDs)
	for _, id := range ids {
		if _, err := executor.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", id); err != nil {
			return fmt.Errorf("%w: LockProfessionals - lock %s: %v", ErrExecQuery, id, err)
		}
	}
	return nil
}

// Create вставляет бронь. Пересечение с активной бронью того же мастера возвращает ErrOverlap.
func (r *Repository) Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(table).
		Columns(
			"id",
			"professional_id",
			"service_id",
			"start_at",
			"end_at",
			"status",
			"customer_name",
			"customer_phone",
			"customer_email",
			"notes",
		).
		Values(
			res.ID,
			res.ProfessionalID,
			res.ServiceID,
			res.Start,
			res.End,
			string(res.Status),
			res.Customer.Name,
			res.Customer.Phone,
			res.Customer.Email,
			res.Notes,
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		if isExclusionViolation(err) {
			return nil, ErrOverlap
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return res, nil
}

// GetByID получает бронь по ID
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	return r.getByID(ctx, id, false)
}

// GetByIDForUpdate получает бронь с блокировкой строки, только внутри транзакции
func (r *Repository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Reservation, error) {
	if !isValidID(id) {
		return nil, ErrReservationNotFound
	}
	if !dbmetrics.IsInTransaction(ctx) {
		return nil, ErrNotInTransaction
	}
	return r.getByID(ctx, id, true)
}

func (r *Repository) getByID(ctx context.Context, id string, forUpdate bool) (*domain.Reservation, error) {
	if !isValidID(id) {
		return nil, ErrReservationNotFound
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"id": id})
	if forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	res, err := scanReservation(executor.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, fmt.Errorf("%w: GetByID - scan: %v", ErrScanRow, err)
	}

	return res, nil
}

// ListActive активные брони мастеров, пересекающие [from, to), по возрастанию начала
func (r *Repository) ListActive(ctx context.Context, professionalIDs []string, from, to time.Time) ([]domain.Reservation, error) {
	if len(professionalIDs) == 0 {
		return []domain.Reservation{}, nil
	}

	return r.List(ctx, domain.ReservationsFilter{
		ProfessionalIDs: professionalIDs,
		From:            &from,
		To:              &to,
		Statuses:        domain.ActiveStatuses,
	})
}

// List брони по фильтру, по возрастанию начала
func (r *Repository) List(ctx context.Context, filter domain.ReservationsFilter) ([]domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(columns...).
		From(table).
		OrderBy("start_at ASC", "id ASC")

	if len(filter.ProfessionalIDs) > 0 {
		builder = builder.Where(squirrel.Eq{"professional_id": filter.ProfessionalIDs})
	}
	// Пересечение с окном: бронь заканчивается после From и начинается до To
	if filter.From != nil {
		builder = builder.Where(squirrel.Gt{"end_at": *filter.From})
	}
	if filter.To != nil {
		builder = builder.Where(squirrel.Lt{"start_at": *filter.To})
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, string(s))
		}
		builder = builder.Where(squirrel.Eq{"status": statuses})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		builder = builder.Offset(filter.Offset)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute select: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	reservations := make([]domain.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan: %v", ErrScanRow, err)
		}
		reservations = append(reservations, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - iterate rows: %v", ErrExecQuery, err)
	}

	return reservations, nil
}

// UpdateInterval переносит бронь (возможно к другому мастеру) одним UPDATE:
// старый интервал освобождается и новый занимается атомарно.
func (r *Repository) UpdateInterval(ctx context.Context, id, professionalID string, start, end time.Time) (*domain.Reservation, error) {
	if !isValidID(id) {
		return nil, ErrReservationNotFound
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("professional_id", professionalID).
		Set("start_at", start).
		Set("end_at", end).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: UpdateInterval - build update query: %v", ErrBuildQuery, err)
	}

	res, err := scanReservation(executor.QueryRowContext(ctx, query, args...))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrReservationNotFound
		case isExclusionViolation(err):
			return nil, ErrOverlap
		}
		return nil, fmt.Errorf("%w: UpdateInterval - execute update: %v", ErrExecQuery, err)
	}

	return res, nil
}

// UpdateStatus меняет статус брони. Для canceled проставляется canceled_at.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status domain.ReservationStatus) (*domain.Reservation, error) {
	if !isValidID(id) {
		return nil, ErrReservationNotFound
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Update(table).
		Set("status", string(status)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns())
	if status == domain.StatusCanceled {
		builder = builder.Set("canceled_at", squirrel.Expr("NOW()"))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	res, err := scanReservation(executor.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, fmt.Errorf("%w: UpdateStatus - execute update: %v", ErrExecQuery, err)
	}

	return res, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReservation(row rowScanner) (*domain.Reservation, error) {
	var (
		res        domain.Reservation
		status     string
		email      sql.NullString
		notes      sql.NullString
		canceledAt sql.NullTime
	)

	err := row.Scan(
		&res.ID,
		&res.ProfessionalID,
		&res.ServiceID,
		&res.Start,
		&res.End,
		&status,
		&res.Customer.Name,
		&res.Customer.Phone,
		&email,
		&notes,
		&canceledAt,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	res.Status = domain.ReservationStatus(status)
	if email.Valid {
		res.Customer.Email = &email.String
	}
	if notes.Valid {
		res.Notes = &notes.String
	}
	if canceledAt.Valid {
		res.CanceledAt = &canceledAt.Time
	}

	return &res, nil
}

// isValidID id броней хранятся как UUID; строка другого вида не может существовать в таблице
func isValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func isExclusionViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == exclusionViolation
}

func joinColumns() string {
	return strings.Join(columns, ", ")
}

func uniqueSorted(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
