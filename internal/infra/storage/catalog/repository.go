package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	"github.com/m04kA/SMC-SalonBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-SalonBooking/pkg/psqlbuilder"
)

// servicesAgg агрегирует услуги мастера в массив, отсортированный по id
const servicesAgg = "COALESCE(array_agg(ps.service_id ORDER BY ps.service_id) FILTER (WHERE ps.service_id IS NOT NULL), '{}')"

// Repository справочник услуг и мастеров
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория каталога
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// ListServices активные услуги в порядке отображения
func (r *Repository) ListServices(ctx context.Context) ([]domain.Service, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "name", "duration_minutes", "price_cents", "is_active", "sort_order").
		From("services").
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("sort_order ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListServices - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListServices - execute select: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	services := make([]domain.Service, 0)
	for rows.Next() {
		var s domain.Service
		if err := rows.Scan(&s.ID, &s.Name, &s.DurationMinutes, &s.PriceCents, &s.Active, &s.SortOrder); err != nil {
			return nil, fmt.Errorf("%w: ListServices - scan: %v", ErrScanRow, err)
		}
		services = append(services, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListServices - iterate rows: %v", ErrExecQuery, err)
	}

	return services, nil
}

// GetService услуга по ID, включая неактивные
func (r *Repository) GetService(ctx context.Context, id string) (*domain.Service, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "name", "duration_minutes", "price_cents", "is_active", "sort_order").
		From("services").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetService - build select query: %v", ErrBuildQuery, err)
	}

	var s domain.Service
	err = executor.QueryRowContext(ctx, query, args...).
		Scan(&s.ID, &s.Name, &s.DurationMinutes, &s.PriceCents, &s.Active, &s.SortOrder)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetService - scan: %v", ErrScanRow, err)
	}

	return &s, nil
}

// ListProfessionals активные мастера вместе с их услугами
func (r *Repository) ListProfessionals(ctx context.Context) ([]domain.Professional, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := professionalsQuery().
		Where(squirrel.Eq{"p.is_active": true}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListProfessionals - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListProfessionals - execute select: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	professionals := make([]domain.Professional, 0)
	for rows.Next() {
		p, err := scanProfessional(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListProfessionals - scan: %v", ErrScanRow, err)
		}
		professionals = append(professionals, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListProfessionals - iterate rows: %v", ErrExecQuery, err)
	}

	return professionals, nil
}

// GetProfessional мастер по ID, включая неактивных
func (r *Repository) GetProfessional(ctx context.Context, id string) (*domain.Professional, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := professionalsQuery().
		Where(squirrel.Eq{"p.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetProfessional - build select query: %v", ErrBuildQuery, err)
	}

	p, err := scanProfessional(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfessionalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetProfessional - scan: %v", ErrScanRow, err)
	}

	return p, nil
}

func professionalsQuery() squirrel.SelectBuilder {
	return psqlbuilder.Select("p.id", "p.name", "p.is_active", servicesAgg).
		From("professionals p").
		LeftJoin("professional_services ps ON ps.professional_id = p.id").
		GroupBy("p.id", "p.name", "p.is_active").
		OrderBy("p.id ASC")
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProfessional(row rowScanner) (*domain.Professional, error) {
	var p domain.Professional
	var serviceIDs pq.StringArray
	if err := row.Scan(&p.ID, &p.Name, &p.Active, &serviceIDs); err != nil {
		return nil, err
	}
	p.ServiceIDs = []string(serviceIDs)
	return &p, nil
}
