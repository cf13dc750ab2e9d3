package catalog

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonBooking/pkg/dbmetrics"
)

func newRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRepository(dbmetrics.Wrap(db, nil)), mock
}

func TestListServices(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(`SELECT id, name, duration_minutes, price_cents, is_active, sort_order FROM services WHERE is_active = \$1 ORDER BY sort_order ASC, id ASC`).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "duration_minutes", "price_cents", "is_active", "sort_order"}).
			AddRow("corte_cabello", "Corte de cabello", 30, 1300, true, 1).
			AddRow("corte_barba", "Corte + barba", 45, 1800, true, 2))

	got, err := repo.ListServices(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 45, got[1].DurationMinutes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetService_NotFound(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(`FROM services WHERE id = \$1`).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "duration_minutes", "price_cents", "is_active", "sort_order"}))

	_, err := repo.GetService(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestGetProfessional(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(`SELECT p.id, p.name, p.is_active, .+ FROM professionals p LEFT JOIN professional_services ps ON ps.professional_id = p.id WHERE p.id = \$1 GROUP BY`).
		WithArgs("deinis").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "is_active", "service_ids"}).
			AddRow("deinis", "Deinis Barber", true, "{arreglo_barba,corte_cabello}"))

	got, err := repo.GetProfessional(context.Background(), "deinis")
	require.NoError(t, err)
	assert.Equal(t, []string{"arreglo_barba", "corte_cabello"}, got.ServiceIDs)
	assert.True(t, got.Offers("corte_cabello"))
}

func TestGetProfessional_NotFound(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(`FROM professionals p`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "is_active", "service_ids"}))

	_, err := repo.GetProfessional(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrProfessionalNotFound)
}
