package reservations

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	reservationRepo "github.com/m04kA/SMC-SalonBooking/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-SalonBooking/internal/service/reservations/models"
	"github.com/m04kA/SMC-SalonBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-SalonBooking/pkg/logger"
	"github.com/m04kA/SMC-SalonBooking/pkg/ptr"
)

type memRepo struct {
	items map[string]*domain.Reservation
	err   error
}

func (r *memRepo) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	if r.err != nil {
		return nil, r.err
	}
	res, ok := r.items[id]
	if !ok {
		return nil, reservationRepo.ErrReservationNotFound
	}
	cp := *res
	return &cp, nil
}

func (r *memRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.Reservation, error) {
	return r.GetByID(ctx, id)
}

func (r *memRepo) List(ctx context.Context, filter domain.ReservationsFilter) ([]domain.Reservation, error) {
	out := make([]domain.Reservation, 0)
	for _, res := range r.items {
		out = append(out, *res)
	}
	return out, nil
}

func (r *memRepo) UpdateStatus(ctx context.Context, id string, status domain.ReservationStatus) (*domain.Reservation, error) {
	res, ok := r.items[id]
	if !ok {
		return nil, reservationRepo.ErrReservationNotFound
	}
	res.Status = status
	if status == domain.StatusCanceled {
		res.CanceledAt = ptr.Ptr(time.Now())
	}
	cp := *res
	return &cp, nil
}

type mockOutbox struct {
	mock.Mock
}

func (m *mockOutbox) Add(ctx context.Context, event domain.OutboxEvent) error {
	return m.Called(event.Type).Error(0)
}

type inlineTx struct{}

func (inlineTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (inlineTx) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type countingMetrics struct {
	actions []string
}

func (m *countingMetrics) ReservationCommitted(action string) {
	m.actions = append(m.actions, action)
}

func newService(status domain.ReservationStatus) (*Service, *memRepo, *mockOutbox, *countingMetrics) {
	start := time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC)
	repo := &memRepo{items: map[string]*domain.Reservation{
		"r1": {
			ID:             "r1",
			ProfessionalID: "deinis",
			ServiceID:      "corte_cabello",
			Start:          start,
			End:            start.Add(30 * time.Minute),
			Status:         status,
			Customer:       domain.Customer{Name: "Lucia", Phone: "+34600000000"},
		},
	}}
	outbox := new(mockOutbox)
	metrics := &countingMetrics{}
	svc := NewService(repo, outbox, inlineTx{}, metrics, time.UTC, logger.NewNop())
	return svc, repo, outbox, metrics
}

func TestCancel_IsIdempotent(t *testing.T) {
	svc, repo, outbox, metrics := newService(domain.StatusConfirmed)
	outbox.On("Add", domain.EventReservationCanceled).Return(nil).Once()

	first, err := svc.Cancel(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "canceled", first.Status)
	require.NotNil(t, first.CanceledAt)

	second, err := svc.Cancel(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.Equal(t, domain.StatusCanceled, repo.items["r1"].Status)
	assert.Equal(t, []string{"canceled"}, metrics.actions)
	outbox.AssertNumberOfCalls(t, "Add", 1)
}

func TestCancel_AttendedIsConflict(t *testing.T) {
	svc, _, _, _ := newService(domain.StatusAttended)

	_, err := svc.Cancel(context.Background(), "r1")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCancel_NotFound(t *testing.T) {
	svc, _, _, _ := newService(domain.StatusConfirmed)

	_, err := svc.Cancel(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrReservationNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMalformedIDIsNotFound(t *testing.T) {
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := reservationRepo.NewRepository(dbmetrics.Wrap(db, nil))
	svc := NewService(repo, new(mockOutbox), inlineTx{}, &countingMetrics{}, time.UTC, logger.NewNop())

	_, err = svc.GetByID(context.Background(), "abc")
	assert.ErrorIs(t, err, ErrReservationNotFound)
	assert.NotErrorIs(t, err, domain.ErrInfrastructure)

	for name, op := range map[string]func(context.Context, string) (*models.ReservationResponse, error){
		"cancel":   svc.Cancel,
		"attended": svc.MarkAttended,
		"no-show":  svc.MarkNoShow,
	} {
		_, err := op(context.Background(), "abc")
		assert.ErrorIs(t, err, ErrReservationNotFound, name)
		assert.NotErrorIs(t, err, domain.ErrInfrastructure, name)
	}

	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestCancel_RepositoryFailureIsInfrastructure(t *testing.T) {
	svc, repo, _, _ := newService(domain.StatusConfirmed)
	repo.err = errors.New("connection reset by peer")

	_, err := svc.Cancel(context.Background(), "r1")
	assert.ErrorIs(t, err, domain.ErrInfrastructure)
	assert.NotErrorIs(t, err, domain.ErrConflict)
}

func TestCancel_OutboxFailureAborts(t *testing.T) {
	svc, _, outbox, metrics := newService(domain.StatusConfirmed)
	outbox.On("Add", domain.EventReservationCanceled).Return(errors.New("disk full"))

	_, err := svc.Cancel(context.Background(), "r1")
	assert.ErrorIs(t, err, ErrInternal)
	assert.Empty(t, metrics.actions)
}

func TestMarkAttended(t *testing.T) {
	svc, _, outbox, _ := newService(domain.StatusConfirmed)
	outbox.On("Add", domain.EventReservationStatusChanged).Return(nil).Once()

	got, err := svc.MarkAttended(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "attended", got.Status)

	again, err := svc.MarkAttended(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "attended", again.Status)

	_, err = svc.MarkNoShow(context.Background(), "r1")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestMarkNoShow_FromCanceledIsConflict(t *testing.T) {
	svc, _, _, _ := newService(domain.StatusCanceled)

	_, err := svc.MarkNoShow(context.Background(), "r1")
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestList_Validation(t *testing.T) {
	svc, _, _, _ := newService(domain.StatusConfirmed)
	from := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)
	to := from.Add(-time.Hour)

	_, err := svc.List(context.Background(), &models.ListRequest{From: &from, To: &to})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.List(context.Background(), &models.ListRequest{Status: ptr.Ptr("pending")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.List(context.Background(), &models.ListRequest{Limit: domain.MaxListLimit + 1})
	assert.ErrorIs(t, err, ErrInvalidInput)

	got, err := svc.List(context.Background(), &models.ListRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, got.Total)
	assert.Equal(t, "2025-03-03T10:00:00Z", got.Reservations[0].Start)
}
