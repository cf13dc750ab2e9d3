package mark_reservation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	reservationRepo "github.com/m04kA/SMC-SalonBooking/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-SalonBooking/internal/service/reservations"
	"github.com/m04kA/SMC-SalonBooking/internal/service/reservations/models"
	"github.com/m04kA/SMC-SalonBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-SalonBooking/pkg/logger"
	"github.com/m04kA/SMC-SalonBooking/pkg/txmanager"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) result(args mock.Arguments) (*models.ReservationResponse, error) {
	if resp := args.Get(0); resp != nil {
		return resp.(*models.ReservationResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockService) Cancel(ctx context.Context, id string) (*models.ReservationResponse, error) {
	return m.result(m.Called(ctx, id))
}

func (m *mockService) MarkAttended(ctx context.Context, id string) (*models.ReservationResponse, error) {
	return m.result(m.Called(ctx, id))
}

func (m *mockService) MarkNoShow(ctx context.Context, id string) (*models.ReservationResponse, error) {
	return m.result(m.Called(ctx, id))
}

func newRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/reservations/{reservationId}/cancel", h.HandleCancel).Methods(http.MethodPost)
	r.HandleFunc("/reservations/{reservationId}/attended", h.HandleAttended).Methods(http.MethodPost)
	r.HandleFunc("/reservations/{reservationId}/no-show", h.HandleNoShow).Methods(http.MethodPost)
	return r
}

func serve(router *mux.Router, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, nil))
	return w
}

func TestCancel_TwiceIsOK(t *testing.T) {
	svc := new(mockService)
	svc.On("Cancel", mock.Anything, "r1").Return(&models.ReservationResponse{ID: "r1", Status: "canceled"}, nil).Twice()

	router := newRouter(NewHandler(svc, logger.NewNop()))

	assert.Equal(t, http.StatusOK, serve(router, "/reservations/r1/cancel").Code)
	w := serve(router, "/reservations/r1/cancel")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"canceled"`)
	svc.AssertExpectations(t)
}

func TestTransitions_ErrorMapping(t *testing.T) {
	svc := new(mockService)
	svc.On("Cancel", mock.Anything, "attended").Return(nil, reservations.ErrInvalidTransition)
	svc.On("MarkAttended", mock.Anything, "missing").Return(nil, reservations.ErrReservationNotFound)
	svc.On("MarkNoShow", mock.Anything, "broken").Return(nil, reservations.ErrInternal)
	svc.On("MarkNoShow", mock.Anything, "r2").Return(&models.ReservationResponse{ID: "r2", Status: "no_show"}, nil)

	router := newRouter(NewHandler(svc, logger.NewNop()))

	assert.Equal(t, http.StatusConflict, serve(router, "/reservations/attended/cancel").Code)
	assert.Equal(t, http.StatusNotFound, serve(router, "/reservations/missing/attended").Code)
	assert.Equal(t, http.StatusInternalServerError, serve(router, "/reservations/broken/no-show").Code)
	assert.Equal(t, http.StatusOK, serve(router, "/reservations/r2/no-show").Code)
}

func TestMalformedIDIsNotFound(t *testing.T) {
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	wrapped := dbmetrics.Wrap(db, nil)
	svc := reservations.NewService(
		reservationRepo.NewRepository(wrapped),
		nil,
		txmanager.NewTransactionManager(wrapped),
		nil,
		time.UTC,
		logger.NewNop(),
	)
	router := newRouter(NewHandler(svc, logger.NewNop()))

	for _, action := range []string{"cancel", "attended", "no-show"} {
		sqlMock.ExpectBegin()
		sqlMock.ExpectRollback()

		w := serve(router, "/reservations/abc/"+action)
		assert.Equal(t, http.StatusNotFound, w.Code, action)
	}
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}
