package get_available_slots

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	getAvailableSlots "github.com/m04kA/SMC-SalonBooking/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-SalonBooking/pkg/logger"
	"github.com/m04kA/SMC-SalonBooking/pkg/types"
)

type mockUseCase struct {
	mock.Mock
}

func (m *mockUseCase) Execute(ctx context.Context, req *getAvailableSlots.Request) (*getAvailableSlots.Response, error) {
	args := m.Called(ctx, req)
	if resp := args.Get(0); resp != nil {
		return resp.(*getAvailableSlots.Response), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestHandleQuery_Success(t *testing.T) {
	madrid, _ := time.LoadLocation("Europe/Madrid")
	date, _ := types.ParseDate("2025-03-03")

	uc := new(mockUseCase)
	uc.On("Execute", mock.Anything, mock.MatchedBy(func(req *getAvailableSlots.Request) bool {
		return req.ServiceID == "corte_barba" && req.Date == date && req.ProfessionalID == nil
	})).Return(&getAvailableSlots.Response{
		Date:            date,
		ServiceID:       "corte_barba",
		DurationMinutes: 45,
		Slots:           []time.Time{time.Date(2025, time.March, 3, 9, 45, 0, 0, madrid)},
	}, nil)

	h := NewHandler(uc, logger.NewNop())
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/v1/slots?serviceId=corte_barba&date=2025-03-03", nil)

	h.HandleQuery(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"date":"2025-03-03","serviceId":"corte_barba","durationMinutes":45,"slots":["2025-03-03T09:45:00+01:00"]}`, w.Body.String())
	uc.AssertExpectations(t)
}

func TestHandleBody_PassesProfessional(t *testing.T) {
	date, _ := types.ParseDate("2025-03-03")

	uc := new(mockUseCase)
	uc.On("Execute", mock.Anything, mock.MatchedBy(func(req *getAvailableSlots.Request) bool {
		return req.ProfessionalID != nil && *req.ProfessionalID == "deinis"
	})).Return(&getAvailableSlots.Response{Date: date, ServiceID: "corte_barba", Slots: []time.Time{}}, nil)

	h := NewHandler(uc, logger.NewNop())
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/v1/slots",
		strings.NewReader(`{"serviceId":"corte_barba","date":"2025-03-03","professionalId":"deinis"}`))

	h.HandleBody(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"slots":[]`)
}

func TestHandle_BadInput(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"missing service", "date=2025-03-03"},
		{"missing date", "serviceId=corte_barba"},
		{"bad date", "serviceId=corte_barba&date=03/03/2025"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := new(mockUseCase)
			h := NewHandler(uc, logger.NewNop())
			w := httptest.NewRecorder()

			h.HandleQuery(w, httptest.NewRequest(http.MethodGet, "/api/v1/slots?"+tt.query, nil))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			uc.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
		})
	}
}

func TestHandle_UseCaseErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"service not found", getAvailableSlots.ErrServiceNotFound, http.StatusNotFound},
		{"professional not found", getAvailableSlots.ErrProfessionalNotFound, http.StatusNotFound},
		{"not offered", getAvailableSlots.ErrServiceNotOffered, http.StatusBadRequest},
		{"past", getAvailableSlots.ErrDateInPast, http.StatusBadRequest},
		{"too far", getAvailableSlots.ErrDateTooFarInFuture, http.StatusBadRequest},
		{"internal", getAvailableSlots.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := new(mockUseCase)
			uc.On("Execute", mock.Anything, mock.Anything).Return(nil, tt.err)

			h := NewHandler(uc, logger.NewNop())
			w := httptest.NewRecorder()

			h.HandleQuery(w, httptest.NewRequest(http.MethodGet, "/api/v1/slots?serviceId=x&date=2025-03-03", nil))

			assert.Equal(t, tt.status, w.Code)
		})
	}
}
