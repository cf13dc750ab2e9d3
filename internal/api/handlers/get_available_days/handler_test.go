package get_available_days

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	getAvailableDays "github.com/m04kA/SMC-SalonBooking/internal/usecase/get_available_days"
	"github.com/m04kA/SMC-SalonBooking/pkg/logger"
	"github.com/m04kA/SMC-SalonBooking/pkg/types"
)

type mockUseCase struct {
	mock.Mock
}

func (m *mockUseCase) Execute(ctx context.Context, req *getAvailableDays.Request) (*getAvailableDays.Response, error) {
	args := m.Called(ctx, req)
	if resp := args.Get(0); resp != nil {
		return resp.(*getAvailableDays.Response), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestHandle_Success(t *testing.T) {
	d1, _ := types.ParseDate("2025-03-03")
	d2, _ := types.ParseDate("2025-03-05")

	uc := new(mockUseCase)
	uc.On("Execute", mock.Anything, mock.MatchedBy(func(req *getAvailableDays.Request) bool {
		return req.ServiceID == "corte_barba" && req.StartDate.String() == "2025-03-01" && req.EndDate.String() == "2025-03-31"
	})).Return(&getAvailableDays.Response{ServiceID: "corte_barba", AvailableDays: []types.Date{d1, d2}}, nil)

	h := NewHandler(uc, logger.NewNop())
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/v1/slots/days",
		strings.NewReader(`{"serviceId":"corte_barba","startDate":"2025-03-01","endDate":"2025-03-31"}`))

	h.Handle(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"serviceId":"corte_barba","availableDays":["2025-03-03","2025-03-05"]}`, w.Body.String())
}

func TestHandle_EmptyResultIsArray(t *testing.T) {
	uc := new(mockUseCase)
	uc.On("Execute", mock.Anything, mock.Anything).Return(&getAvailableDays.Response{ServiceID: "corte_barba"}, nil)

	h := NewHandler(uc, logger.NewNop())
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/v1/slots/days",
		strings.NewReader(`{"serviceId":"corte_barba","startDate":"2025-03-01","endDate":"2025-03-02"}`))

	h.Handle(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"availableDays":[]`)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"bad json", `{`, nil, http.StatusBadRequest},
		{"bad date", `{"serviceId":"x","startDate":"1 March","endDate":"2025-03-31"}`, nil, http.StatusBadRequest},
		{"inverted range", `{"serviceId":"x","startDate":"2025-03-31","endDate":"2025-03-01"}`, getAvailableDays.ErrInvalidRange, http.StatusBadRequest},
		{"range too long", `{"serviceId":"x","startDate":"2025-01-01","endDate":"2025-12-31"}`, getAvailableDays.ErrRangeTooLong, http.StatusBadRequest},
		{"unknown service", `{"serviceId":"x","startDate":"2025-03-01","endDate":"2025-03-31"}`, getAvailableDays.ErrServiceNotFound, http.StatusNotFound},
		{"store down", `{"serviceId":"x","startDate":"2025-03-01","endDate":"2025-03-31"}`, getAvailableDays.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := new(mockUseCase)
			if tt.err != nil {
				uc.On("Execute", mock.Anything, mock.Anything).Return(nil, tt.err)
			}

			h := NewHandler(uc, logger.NewNop())
			w := httptest.NewRecorder()

			h.Handle(w, httptest.NewRequest(http.MethodPost, "/api/v1/slots/days", strings.NewReader(tt.body)))

			assert.Equal(t, tt.status, w.Code)
			if tt.err == nil {
				uc.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
			}
		})
	}
}
