package list_reservations

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/m04kA/SMC-SalonBooking/internal/service/reservations/models"
)

// ParseListRequest собирает фильтр агенды из query-параметров
func ParseListRequest(q url.Values) (*models.ListRequest, error) {
	req := &models.ListRequest{}

	if v := q.Get("professionalId"); v != "" {
		req.ProfessionalID = &v
	}
	if v := q.Get("status"); v != "" {
		req.Status = &v
	}

	for _, p := range []struct {
		name string
		dst  **time.Time
	}{
		{"from", &req.From},
		{"to", &req.To},
	} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.name, err)
		}
		*p.dst = &t
	}

	for _, p := range []struct {
		name string
		dst  *uint64
	}{
		{"limit", &req.Limit},
		{"offset", &req.Offset},
	} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.name, err)
		}
		*p.dst = n
	}

	return req, nil
}
