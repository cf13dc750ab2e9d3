package availability

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	"github.com/m04kA/SMC-SalonBooking/pkg/types"
)

func TestAvailableDays_FullyBookedDayExcluded(t *testing.T) {
	g := newGenerator(t, 0)
	now := on(monday.AddDays(-1), 8, 0)

	// Понедельник занят целиком, вторник свободен
	existing := []domain.Reservation{
		reservation("m1", on(monday, 9, 0), 4*60, domain.StatusConfirmed),
		reservation("m2", on(monday, 16, 0), 4*60, domain.StatusConfirmed),
	}

	got := g.AvailableDays(monday, monday.AddDays(6), beard, map[string][]domain.Reservation{"ana": existing}, now)

	assert.Equal(t, []types.Date{
		monday.AddDays(1), monday.AddDays(2), monday.AddDays(3), monday.AddDays(4), monday.AddDays(5),
	}, got)
}

func TestAvailableDays_InvertedRange(t *testing.T) {
	g := newGenerator(t, 0)
	got := g.AvailableDays(monday.AddDays(1), monday, beard, map[string][]domain.Reservation{"ana": nil}, on(monday, 8, 0))
	assert.Empty(t, got)
}

// Дата входит в результат тогда и только тогда, когда в этот день есть слоты
func TestAvailableDays_EquivalentToSlots(t *testing.T) {
	g := newGenerator(t, 45*time.Minute)
	rnd := rand.New(rand.NewSource(7))
	start := monday
	end := monday.AddDays(20)
	now := on(monday, 11, 20)

	for iter := 0; iter < 30; iter++ {
		byPro := map[string][]domain.Reservation{"ana": nil, "luis": nil}
		for pro := range byPro {
			var list []domain.Reservation
			for i := 0; i < 60; i++ {
				day := start.AddDays(rnd.Intn(21))
				startAt := on(day, 9, 0).Add(time.Duration(rnd.Intn(44)) * 15 * time.Minute)
				list = append(list, reservation(pro, startAt, 30*(1+rnd.Intn(6)), domain.StatusConfirmed))
			}
			byPro[pro] = list
		}

		days := g.AvailableDays(start, end, beard, byPro, now)
		inResult := make(map[types.Date]bool, len(days))
		for _, d := range days {
			inResult[d] = true
		}

		for d := start; !d.After(end); d = d.AddDays(1) {
			hasSlots := len(g.SlotsForAny(d, beard, byPro, now)) > 0
			assert.Equal(t, hasSlots, inResult[d], "iteration %d date %s", iter, d)
		}
	}
}
