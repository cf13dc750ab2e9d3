package availability

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	"github.com/m04kA/SMC-SalonBooking/pkg/types"
)

// 2025-03-03 понедельник
var monday = types.Date{Year: 2025, Month: time.March, Day: 3}

func tod(t *testing.T, s string) types.TimeOfDay {
	t.Helper()
	v, err := types.ParseTimeOfDay(s)
	require.NoError(t, err)
	return v
}

func newGenerator(t *testing.T, minLead time.Duration) *Generator {
	t.Helper()
	weekday := []domain.DayBlock{
		{Start: tod(t, "09:00"), End: tod(t, "13:00")},
		{Start: tod(t, "16:00"), End: tod(t, "20:00")},
	}
	cal, err := domain.NewBusinessCalendar(domain.CalendarSettings{
		Location: time.UTC,
		Weekly: map[time.Weekday][]domain.DayBlock{
			time.Monday:    weekday,
			time.Tuesday:   weekday,
			time.Wednesday: weekday,
			time.Thursday:  weekday,
			time.Friday:    weekday,
			time.Saturday:  {{Start: tod(t, "10:00"), End: tod(t, "14:00")}},
		},
		SlotStep:    15 * time.Minute,
		MinLeadTime: minLead,
		MaxHorizon:  183 * 24 * time.Hour,
	})
	require.NoError(t, err)
	return NewGenerator(cal)
}

func on(d types.Date, hour, minute int) time.Time {
	return time.Date(d.Year, d.Month, d.Day, hour, minute, 0, 0, time.UTC)
}

func reservation(id string, start time.Time, minutes int, status domain.ReservationStatus) domain.Reservation {
	return domain.Reservation{
		ID:             id,
		ProfessionalID: "ana",
		ServiceID:      "corte_barba",
		Start:          start,
		End:            start.Add(time.Duration(minutes) * time.Minute),
		Status:         status,
	}
}

func starts(slots []domain.SlotCandidate) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.Start.Format("15:04"))
	}
	return out
}

var beard = domain.Service{ID: "corte_barba", DurationMinutes: 45, PriceCents: 1800, Active: true}

func TestSlots_MondayScenario(t *testing.T) {
	g := newGenerator(t, 0)
	now := on(monday.AddDays(-3), 12, 0)
	existing := []domain.Reservation{reservation("r1", on(monday, 9, 0), 45, domain.StatusConfirmed)}

	got := starts(g.Slots(monday, beard, existing, now))

	assert.NotContains(t, got, "09:00")
	assert.NotContains(t, got, "09:15")
	assert.NotContains(t, got, "09:30")
	assert.Contains(t, got, "09:45")
	assert.Contains(t, got, "12:15")
	assert.NotContains(t, got, "12:30")
	assert.NotContains(t, got, "13:00")
	assert.Equal(t, "16:00", got[11])
	assert.Equal(t, "19:15", got[len(got)-1])
}

func TestSlots_CanceledReservationsNeverBlock(t *testing.T) {
	g := newGenerator(t, 0)
	now := on(monday.AddDays(-1), 12, 0)
	existing := []domain.Reservation{reservation("r1", on(monday, 9, 0), 45, domain.StatusCanceled)}

	got := starts(g.Slots(monday, beard, existing, now))
	assert.Equal(t, "09:00", got[0])
}

func TestSlots_AttendedAndNoShowStillBlock(t *testing.T) {
	g := newGenerator(t, 0)
	now := on(monday.AddDays(-1), 12, 0)
	existing := []domain.Reservation{
		reservation("r1", on(monday, 9, 0), 45, domain.StatusAttended),
		reservation("r2", on(monday, 16, 0), 45, domain.StatusNoShow),
	}

	got := starts(g.Slots(monday, beard, existing, now))
	assert.NotContains(t, got, "09:00")
	assert.NotContains(t, got, "16:00")
}

func TestSlots_LeadTimeFiltersToday(t *testing.T) {
	g := newGenerator(t, 30*time.Minute)
	now := on(monday, 10, 5)

	got := starts(g.Slots(monday, beard, nil, now))
	require.NotEmpty(t, got)
	assert.Equal(t, "10:45", got[0])
}

func TestSlots_ClosedOrOutOfWindow(t *testing.T) {
	g := newGenerator(t, 0)
	now := on(monday, 8, 0)

	sunday := monday.AddDays(-1)
	assert.Empty(t, g.Slots(sunday.AddDays(7), beard, nil, now))
	assert.Empty(t, g.Slots(sunday, beard, nil, now), "past day")
	assert.Empty(t, g.Slots(monday.AddDays(189), beard, nil, now), "beyond horizon")
}

func TestSlots_ServiceLongerThanEveryBlock(t *testing.T) {
	g := newGenerator(t, 0)
	now := on(monday.AddDays(-1), 8, 0)
	long := domain.Service{ID: "tinte", DurationMinutes: 5 * 60}

	assert.Empty(t, g.Slots(monday, long, nil, now))
}

func TestSlotsForAny_UnionOfProfessionals(t *testing.T) {
	g := newGenerator(t, 0)
	now := on(monday.AddDays(-1), 8, 0)

	byPro := map[string][]domain.Reservation{
		"ana":  {reservation("r1", on(monday, 9, 0), 45, domain.StatusConfirmed)},
		"luis": {reservation("r2", on(monday, 9, 30), 45, domain.StatusConfirmed)},
	}

	got := starts(g.SlotsForAny(monday, beard, byPro, now))
	assert.Contains(t, got, "09:00", "luis is free at 09:00")
	assert.NotContains(t, got, "09:30", "both busy at 09:30")
	assert.Empty(t, g.SlotsForAny(monday, beard, map[string][]domain.Reservation{}, now))
}

func TestIsFree_ExcludesMovedReservation(t *testing.T) {
	g := newGenerator(t, 0)
	existing := []domain.Reservation{reservation("r1", on(monday, 10, 0), 45, domain.StatusConfirmed)}
	candidate := domain.IntervalOf(on(monday, 10, 0), 45*time.Minute)

	assert.False(t, g.IsFree(candidate, existing, ""))
	assert.True(t, g.IsFree(candidate, existing, "r1"))
}

// Каждый слот свободен, и каждый свободный кандидат сетки попадает в выдачу
func TestSlots_NoFalsePositivesOrNegatives(t *testing.T) {
	g := newGenerator(t, 0)
	now := on(monday.AddDays(-1), 8, 0)
	rnd := rand.New(rand.NewSource(42))

	for iter := 0; iter < 200; iter++ {
		var existing []domain.Reservation
		n := rnd.Intn(6)
		for i := 0; i < n; i++ {
			start := on(monday, 9, 0).Add(time.Duration(rnd.Intn(44)) * 15 * time.Minute)
			status := domain.StatusConfirmed
			if rnd.Intn(4) == 0 {
				status = domain.StatusCanceled
			}
			existing = append(existing, reservation("r", start, 15*(1+rnd.Intn(4)), status))
		}

		got := g.Slots(monday, beard, existing, now)
		gotSet := make(map[time.Time]bool, len(got))
		for _, s := range got {
			gotSet[s.Start] = true
		}

		for _, block := range g.Calendar().OpenIntervalsFor(monday) {
			for start := block.Start; !start.Add(beard.Duration()).After(block.End); start = start.Add(15 * time.Minute) {
				candidate := domain.IntervalOf(start, beard.Duration())
				free := true
				for _, r := range existing {
					if r.Status != domain.StatusCanceled && domain.Overlaps(candidate, r.Interval()) {
						free = false
					}
				}
				assert.Equal(t, free, gotSet[start], "iteration %d start %s", iter, start.Format("15:04"))
			}
		}

		for i := 1; i < len(got); i++ {
			assert.True(t, got[i-1].Start.Before(got[i].Start))
		}
	}
}

func TestByProfessional_KeepsIdleProfessionals(t *testing.T) {
	g := newGenerator(t, 0)
	busy := reservation("r1", on(monday, 9, 0), 240, domain.StatusConfirmed)
	busy.ProfessionalID = "ana"
	stray := reservation("r2", on(monday, 9, 0), 30, domain.StatusConfirmed)
	stray.ProfessionalID = "someone_else"

	grouped := ByProfessional([]string{"ana", "luis"}, []domain.Reservation{busy, stray})
	require.Len(t, grouped, 2)
	assert.Empty(t, grouped["luis"])

	now := on(monday, 8, 0)
	got := g.SlotsForAny(monday, domain.Service{ID: "corte_cabello", DurationMinutes: 30}, grouped, now)
	require.NotEmpty(t, got)
	assert.Equal(t, on(monday, 9, 0), got[0].Start)
}
