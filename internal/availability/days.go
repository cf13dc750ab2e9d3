package availability

import (
	"time"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	"github.com/m04kA/SMC-SalonBooking/pkg/types"
)

// AvailableDays даты диапазона [start, end], в которых есть хотя бы один свободный слот
// у кого-либо из мастеров. byProfessional: брони каждого мастера за весь диапазон.
// Для каждого дня поиск останавливается на первом найденном слоте.
// Результат отсортирован по возрастанию.
func (g *Generator) AvailableDays(
	start, end types.Date,
	service domain.Service,
	byProfessional map[string][]domain.Reservation,
	now time.Time,
) []types.Date {
	days := make([]types.Date, 0)
	if end.Before(start) {
		return days
	}

	byDay := g.groupByDay(byProfessional)

	for date := start; !date.After(end); date = date.AddDays(1) {
		dayReservations := make(map[string][]domain.Reservation, len(byProfessional))
		for professionalID := range byProfessional {
			dayReservations[professionalID] = byDay[professionalID][date]
		}

		if len(g.scan(date, service, g.calendar.OpenIntervalsFor(date), busySets(dayReservations), now, true)) > 0 {
			days = append(days, date)
		}
	}

	return days
}

// groupByDay раскладывает брони по всем дням (в поясе салона), которые они задевают
func (g *Generator) groupByDay(byProfessional map[string][]domain.Reservation) map[string]map[types.Date][]domain.Reservation {
	grouped := make(map[string]map[types.Date][]domain.Reservation, len(byProfessional))
	for professionalID, reservations := range byProfessional {
		days := make(map[types.Date][]domain.Reservation)
		for _, r := range reservations {
			first := g.calendar.DateOf(r.Start)
			last := g.calendar.DateOf(r.End.Add(-time.Nanosecond))
			for d := first; !d.After(last); d = d.AddDays(1) {
				days[d] = append(days[d], r)
			}
		}
		grouped[professionalID] = days
	}
	return grouped
}
