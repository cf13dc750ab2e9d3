package availability

import (
	"sort"
	"time"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	"github.com/m04kA/SMC-SalonBooking/pkg/types"
)

// Generator вычисляет свободные слоты по календарю салона и снимку броней.
// Состояния между вызовами не хранит.
type Generator struct {
	calendar *domain.BusinessCalendar
}

// NewGenerator создает генератор. Календарь уже провалидирован (шаг сетки > 0).
func NewGenerator(calendar *domain.BusinessCalendar) *Generator {
	return &Generator{calendar: calendar}
}

// Calendar календарь, по которому работает генератор
func (g *Generator) Calendar() *domain.BusinessCalendar {
	return g.calendar
}

// Slots свободные слоты одного мастера на дату
func (g *Generator) Slots(date types.Date, service domain.Service, reservations []domain.Reservation, now time.Time) []domain.SlotCandidate {
	return g.GenerateSlots(date, service, g.calendar.OpenIntervalsFor(date), reservations, now)
}

// GenerateSlots перебирает кандидатов с шагом сетки внутри каждого открытого блока,
// пока начало + длительность помещается в блок. Кандидат принимается, если не пересекается
// ни с одной активной бронью и попадает в окно записи.
// Результат отсортирован по возрастанию и не содержит дублей.
func (g *Generator) GenerateSlots(
	date types.Date,
	service domain.Service,
	openIntervals []domain.Interval,
	reservations []domain.Reservation,
	now time.Time,
) []domain.SlotCandidate {
	return g.scan(date, service, openIntervals, [][]domain.Interval{busyIntervals(reservations, "")}, now, false)
}

// SlotsForAny слоты, в которые свободен хотя бы один из мастеров.
// Используется, когда клиент не выбрал мастера.
func (g *Generator) SlotsForAny(date types.Date, service domain.Service, byProfessional map[string][]domain.Reservation, now time.Time) []domain.SlotCandidate {
	return g.scan(date, service, g.calendar.OpenIntervalsFor(date), busySets(byProfessional), now, false)
}

// IsFree true, если кандидат не пересекается с активными бронями, кроме excludeID (переносимая бронь)
func (g *Generator) IsFree(candidate domain.Interval, reservations []domain.Reservation, excludeID string) bool {
	return isFree(candidate, busyIntervals(reservations, excludeID))
}

func (g *Generator) scan(
	date types.Date,
	service domain.Service,
	openIntervals []domain.Interval,
	busy [][]domain.Interval,
	now time.Time,
	stopAtFirst bool,
) []domain.SlotCandidate {
	if service.DurationMinutes <= 0 || len(busy) == 0 {
		return []domain.SlotCandidate{}
	}
	// День целиком вне окна записи: дальше считать нечего
	if !g.calendar.IsDayInWindow(date, now) {
		return []domain.SlotCandidate{}
	}

	duration := service.Duration()
	step := g.calendar.SlotStep()

	slots := make([]domain.SlotCandidate, 0)
	for _, block := range openIntervals {
		for start := block.Start; !start.Add(duration).After(block.End); start = start.Add(step) {
			if !g.calendar.IsBookable(start, now) {
				continue
			}
			candidate := domain.IntervalOf(start, duration)
			if !freeInAny(candidate, busy) {
				continue
			}
			slots = append(slots, domain.SlotCandidate{Start: start})
			if stopAtFirst {
				return slots
			}
		}
	}

	return sortUnique(slots)
}

// busyIntervals интервалы активных броней. Отмененные исключаются всегда,
// даже если вызывающий код их не отфильтровал.
func busyIntervals(reservations []domain.Reservation, excludeID string) []domain.Interval {
	busy := make([]domain.Interval, 0, len(reservations))
	for i := range reservations {
		r := &reservations[i]
		if !r.IsActive() || (excludeID != "" && r.ID == excludeID) {
			continue
		}
		busy = append(busy, r.Interval())
	}
	return busy
}

// busySets занятость по каждому мастеру в стабильном порядке id
func busySets(byProfessional map[string][]domain.Reservation) [][]domain.Interval {
	ids := make([]string, 0, len(byProfessional))
	for id := range byProfessional {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	sets := make([][]domain.Interval, 0, len(ids))
	for _, id := range ids {
		sets = append(sets, busyIntervals(byProfessional[id], ""))
	}
	return sets
}

func isFree(candidate domain.Interval, busy []domain.Interval) bool {
	for _, b := range busy {
		if domain.Overlaps(candidate, b) {
			return false
		}
	}
	return true
}

func freeInAny(candidate domain.Interval, sets [][]domain.Interval) bool {
	for _, busy := range sets {
		if isFree(candidate, busy) {
			return true
		}
	}
	return false
}

func sortUnique(slots []domain.SlotCandidate) []domain.SlotCandidate {
	sort.Slice(slots, func(i, j int) bool { return slots[i].Start.Before(slots[j].Start) })

	out := slots[:0]
	for i, s := range slots {
		if i > 0 && s.Start.Equal(out[len(out)-1].Start) {
			continue
		}
		out = append(out, s)
	}
	return out
}
