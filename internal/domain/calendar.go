package domain

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/m04kA/SMC-SalonBooking/pkg/types"
)

// ErrInvalidCalendar ошибка конфигурации календаря, фатальна при старте
var ErrInvalidCalendar = errors.New("domain: invalid business calendar")

// DayBlock открытый блок внутри дня, например 10:00-14:00
type DayBlock struct {
	Start types.TimeOfDay
	End   types.TimeOfDay
}

// CalendarSettings параметры для построения BusinessCalendar
type CalendarSettings struct {
	Location    *time.Location
	Weekly      map[time.Weekday][]DayBlock
	SlotStep    time.Duration
	MinLeadTime time.Duration
	MaxHorizon  time.Duration
}

// BusinessCalendar рабочие часы салона и окно предварительной записи.
// После создания не меняется, безопасен для конкурентного использования.
type BusinessCalendar struct {
	location    *time.Location
	weekly      map[time.Weekday][]DayBlock
	slotStep    time.Duration
	minLeadTime time.Duration
	maxHorizon  time.Duration
}

// NewBusinessCalendar проверяет настройки и строит календарь.
// Блоки каждого дня сортируются; пересекающиеся блоки и нулевой шаг сетки отклоняются.
func NewBusinessCalendar(s CalendarSettings) (*BusinessCalendar, error) {
	if s.Location == nil {
		return nil, fmt.Errorf("%w: location is required", ErrInvalidCalendar)
	}
	if s.SlotStep <= 0 {
		return nil, fmt.Errorf("%w: slot step must be positive, got %s", ErrInvalidCalendar, s.SlotStep)
	}
	if s.MinLeadTime < 0 {
		return nil, fmt.Errorf("%w: min lead time must not be negative", ErrInvalidCalendar)
	}
	if s.MaxHorizon <= 0 {
		return nil, fmt.Errorf("%w: max horizon must be positive", ErrInvalidCalendar)
	}

	weekly := make(map[time.Weekday][]DayBlock, len(s.Weekly))
	for day, blocks := range s.Weekly {
		sorted := make([]DayBlock, len(blocks))
		copy(sorted, blocks)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

		for i, b := range sorted {
			if b.Start >= b.End {
				return nil, fmt.Errorf("%w: %s block %s-%s is empty", ErrInvalidCalendar, day, b.Start, b.End)
			}
			if i > 0 && sorted[i-1].End > b.Start {
				return nil, fmt.Errorf("%w: %s blocks %s-%s and %s-%s overlap",
					ErrInvalidCalendar, day, sorted[i-1].Start, sorted[i-1].End, b.Start, b.End)
			}
		}
		if len(sorted) > 0 {
			weekly[day] = sorted
		}
	}

	return &BusinessCalendar{
		location:    s.Location,
		weekly:      weekly,
		slotStep:    s.SlotStep,
		minLeadTime: s.MinLeadTime,
		maxHorizon:  s.MaxHorizon,
	}, nil
}

func (c *BusinessCalendar) Location() *time.Location {
	return c.location
}

func (c *BusinessCalendar) SlotStep() time.Duration {
	return c.slotStep
}

func (c *BusinessCalendar) MinLeadTime() time.Duration {
	return c.minLeadTime
}

func (c *BusinessCalendar) MaxHorizon() time.Duration {
	return c.maxHorizon
}

// DateOf календарная дата момента t в поясе салона
func (c *BusinessCalendar) DateOf(t time.Time) types.Date {
	return types.DateOf(t.In(c.location))
}

// DayBounds интервал [00:00, 00:00 следующего дня) даты в поясе салона
func (c *BusinessCalendar) DayBounds(date types.Date) Interval {
	return Interval{Start: date.In(c.location), End: date.AddDays(1).In(c.location)}
}

// OpenIntervalsFor открытые блоки дня в абсолютном времени; пустой список для выходного
func (c *BusinessCalendar) OpenIntervalsFor(date types.Date) []Interval {
	blocks := c.weekly[date.Weekday()]
	if len(blocks) == 0 {
		return nil
	}

	intervals := make([]Interval, 0, len(blocks))
	for _, b := range blocks {
		intervals = append(intervals, Interval{
			Start: b.Start.On(date, c.location),
			End:   b.End.On(date, c.location),
		})
	}
	return intervals
}

// IsBookable instant >= now + minLeadTime && instant <= now + maxHorizon
func (c *BusinessCalendar) IsBookable(instant, now time.Time) bool {
	return !instant.Before(now.Add(c.minLeadTime)) && !instant.After(now.Add(c.maxHorizon))
}

// IsDayInWindow true, если хотя бы часть дня попадает в окно записи
func (c *BusinessCalendar) IsDayInWindow(date types.Date, now time.Time) bool {
	day := c.DayBounds(date)
	earliest := now.Add(c.minLeadTime)
	latest := now.Add(c.maxHorizon)
	return day.End.After(earliest) && !day.Start.After(latest)
}

// FitsSchedule true, если интервал целиком лежит в открытом блоке своего дня
// и его начало стоит на сетке шага от начала блока
func (c *BusinessCalendar) FitsSchedule(iv Interval) bool {
	for _, block := range c.OpenIntervalsFor(c.DateOf(iv.Start)) {
		if !Contains(block, iv) {
			continue
		}
		return iv.Start.Sub(block.Start)%c.slotStep == 0
	}
	return false
}
