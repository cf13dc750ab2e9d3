package domain

import (
	"errors"
	"time"
)

// ErrInvalidInterval возвращается, когда start >= end
var ErrInvalidInterval = errors.New("domain: interval start must be before end")

// Interval полуоткрытый интервал времени [Start, End)
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval создает интервал, проверяя Start < End
func NewInterval(start, end time.Time) (Interval, error) {
	if !start.Before(end) {
		return Interval{}, ErrInvalidInterval
	}
	return Interval{Start: start, End: end}, nil
}

// IntervalOf интервал длительностью d, начинающийся в start
func IntervalOf(start time.Time, d time.Duration) Interval {
	return Interval{Start: start, End: start.Add(d)}
}

// Overlaps строгие неравенства: интервалы встык (9:00-9:45 и 9:45-10:00) не пересекаются
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// Contains true, если inner целиком лежит внутри outer
func Contains(outer, inner Interval) bool {
	return !inner.Start.Before(outer.Start) && !outer.End.Before(inner.End)
}

func (i Interval) Overlaps(other Interval) bool {
	return Overlaps(i, other)
}

func (i Interval) Contains(inner Interval) bool {
	return Contains(i, inner)
}

func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}
