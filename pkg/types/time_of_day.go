package types

import (
	"fmt"
	"time"
)

// TimeFormat формат времени суток
const TimeFormat = "15:04"

// TimeOfDay время суток в минутах от полуночи
type TimeOfDay int

// EndOfDay 24:00, полночь в конце дня; допустим только как конец блока
const EndOfDay TimeOfDay = 24 * 60

// ParseTimeOfDay разбирает время формата HH:MM, включая 24:00
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	if s == "24:00" {
		return EndOfDay, nil
	}
	t, err := time.Parse(TimeFormat, s)
	if err != nil {
		return 0, fmt.Errorf("types: invalid time of day %q: %w", s, err)
	}
	return TimeOfDay(t.Hour()*60 + t.Minute()), nil
}

// On возвращает момент этого времени суток в дату d в поясе loc; 24:00 это полночь следующего дня
func (t TimeOfDay) On(d Date, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, int(t)/60, int(t)%60, 0, 0, loc)
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}
