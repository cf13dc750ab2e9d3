package domain

import "time"

// SlotCandidate допустимое время начала услуги; вычисляется на каждый запрос и не хранится
type SlotCandidate struct {
	Start time.Time
}
