package domain

import "time"

// Service услуга салона (справочные данные каталога)
type Service struct {
	ID              string
	Name            string
	DurationMinutes int
	PriceCents      int64
	Active          bool
	SortOrder       int
}

// Duration длительность услуги
func (s Service) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}

// Professional мастер и список услуг, которые он оказывает
type Professional struct {
	ID         string
	Name       string
	ServiceIDs []string
	Active     bool
}

// Offers true, если мастер оказывает услугу serviceID
func (p Professional) Offers(serviceID string) bool {
	for _, id := range p.ServiceIDs {
		if id == serviceID {
			return true
		}
	}
	return false
}
