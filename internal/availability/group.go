package availability

import "github.com/m04kA/SMC-SalonBooking/internal/domain"

// ByProfessional раскладывает брони по мастерам. Каждый мастер из professionalIDs
// присутствует в результате, даже без броней: свободный мастер тоже участвует в подборе.
func ByProfessional(professionalIDs []string, reservations []domain.Reservation) map[string][]domain.Reservation {
	grouped := make(map[string][]domain.Reservation, len(professionalIDs))
	for _, id := range professionalIDs {
		grouped[id] = []domain.Reservation{}
	}
	for _, r := range reservations {
		if _, ok := grouped[r.ProfessionalID]; ok {
			grouped[r.ProfessionalID] = append(grouped[r.ProfessionalID], r)
		}
	}
	return grouped
}
