package models

import "github.com/m04kA/SMC-SalonBooking/internal/domain"

// ServiceResponse услуга в ответе API
type ServiceResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"durationMinutes"`
	PriceCents      int64  `json:"priceCents"`
}

// ProfessionalResponse мастер в ответе API
type ProfessionalResponse struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	ServiceIDs []string `json:"serviceIds"`
}

// FromDomainServices конвертирует услуги в ответ
func FromDomainServices(services []domain.Service) []ServiceResponse {
	result := make([]ServiceResponse, 0, len(services))
	for _, s := range services {
		result = append(result, ServiceResponse{
			ID:              s.ID,
			Name:            s.Name,
			DurationMinutes: s.DurationMinutes,
			PriceCents:      s.PriceCents,
		})
	}
	return result
}

// FromDomainProfessionals конвертирует мастеров в ответ
func FromDomainProfessionals(professionals []domain.Professional) []ProfessionalResponse {
	result := make([]ProfessionalResponse, 0, len(professionals))
	for _, p := range professionals {
		ids := p.ServiceIDs
		if ids == nil {
			ids = []string{}
		}
		result = append(result, ProfessionalResponse{ID: p.ID, Name: p.Name, ServiceIDs: ids})
	}
	return result
}
