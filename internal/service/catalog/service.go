package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	"github.com/m04kA/SMC-SalonBooking/internal/service/catalog/models"
)

const (
	servicesKey      = "services"
	professionalsKey = "professionals"
)

// Service справочник услуг и мастеров. Списки кэшируются целиком на ttl:
// справочник меняется редко, а нужен в каждом запросе слотов.
// Брони здесь не кэшируются никогда.
type Service struct {
	repo          CatalogRepository
	logger        Logger
	services      *expirable.LRU[string, []domain.Service]
	professionals *expirable.LRU[string, []domain.Professional]
}

// NewService создает сервис справочника. ttl <= 0 отключает кэш.
func NewService(repo CatalogRepository, logger Logger, ttl time.Duration) *Service {
	s := &Service{repo: repo, logger: logger}
	if ttl > 0 {
		s.services = expirable.NewLRU[string, []domain.Service](1, nil, ttl)
		s.professionals = expirable.NewLRU[string, []domain.Professional](1, nil, ttl)
	}
	return s
}

// ListServices активные услуги
func (s *Service) ListServices(ctx context.Context) ([]domain.Service, error) {
	if s.services != nil {
		if cached, ok := s.services.Get(servicesKey); ok {
			return cached, nil
		}
	}

	services, err := s.repo.ListServices(ctx)
	if err != nil {
		s.logger.Error("ListServices: repository error: %v", err)
		return nil, fmt.Errorf("%w: ListServices - repository error: %v", ErrInternal, err)
	}

	if s.services != nil {
		s.services.Add(servicesKey, services)
	}
	return services, nil
}

// ListProfessionals активные мастера
func (s *Service) ListProfessionals(ctx context.Context) ([]domain.Professional, error) {
	if s.professionals != nil {
		if cached, ok := s.professionals.Get(professionalsKey); ok {
			return cached, nil
		}
	}

	professionals, err := s.repo.ListProfessionals(ctx)
	if err != nil {
		s.logger.Error("ListProfessionals: repository error: %v", err)
		return nil, fmt.Errorf("%w: ListProfessionals - repository error: %v", ErrInternal, err)
	}

	if s.professionals != nil {
		s.professionals.Add(professionalsKey, professionals)
	}
	return professionals, nil
}

// GetService активная услуга по ID
func (s *Service) GetService(ctx context.Context, id string) (*domain.Service, error) {
	services, err := s.ListServices(ctx)
	if err != nil {
		return nil, err
	}
	for i := range services {
		if services[i].ID == id {
			svc := services[i]
			return &svc, nil
		}
	}
	s.logger.Warn("GetService: service id=%s not found", id)
	return nil, ErrServiceNotFound
}

// GetProfessional активный мастер по ID
func (s *Service) GetProfessional(ctx context.Context, id string) (*domain.Professional, error) {
	professionals, err := s.ListProfessionals(ctx)
	if err != nil {
		return nil, err
	}
	for i := range professionals {
		if professionals[i].ID == id {
			p := professionals[i]
			return &p, nil
		}
	}
	s.logger.Warn("GetProfessional: professional id=%s not found", id)
	return nil, ErrProfessionalNotFound
}

// ProfessionalsForService активные мастера, оказывающие услугу, в порядке ID
func (s *Service) ProfessionalsForService(ctx context.Context, serviceID string) ([]domain.Professional, error) {
	professionals, err := s.ListProfessionals(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]domain.Professional, 0, len(professionals))
	for _, p := range professionals {
		if p.Offers(serviceID) {
			result = append(result, p)
		}
	}
	return result, nil
}

// Invalidate сбрасывает кэш справочника
func (s *Service) Invalidate() {
	if s.services != nil {
		s.services.Purge()
		s.professionals.Purge()
	}
}

// GetServices ответ для GET /services
func (s *Service) GetServices(ctx context.Context) ([]models.ServiceResponse, error) {
	services, err := s.ListServices(ctx)
	if err != nil {
		return nil, err
	}
	return models.FromDomainServices(services), nil
}

// GetProfessionals ответ для GET /professionals, опционально только оказывающие serviceID
func (s *Service) GetProfessionals(ctx context.Context, serviceID *string) ([]models.ProfessionalResponse, error) {
	var (
		professionals []domain.Professional
		err           error
	)
	if serviceID != nil {
		if _, err := s.GetService(ctx, *serviceID); err != nil {
			return nil, err
		}
		professionals, err = s.ProfessionalsForService(ctx, *serviceID)
	} else {
		professionals, err = s.ListProfessionals(ctx)
	}
	if err != nil {
		return nil, err
	}
	return models.FromDomainProfessionals(professionals), nil
}
