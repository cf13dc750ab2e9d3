package catalog

import (
	"context"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
)

// CatalogRepository интерфейс справочника услуг и мастеров
type CatalogRepository interface {
	ListServices(ctx context.Context) ([]domain.Service, error)
	ListProfessionals(ctx context.Context) ([]domain.Professional, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
