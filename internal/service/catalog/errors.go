package catalog

import (
	"fmt"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
)

var (
	// ErrServiceNotFound услуга не существует или не активна
	ErrServiceNotFound = fmt.Errorf("%w: service not found", domain.ErrNotFound)

	// ErrProfessionalNotFound мастер не существует или не активен
	ErrProfessionalNotFound = fmt.Errorf("%w: professional not found", domain.ErrNotFound)

	// ErrInternal ошибка чтения справочника
	ErrInternal = fmt.Errorf("%w: catalog: internal error", domain.ErrInfrastructure)
)
