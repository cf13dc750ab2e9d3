package create_reservation

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	"github.com/m04kA/SMC-SalonBooking/pkg/ptr"
)

// validateRequest валидирует и нормализует входные данные запроса
func validateRequest(req *Request) error {
	req.ServiceID = strings.TrimSpace(req.ServiceID)
	req.ProfessionalID = strings.TrimSpace(req.ProfessionalID)
	req.Customer.Name = strings.TrimSpace(req.Customer.Name)
	req.Customer.Phone = strings.TrimSpace(req.Customer.Phone)

	if req.ServiceID == "" {
		return fmt.Errorf("%w: serviceId is required", ErrInvalidInput)
	}
	if req.ProfessionalID == "" {
		return fmt.Errorf("%w: professionalId is required", ErrInvalidInput)
	}
	if req.Start.IsZero() {
		return fmt.Errorf("%w: start is required", ErrInvalidInput)
	}
	if req.Customer.Name == "" {
		return fmt.Errorf("%w: customer name is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(req.Customer.Name) > domain.MaxCustomerNameLength {
		return fmt.Errorf("%w: customer name is longer than %d characters", ErrInvalidInput, domain.MaxCustomerNameLength)
	}
	if req.Customer.Phone == "" {
		return fmt.Errorf("%w: customer phone is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(req.Customer.Phone) > domain.MaxCustomerPhoneLength {
		return fmt.Errorf("%w: customer phone is longer than %d characters", ErrInvalidInput, domain.MaxCustomerPhoneLength)
	}
	if req.Customer.Email != nil && !strings.Contains(*req.Customer.Email, "@") {
		return fmt.Errorf("%w: customer email is malformed", ErrInvalidInput)
	}
	if req.Notes != nil && utf8.RuneCountInString(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes are longer than %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}
	if req.IdempotencyKey != nil {
		key := strings.TrimSpace(*req.IdempotencyKey)
		if key == "" || len(key) > domain.MaxIdempotencyKeyLength {
			return fmt.Errorf("%w: idempotency key must be 1..%d characters", ErrInvalidInput, domain.MaxIdempotencyKeyLength)
		}
		req.IdempotencyKey = &key
	}
	return nil
}

// requestHash отпечаток запроса для ключа идемпотентности
func requestHash(req *Request) string {
	h := sha256.New()
	for _, part := range []string{
		req.ServiceID,
		req.ProfessionalID,
		req.Start.UTC().Format(time.RFC3339Nano),
		req.Customer.Name,
		req.Customer.Phone,
		ptr.Deref(req.Customer.Email, ""),
		ptr.Deref(req.Notes, ""),
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
