package idempotency

import "errors"

var (
	// ErrNotInTransaction ключ можно захватить только внутри транзакции создания брони
	ErrNotInTransaction = errors.New("idempotency.repository: transaction required")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("idempotency.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("idempotency.repository: failed to execute query")
)
