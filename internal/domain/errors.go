package domain

import "errors"

// Категории ошибок ядра. Ошибки usecase-ов оборачивают ровно одну из них,
// так что вызывающий код может проверять и конкретную ошибку, и категорию.
var (
	// ErrConflict запрошенный интервал уже занят на момент фиксации
	ErrConflict = errors.New("conflict")

	// ErrNotFound бронь, услуга или мастер не существует
	ErrNotFound = errors.New("not found")

	// ErrValidation некорректные входные данные, хранилище не затрагивалось
	ErrValidation = errors.New("validation failed")

	// ErrInfrastructure отказ хранилища или сети; запрос можно повторить
	ErrInfrastructure = errors.New("infrastructure failure")
)
