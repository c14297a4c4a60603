package service

import "errors"

var (
	// ErrMissingField - обязательное поле заявки пустое после обрезки пробелов.
	ErrMissingField = errors.New("missing required field")
	// ErrInvalidField - поле заявки заполнено, но значение недопустимо.
	ErrInvalidField = errors.New("invalid field value")
	// ErrFutureDate - дата происшествия позже сегодняшнего дня.
	ErrFutureDate = errors.New("incident date is in the future")
	// ErrPersistence - ошибка сохранения в базу данных.
	ErrPersistence = errors.New("failed to persist incident")
)
