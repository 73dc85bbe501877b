package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrVacancyOutOfRange = errors.New("vacancies out of range")
	ErrBusy              = errors.New("update already in progress")
	ErrUnauthenticated   = errors.New("not signed in")
	ErrBadCredentials    = errors.New("invalid email or password")
)
