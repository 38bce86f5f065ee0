package service

import "errors"

var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// FieldError is a validation failure tied to one request field.
type FieldError struct {
	Field string
	Msg   string
}

func (e *FieldError) Error() string { return e.Msg }

func (e *FieldError) Is(target error) bool { return target == ErrValidation }

func invalid(field, msg string) error {
	return &FieldError{Field: field, Msg: msg}
}
