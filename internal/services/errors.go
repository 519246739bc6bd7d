package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Common service errors
var (
	ErrNotFound        = errors.New("record not found")
	ErrInvalidPassword = errors.New("invalid password")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInvalidState    = errors.New("invalid state transition")
	ErrDuplicate       = errors.New("duplicate record")
)

// ValidationError is a user input problem. Its message is safe to show as is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// MessageError carries a user-facing message for one of the sentinel errors above
type MessageError struct {
	Kind    error
	Message string
}

func (e *MessageError) Error() string {
	return e.Message
}

func (e *MessageError) Unwrap() error {
	return e.Kind
}

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func notFound(format string, args ...any) error {
	return &MessageError{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

func duplicate(format string, args ...any) error {
	return &MessageError{Kind: ErrDuplicate, Message: fmt.Sprintf(format, args...)}
}

// translate maps store sentinels onto service errors; anything else passes through
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound("%s not found.", what)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return duplicate("%s already exists.", what)
	}
	return err
}
