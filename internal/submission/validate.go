package submission

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var (
	// ErrMissingField indicates that name, email, or message is absent or blank.
	ErrMissingField = errors.New("submission: required field missing")
	// ErrInvalidEmail indicates that the email does not match the address pattern.
	ErrInvalidEmail = errors.New("submission: invalid email format")
	// ErrFieldTooLong indicates that the message exceeds the configured maximum.
	ErrFieldTooLong = errors.New("submission: field exceeds maximum length")
)

// Validator checks payload shape before any side effects run.
type Validator struct {
	maxFieldLength int
}

// NewValidator constructs a Validator bounding the message field at maxFieldLength.
func NewValidator(maxFieldLength int) *Validator {
	if maxFieldLength <= 0 {
		maxFieldLength = DefaultMaxFieldLength
	}
	return &Validator{maxFieldLength: maxFieldLength}
}

// Validate reports the first contract violation in the payload. It is a pure
// function of its input; the length check runs on the raw message, before any
// truncation.
func (v *Validator) Validate(payload Payload) error {
	if strings.TrimSpace(payload.Name) == "" ||
		strings.TrimSpace(payload.Email) == "" ||
		strings.TrimSpace(payload.Message) == "" {
		return ErrMissingField
	}
	if !emailPattern.MatchString(payload.Email) {
		return ErrInvalidEmail
	}
	if utf8.RuneCountInString(payload.Message) > v.maxFieldLength {
		return ErrFieldTooLong
	}
	return nil
}
