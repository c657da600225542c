// Package validation performs structural validation of inbound request
// payloads. Each input type has an explicit validation function returning a
// list of field errors; an empty list means the input is well-formed.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
)

const (
	passwordMinLength = 6
	passwordMaxLength = 72
)

// FieldError describes a single structural problem with an input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) String() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Join renders field errors as a single semicolon-separated message.
func Join(errs []FieldError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.String())
	}
	return strings.Join(parts, "; ")
}

// SignupInput is the payload of a signup request.
type SignupInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

// LoginInput is the payload of a login request. It exists only for the
// duration of the attempt and is never persisted.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ValidateSignup checks the structural shape of a signup payload.
func ValidateSignup(in SignupInput) []FieldError {
	var errs []FieldError
	errs = appendEmailErrors(errs, in.Email)
	errs = appendPasswordErrors(errs, in.Password)
	if in.Phone == "" {
		errs = append(errs, FieldError{Field: "phone", Message: "is required"})
	} else if !phonePattern.MatchString(strings.TrimSpace(in.Phone)) {
		errs = append(errs, FieldError{Field: "phone", Message: "must be a valid phone number"})
	}
	return errs
}

// ValidateLogin checks the structural shape of a login payload.
func ValidateLogin(in LoginInput) []FieldError {
	var errs []FieldError
	errs = appendEmailErrors(errs, in.Email)
	errs = appendPasswordErrors(errs, in.Password)
	return errs
}

func appendEmailErrors(errs []FieldError, email string) []FieldError {
	if email == "" {
		return append(errs, FieldError{Field: "email", Message: "is required"})
	}
	if !emailPattern.MatchString(email) {
		return append(errs, FieldError{Field: "email", Message: "must be a valid email address"})
	}
	return errs
}

func appendPasswordErrors(errs []FieldError, password string) []FieldError {
	if password == "" {
		return append(errs, FieldError{Field: "password", Message: "is required"})
	}
	if len(password) < passwordMinLength || len(password) > passwordMaxLength {
		return append(errs, FieldError{
			Field:   "password",
			Message: fmt.Sprintf("must be between %d and %d characters", passwordMinLength, passwordMaxLength),
		})
	}
	return errs
}
