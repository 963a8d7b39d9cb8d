package services

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// fieldMessages maps "Field.tag" validator failures to the reason shown to
// the user. Failures without an entry fall back to a generic message.
type fieldMessages map[string]string

// firstViolation converts the first validator failure into a ValidationError.
func firstViolation(err error, messages fieldMessages) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return fmt.Errorf("validation failed: %w", err)
	}
	e := validationErrors[0]
	if msg, ok := messages[e.Field()+"."+e.Tag()]; ok {
		return invalid(e.Field(), msg)
	}
	if msg, ok := messages[e.Field()]; ok {
		return invalid(e.Field(), msg)
	}
	return invalid(e.Field(), fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag()))
}
