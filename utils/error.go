package utils

import (
	"errors"
	"fmt"
)

var ErrorRecordNotFound = errors.New("record not found")

// ErrorValidation is the base for malformed-input failures; wrap it with
// ValidationErrorf so callers can branch with errors.Is.
var ErrorValidation = errors.New("validation failed")

// Login failures carry a specific reason; the HTTP layer surfaces both as 401.
var (
	ErrorUserNotFound    = errors.New("user not found")
	ErrorInvalidPassword = errors.New("invalid password")
)

func ValidationErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrorValidation, fmt.Sprintf(format, args...))
}
