package services

import (
	"errors"
	"fmt"
)

// Domain errors surfaced by the rental subsystem. Controllers translate
// these into the response envelope; storage errors never leak past here.
var (
	ErrInvalidDateRange = errors.New("end date must be after start date")
	ErrConflict         = errors.New("car is already rented for this period")
	ErrInvalidStatus    = errors.New("invalid rental status")
)

// ForbiddenError reports an ownership, role or transition violation.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("forbidden: %s", e.Reason)
}

// Forbidden builds a ForbiddenError with a formatted reason.
func Forbidden(format string, args ...interface{}) *ForbiddenError {
	return &ForbiddenError{Reason: fmt.Sprintf(format, args...)}
}

// IsForbidden reports whether err is a ForbiddenError.
func IsForbidden(err error) bool {
	var fe *ForbiddenError
	return errors.As(err, &fe)
}
