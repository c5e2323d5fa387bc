package booking

import (
	"errors"
	"fmt"
)

// Domain-level error values returned by the scheduler. The first four form
// the taxonomy the HTTP layer translates to status codes.
var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("table conflict")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrBadRequest        = errors.New("bad request")

	ErrInvalidRestaurantID      = errors.New("invalid restaurant id")
	ErrInvalidReservationID     = errors.New("invalid reservation id")
	ErrInvalidTableID           = errors.New("invalid table id")
	ErrInvalidGuestID           = errors.New("invalid guest id")
	ErrInvalidPartySize         = errors.New("invalid party size")
	ErrInvalidConfirmationCode  = errors.New("invalid confirmation code")
	ErrInvalidCalendarDate      = errors.New("invalid calendar date")
	ErrInvalidClockTime         = errors.New("invalid clock time")
	ErrInvalidTimeWindow        = errors.New("invalid time window")
	ErrInvalidReservationStatus = errors.New("invalid reservation status")
	ErrInvalidReservationSource = errors.New("invalid reservation source")
	ErrInvalidHistoryAction     = errors.New("invalid history action")
	ErrInvalidScheduleConfig    = errors.New("invalid schedule config")
	ErrInvalidServiceConfig     = errors.New("invalid service config")
)

// invalidTransitionError builds the canonical InvalidTransition failure.
func invalidTransitionError(from ReservationStatus, to ReservationStatus) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

// OperationError wraps a failure with a stable operation code.
type OperationError struct {
	operation string
	subject   string
	code      string
	err       error
}

// Error returns the formatted error message.
func (operationError OperationError) Error() string {
	return fmt.Sprintf("%s.%s.%s: %v", operationError.operation, operationError.subject, operationError.code, operationError.err)
}

// Unwrap returns the underlying error.
func (operationError OperationError) Unwrap() error {
	return operationError.err
}

// Operation returns the operation segment.
func (operationError OperationError) Operation() string {
	return operationError.operation
}

// Subject returns the subject segment.
func (operationError OperationError) Subject() string {
	return operationError.subject
}

// Code returns the stable error code segment.
func (operationError OperationError) Code() string {
	return operationError.code
}

// WrapError wraps an error with operation, subject, and code metadata.
func WrapError(operation string, subject string, code string, err error) error {
	if err == nil {
		return nil
	}
	return OperationError{
		operation: operation,
		subject:   subject,
		code:      code,
		err:       err,
	}
}
