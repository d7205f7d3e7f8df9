package calendar

import (
	"errors"
	"fmt"
)

// ErrNoCalendars is returned when the account cannot write to any calendar.
var ErrNoCalendars = errors.New("no writable calendars")

// APIError records which calendar operation failed.
type APIError struct {
	Op  string
	Err error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("calendar %s: %v", e.Op, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}
