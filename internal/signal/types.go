package signal

import "fmt"

// SignalError represents an error that occurred during Signal operations
type SignalError struct {
	// Op is the operation that failed (e.g., "send", "sendGroup", "listGroups")
	Op string

	// UserID is the phone number associated with the operation
	UserID string

	Err error
}

func (e *SignalError) Error() string {
	if e.UserID != "" {
		return fmt.Sprintf("signal %s (user: %s): %v", e.Op, e.UserID, e.Err)
	}
	return fmt.Sprintf("signal %s: %v", e.Op, e.Err)
}

func (e *SignalError) Unwrap() error {
	return e.Err
}

// Group is a Signal group the account belongs to.
type Group struct {
	ID   string
	Name string
}
