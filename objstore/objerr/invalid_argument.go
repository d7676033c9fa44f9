package objerr

import (
	"errors"
	"fmt"
)

// InvalidArgumentError indicates that a request argument was malformed or unsupported.
type InvalidArgumentError struct {
	Reason string
}

// Error implements the 'error' interface.
func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument: %s", e.Reason)
}

// IsInvalidArgumentError returns a boolean indicating whether the given error is an 'InvalidArgumentError'.
func IsInvalidArgumentError(err error) bool {
	var invalidArgumentError *InvalidArgumentError
	return errors.As(err, &invalidArgumentError)
}
