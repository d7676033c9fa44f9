package objerr

import (
	"errors"
	"fmt"
)

// InvalidPartError indicates that a multipart upload could not be completed from the parts uploaded so far, for
// example because there are none.
type InvalidPartError struct {
	UploadID string
}

// Error implements the 'error' interface.
func (e *InvalidPartError) Error() string {
	return fmt.Sprintf("upload '%s' has no valid parts to assemble", e.UploadID)
}

// IsInvalidPartError returns a boolean indicating whether the given error is an 'InvalidPartError'.
func IsInvalidPartError(err error) bool {
	var invalidPartError *InvalidPartError
	return errors.As(err, &invalidPartError)
}
