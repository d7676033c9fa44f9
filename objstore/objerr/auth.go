package objerr

import "errors"

// ErrUnauthorized is returned when a request carries no credentials, or credentials which could not be verified.
var ErrUnauthorized = errors.New("missing or invalid credentials")

// ErrForbidden is returned when a request carries valid credentials which do not grant access to the requested
// bucket.
var ErrForbidden = errors.New("credentials do not grant access to the requested bucket")
