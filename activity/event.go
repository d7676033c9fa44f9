package activity

import (
	"time"

	"github.com/couchbaselabs/s3lite/objstore/objval"
)

// Event describes a single handled request as delivered to subscribers.
type Event struct {
	// Method is the HTTP method of the request.
	Method string `json:"method"`

	// Path is the request path including any query string.
	Path string `json:"path"`

	// Status is the HTTP status the request was answered with.
	Status int `json:"status"`

	// Duration is how long handling took, in milliseconds.
	Duration int64 `json:"duration"`

	// Timestamp is when the request completed.
	Timestamp string `json:"timestamp"`
}

// NewEvent constructs the event for a request handled now.
func NewEvent(method, path string, status int, duration time.Duration) Event {
	return Event{
		Method:    method,
		Path:      path,
		Status:    status,
		Duration:  duration.Milliseconds(),
		Timestamp: time.Now().UTC().Format(objval.ISO8601),
	}
}
