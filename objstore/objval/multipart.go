package objval

import "time"

// Part represents a single part of an in-progress multipart upload.
type Part struct {
	// Number is the number assigned to the part, used for the ordering of parts upon completion.
	Number int

	// Size is the size of the part in bytes.
	Size int64

	// ETag is the hex encoded MD5 of the part body.
	ETag string
}

// Upload represents an in-progress multipart upload session.
type Upload struct {
	// UploadID uniquely identifies the session.
	UploadID string

	// Key is the key the completed object will be created at.
	Key string

	// Initiated is the time the session was created.
	Initiated time.Time
}
