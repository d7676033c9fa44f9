// Package objval exposes the value types used when interacting with objects stored in a tenant store.
package objval

import "time"

// ObjectAttrs represents the metadata attached to an object in a tenant store.
type ObjectAttrs struct {
	// Key is the identifier for the object; a unique path.
	Key string

	// ETag is the HTTP entity tag for the object; the hex encoded MD5 of the body for objects created by a single
	// upload, a synthetic '<hex>-<parts>' value for objects assembled from a multipart upload.
	ETag string

	// Size is the size or content length of the object in bytes.
	Size int64

	// LastModified is the time the object was last updated (or created).
	LastModified time.Time

	// ContentType is the MIME type supplied when the object was created, may be empty.
	ContentType string
}

// Object represents an object stored in a tenant store, simply the attributes and its body.
type Object struct {
	ObjectAttrs

	// Body is the entire object body.
	//
	// NOTE: Bodies are buffered; objects are bounded by the memory available to the serving process.
	Body []byte
}
