package objlite

// GetObjectOptions encapsulates the options available when using the 'GetObject' function.
type GetObjectOptions struct {
	// Bucket is the bucket being operated on.
	Bucket string

	// Key is the key (path) of the object being operated on.
	Key string
}

// GetObjectAttrsOptions encapsulates the options available when using the 'GetObjectAttrs' function.
type GetObjectAttrsOptions struct {
	// Bucket is the bucket being operated on.
	Bucket string

	// Key is the key (path) of the object being operated on.
	Key string
}

// PutObjectOptions encapsulates the options available when using the 'PutObject' function.
type PutObjectOptions struct {
	// Bucket is the bucket being operated on.
	Bucket string

	// Key is the key (path) of the object being operated on.
	Key string

	// Body is the data that will be stored.
	//
	// NOTE: Bodies are buffered into chunk rows; a <nil> body is treated as empty.
	Body []byte

	// ContentType is the MIME type recorded against the object, may be empty.
	ContentType string
}

// DeleteObjectOptions encapsulates the options available when using the 'DeleteObject' function.
type DeleteObjectOptions struct {
	// Bucket is the bucket being operated on.
	Bucket string

	// Key is the key (path) of the object being operated on.
	Key string
}

// DeleteObjectsOptions encapsulates the options available when using the 'DeleteObjects' function.
type DeleteObjectsOptions struct {
	// Bucket is the bucket being operated on.
	Bucket string

	// Keys are the keys that will be deleted; keys which do not exist are ignored.
	Keys []string
}

// CopyObjectOptions encapsulates the options available when using the 'CopyObject' function.
type CopyObjectOptions struct {
	// DestinationBucket is the bucket the object will be copied into.
	DestinationBucket string

	// DestinationKey is the key for the copied object.
	DestinationKey string

	// SourceBucket is the bucket containing the object being copied.
	//
	// NOTE: Must match the destination bucket, a tenant store holds exactly one bucket namespace and cross bucket
	// copies are unsupported.
	SourceBucket string

	// SourceKey is the key of the object being copied.
	SourceKey string
}

// CreateMultipartUploadOptions encapsulates the options available when using the 'CreateMultipartUpload' function.
type CreateMultipartUploadOptions struct {
	// Bucket is the bucket being operated on.
	Bucket string

	// Key is the key (path) of the object being operated on.
	Key string

	// ContentType is the MIME type the completed object will carry, may be empty.
	ContentType string
}

// UploadPartOptions encapsulates the options available when using the 'UploadPart' function.
type UploadPartOptions struct {
	// Bucket is the bucket being operated on.
	Bucket string

	// UploadID is the id of the upload being operated on.
	UploadID string

	// Key is the key (path) of the object being operated on.
	Key string

	// Number is the number that will be assigned to the part.
	//
	// NOTE: Should be between 1-10,000 and is used for the ordering of parts upon completion. Re-uploading a number
	// replaces the prior part.
	Number int

	// Body is the data that will be stored.
	Body []byte
}

// ListPartsOptions encapsulates the options available when using the 'ListParts' function.
type ListPartsOptions struct {
	// Bucket is the bucket being operated on.
	Bucket string

	// UploadID is the id of the upload being operated on.
	UploadID string

	// Key is the key (path) of the object being operated on.
	Key string
}

// CompleteMultipartUploadOptions encapsulates the options available when using the 'CompleteMultipartUpload'
// function.
type CompleteMultipartUploadOptions struct {
	// Bucket is the bucket being operated on.
	Bucket string

	// UploadID is the id of the upload being operated on.
	UploadID string

	// Key is the key (path) of the object being operated on.
	Key string
}

// AbortMultipartUploadOptions encapsulates the options available when using the 'AbortMultipartUpload' function.
type AbortMultipartUploadOptions struct {
	// UploadID is the id of the upload being operated on.
	UploadID string
}

// ListUploadsOptions encapsulates the options available when using the 'ListUploads' function.
type ListUploadsOptions struct {
	// Bucket is the bucket being operated on.
	Bucket string

	// Prefix limits the returned sessions to those with keys beginning with the given prefix; matching is literal,
	// '%' and '_' carry no special meaning.
	Prefix string

	// KeyMarker, along with UploadIDMarker, is the pagination cursor; sessions up to and including the cursor are
	// skipped.
	KeyMarker string

	// UploadIDMarker refines the key marker to an exact session; only honored when a key marker is also given.
	UploadIDMarker string

	// MaxUploads caps the number of returned sessions, defaulting (and capped) to 'MaxKeys'.
	MaxUploads int
}

// ListObjectsOptions encapsulates the options available when using the 'ListObjects' function.
type ListObjectsOptions struct {
	// Bucket is the bucket being operated on.
	Bucket string

	// Prefix limits the returned objects to those with keys beginning with the given prefix; matching is literal, '%'
	// and '_' carry no special meaning.
	Prefix string

	// Delimiter groups keys sharing the same substring between the prefix and the first occurrence of the delimiter
	// into a single common prefix entry.
	Delimiter string

	// MaxKeys caps the number of returned items (objects plus common prefixes), defaulting (and capped) to 'MaxKeys'.
	MaxKeys int

	// StartAfter positions the listing immediately after the given key.
	StartAfter string

	// ContinuationToken resumes a truncated listing; the token of the prior page. Takes precedence over 'StartAfter'.
	ContinuationToken string
}
