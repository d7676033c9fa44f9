package objval

// ListObjectsResult is a single page of objects/common prefixes returned when listing a bucket.
type ListObjectsResult struct {
	// Objects are the attributes of the objects which fell within the requested page, in key order.
	Objects []ObjectAttrs

	// CommonPrefixes are the distinct delimiter-terminated groupings of the keys which fell within the requested page.
	CommonPrefixes []string

	// Truncated indicates more results exist beyond this page.
	Truncated bool

	// NextContinuationToken is the pagination cursor for the next page; only populated when truncated. The token is the
	// raw string value of the last retained item, be that a key or a common prefix.
	NextContinuationToken string
}

// ListUploadsResult is a single page of in-progress multipart uploads returned when listing a bucket.
type ListUploadsResult struct {
	// Uploads are the sessions which fell within the requested page, ordered by key then upload id.
	Uploads []Upload

	// Truncated indicates more results exist beyond this page.
	Truncated bool

	// NextKeyMarker is the key of the last returned session; only populated when truncated.
	NextKeyMarker string

	// NextUploadIDMarker is the upload id of the last returned session; only populated when truncated.
	NextUploadIDMarker string
}
