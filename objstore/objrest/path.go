package objrest

import (
	"net/url"
	"strings"

	"github.com/couchbaselabs/s3lite/objstore/objerr"
)

// address is the bucket/key pair a request addresses; an empty key denotes a bucket-level request.
type address struct {
	bucket string
	key    string
}

// parseAddress splits a path-style S3 url into its bucket and key. The first non-empty segment is the bucket,
// everything beyond the following '/' is the key, trailing slashes included, percent-decoded exactly once.
func parseAddress(path string) (address, error) {
	rawBucket, rawKey, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	if rawBucket == "" {
		return address{}, &objerr.NotFoundError{Type: "bucket", Name: rawBucket}
	}

	bucket, err := url.PathUnescape(rawBucket)
	if err != nil {
		return address{}, &objerr.InvalidArgumentError{Reason: "The request path could not be decoded"}
	}

	key, err := url.PathUnescape(rawKey)
	if err != nil {
		return address{}, &objerr.InvalidArgumentError{Reason: "The request path could not be decoded"}
	}

	return address{bucket: bucket, key: key}, nil
}
