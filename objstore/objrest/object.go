package objrest

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/couchbaselabs/s3lite/objstore/objerr"
	"github.com/couchbaselabs/s3lite/objstore/objlite"
	"github.com/couchbaselabs/s3lite/objstore/objval"
)

// headBucket reports the addressed bucket as existing; buckets spring into being on first write so there is nothing
// to look up.
func (h *Handler) headBucket(w http.ResponseWriter) error {
	w.WriteHeader(http.StatusOK)
	return nil
}

// getObject serves the body and metadata of an object, or just the metadata for a 'HEAD' request.
func (h *Handler) getObject(ctx context.Context, w http.ResponseWriter, r *http.Request, addr address) error {
	if r.Method == http.MethodHead {
		attrs, err := h.store.GetObjectAttrs(ctx, objlite.GetObjectAttrsOptions{Bucket: addr.bucket, Key: addr.key})
		if err != nil {
			return fmt.Errorf("failed to get object attributes: %w", err)
		}

		writeObjectHeaders(w, attrs)
		w.WriteHeader(http.StatusOK)

		return nil
	}

	object, err := h.store.GetObject(ctx, objlite.GetObjectOptions{Bucket: addr.bucket, Key: addr.key})
	if err != nil {
		return fmt.Errorf("failed to get object: %w", err)
	}

	writeObjectHeaders(w, &object.ObjectAttrs)
	w.WriteHeader(http.StatusOK)

	// The status is on the wire, a failed body write can only be logged
	_, err = w.Write(object.Body)
	if err != nil {
		h.logger.Debug("failed to write object body", "error", err)
	}

	return nil
}

// putObject creates or replaces the addressed object with the request body.
func (h *Handler) putObject(ctx context.Context, w http.ResponseWriter, r *http.Request, addr address) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return fmt.Errorf("failed to read request body: %w", err)
	}

	attrs, err := h.store.PutObject(ctx, objlite.PutObjectOptions{
		Bucket:      addr.bucket,
		Key:         addr.key,
		Body:        body,
		ContentType: contentType(r),
	})
	if err != nil {
		return fmt.Errorf("failed to put object: %w", err)
	}

	w.Header().Set("ETag", quoteETag(attrs.ETag))
	w.WriteHeader(http.StatusOK)

	return nil
}

// deleteObject removes the addressed object; removing a key which does not exist still reports success.
func (h *Handler) deleteObject(ctx context.Context, w http.ResponseWriter, addr address) error {
	err := h.store.DeleteObject(ctx, objlite.DeleteObjectOptions{Bucket: addr.bucket, Key: addr.key})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}

	w.WriteHeader(http.StatusNoContent)

	return nil
}

// deleteObjects removes the batch of keys carried in the request body in a single transaction.
func (h *Handler) deleteObjects(ctx context.Context, w http.ResponseWriter, r *http.Request, addr address) error {
	var request deleteRequest

	err := xml.NewDecoder(r.Body).Decode(&request)
	if err != nil {
		return &objerr.InvalidArgumentError{Reason: "The delete request body could not be decoded"}
	}

	keys := make([]string, 0, len(request.Objects))

	for _, object := range request.Objects {
		keys = append(keys, object.Key)
	}

	err = h.store.DeleteObjects(ctx, objlite.DeleteObjectsOptions{Bucket: addr.bucket, Keys: keys})
	if err != nil {
		return fmt.Errorf("failed to delete objects: %w", err)
	}

	result := deleteResult{Namespace: xmlNamespace}

	// Quiet mode suppresses the per-key echo, the batch is all-or-nothing either way
	if !request.Quiet {
		for _, key := range keys {
			result.Deleted = append(result.Deleted, deleted{Key: key})
		}
	}

	h.writeXML(w, http.StatusOK, result)

	return nil
}

// copyObject copies an existing object to the addressed key within the same bucket.
func (h *Handler) copyObject(ctx context.Context, w http.ResponseWriter, r *http.Request, addr address) error {
	source, err := parseCopySource(r.Header.Get(headerCopySource))
	if err != nil {
		return err
	}

	attrs, err := h.store.CopyObject(ctx, objlite.CopyObjectOptions{
		DestinationBucket: addr.bucket,
		DestinationKey:    addr.key,
		SourceBucket:      source.bucket,
		SourceKey:         source.key,
	})
	if err != nil {
		return fmt.Errorf("failed to copy object: %w", err)
	}

	h.writeXML(w, http.StatusOK, copyObjectResult{
		Namespace:    xmlNamespace,
		LastModified: attrs.LastModified.Format(objval.ISO8601),
		ETag:         quoteETag(attrs.ETag),
	})

	return nil
}

// parseCopySource splits a copy source header into its bucket/key pair; the header carries a path in the same
// percent-encoded form as a request path, with an optional leading slash.
func parseCopySource(header string) (address, error) {
	rawBucket, rawKey, _ := strings.Cut(strings.TrimPrefix(header, "/"), "/")
	if rawBucket == "" || rawKey == "" {
		return address{}, &objerr.InvalidArgumentError{Reason: "Copy source must be of the form /bucket/key"}
	}

	bucket, err := url.PathUnescape(rawBucket)
	if err != nil {
		return address{}, &objerr.InvalidArgumentError{Reason: "The copy source could not be decoded"}
	}

	key, err := url.PathUnescape(rawKey)
	if err != nil {
		return address{}, &objerr.InvalidArgumentError{Reason: "The copy source could not be decoded"}
	}

	return address{bucket: bucket, key: key}, nil
}

// contentType returns the content type a created object records, falling back to the S3 default when the client
// supplied none.
func contentType(r *http.Request) string {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return contentType
}
