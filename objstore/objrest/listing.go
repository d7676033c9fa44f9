package objrest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/couchbaselabs/s3lite/objstore/objerr"
	"github.com/couchbaselabs/s3lite/objstore/objlite"
	"github.com/couchbaselabs/s3lite/objstore/objval"
)

// listObjects serves a single page of the bucket listing, optionally grouped by a delimiter.
func (h *Handler) listObjects(ctx context.Context, w http.ResponseWriter, addr address, query url.Values) error {
	maxKeys, err := pageSize(query, "max-keys")
	if err != nil {
		return err
	}

	result, err := h.store.ListObjects(ctx, objlite.ListObjectsOptions{
		Bucket:            addr.bucket,
		Prefix:            query.Get("prefix"),
		Delimiter:         query.Get("delimiter"),
		MaxKeys:           maxKeys,
		StartAfter:        query.Get("start-after"),
		ContinuationToken: query.Get("continuation-token"),
	})
	if err != nil {
		return fmt.Errorf("failed to list objects: %w", err)
	}

	document := listBucketResult{
		Namespace:             xmlNamespace,
		Name:                  addr.bucket,
		Prefix:                query.Get("prefix"),
		Delimiter:             query.Get("delimiter"),
		KeyCount:              len(result.Objects) + len(result.CommonPrefixes),
		MaxKeys:               maxKeys,
		IsTruncated:           result.Truncated,
		NextContinuationToken: result.NextContinuationToken,
	}

	for _, attrs := range result.Objects {
		document.Contents = append(document.Contents, contents{
			Key:          attrs.Key,
			LastModified: attrs.LastModified.Format(objval.ISO8601),
			ETag:         quoteETag(attrs.ETag),
			Size:         attrs.Size,
			StorageClass: "STANDARD",
		})
	}

	for _, prefix := range result.CommonPrefixes {
		document.CommonPrefixes = append(document.CommonPrefixes, commonPrefix{Prefix: prefix})
	}

	h.writeXML(w, http.StatusOK, document)

	return nil
}

// pageSize parses the given page size parameter, normalizing absent and out of range values to the engine maximum so
// the effective size can be echoed back to the client.
func pageSize(query url.Values, param string) (int, error) {
	value := query.Get(param)
	if value == "" {
		return objlite.MaxKeys, nil
	}

	size, err := strconv.Atoi(value)
	if err != nil {
		return 0, &objerr.InvalidArgumentError{Reason: fmt.Sprintf("Argument %s must be an integer", param)}
	}

	if size <= 0 || size > objlite.MaxKeys {
		return objlite.MaxKeys, nil
	}

	return size, nil
}
