package objrest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/couchbaselabs/s3lite/objstore/objerr"
	"github.com/couchbaselabs/s3lite/objstore/objlite"
	"github.com/couchbaselabs/s3lite/objstore/objval"
)

const (
	// minPartNumber/maxPartNumber bound the part numbers accepted for a part upload, matching the S3 limits.
	minPartNumber = 1
	maxPartNumber = 10_000
)

// createMultipartUpload opens a new upload session for the addressed key, returning the id subsequent part uploads
// must carry.
func (h *Handler) createMultipartUpload(ctx context.Context, w http.ResponseWriter, r *http.Request,
	addr address) error {
	id, err := h.store.CreateMultipartUpload(ctx, objlite.CreateMultipartUploadOptions{
		Bucket:      addr.bucket,
		Key:         addr.key,
		ContentType: contentType(r),
	})
	if err != nil {
		return fmt.Errorf("failed to create multipart upload: %w", err)
	}

	h.writeXML(w, http.StatusOK, initiateMultipartUploadResult{
		Namespace: xmlNamespace,
		Bucket:    addr.bucket,
		Key:       addr.key,
		UploadID:  id,
	})

	return nil
}

// uploadPart stores the request body as a numbered part of an open upload session.
func (h *Handler) uploadPart(ctx context.Context, w http.ResponseWriter, r *http.Request, addr address,
	query url.Values) error {
	number, err := strconv.Atoi(query.Get("partNumber"))
	if err != nil || number < minPartNumber || number > maxPartNumber {
		return &objerr.InvalidArgumentError{
			Reason: fmt.Sprintf("Part number must be an integer between %d and %d", minPartNumber, maxPartNumber),
		}
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return fmt.Errorf("failed to read request body: %w", err)
	}

	part, err := h.store.UploadPart(ctx, objlite.UploadPartOptions{
		Bucket:   addr.bucket,
		UploadID: query.Get("uploadId"),
		Key:      addr.key,
		Number:   number,
		Body:     body,
	})
	if err != nil {
		return fmt.Errorf("failed to upload part: %w", err)
	}

	w.Header().Set("ETag", quoteETag(part.ETag))
	w.WriteHeader(http.StatusOK)

	return nil
}

// listParts lists the parts uploaded so far to an open upload session, in part number order.
func (h *Handler) listParts(ctx context.Context, w http.ResponseWriter, addr address, query url.Values) error {
	parts, err := h.store.ListParts(ctx, objlite.ListPartsOptions{
		Bucket:   addr.bucket,
		UploadID: query.Get("uploadId"),
		Key:      addr.key,
	})
	if err != nil {
		return fmt.Errorf("failed to list parts: %w", err)
	}

	result := listPartsResult{
		Namespace: xmlNamespace,
		Bucket:    addr.bucket,
		Key:       addr.key,
		UploadID:  query.Get("uploadId"),
	}

	for _, p := range parts {
		result.Parts = append(result.Parts, part{PartNumber: p.Number, ETag: quoteETag(p.ETag), Size: p.Size})
	}

	h.writeXML(w, http.StatusOK, result)

	return nil
}

// completeMultipartUpload assembles the parts of an open upload session into the final object.
//
// NOTE: The request body, which restates the parts being completed, is deliberately ignored; sessions complete with
// every uploaded part in part number order.
func (h *Handler) completeMultipartUpload(ctx context.Context, w http.ResponseWriter, addr address,
	query url.Values) error {
	attrs, err := h.store.CompleteMultipartUpload(ctx, objlite.CompleteMultipartUploadOptions{
		Bucket:   addr.bucket,
		UploadID: query.Get("uploadId"),
		Key:      addr.key,
	})
	if err != nil {
		return fmt.Errorf("failed to complete multipart upload: %w", err)
	}

	h.writeXML(w, http.StatusOK, completeMultipartUploadResult{
		Namespace: xmlNamespace,
		Location:  "/" + addr.bucket + "/" + addr.key,
		Bucket:    addr.bucket,
		Key:       addr.key,
		ETag:      quoteETag(attrs.ETag),
	})

	return nil
}

// abortMultipartUpload discards an upload session along with any parts uploaded to it; aborting a session which does
// not exist still reports success.
func (h *Handler) abortMultipartUpload(ctx context.Context, w http.ResponseWriter, _ address,
	query url.Values) error {
	err := h.store.AbortMultipartUpload(ctx, objlite.AbortMultipartUploadOptions{UploadID: query.Get("uploadId")})
	if err != nil {
		return fmt.Errorf("failed to abort multipart upload: %w", err)
	}

	w.WriteHeader(http.StatusNoContent)

	return nil
}

// listUploads lists the open upload sessions in the addressed bucket, ordered by key then upload id.
func (h *Handler) listUploads(ctx context.Context, w http.ResponseWriter, addr address, query url.Values) error {
	maxUploads, err := pageSize(query, "max-uploads")
	if err != nil {
		return err
	}

	uploads, err := h.store.ListUploads(ctx, objlite.ListUploadsOptions{
		Bucket:         addr.bucket,
		Prefix:         query.Get("prefix"),
		KeyMarker:      query.Get("key-marker"),
		UploadIDMarker: query.Get("upload-id-marker"),
		MaxUploads:     maxUploads,
	})
	if err != nil {
		return fmt.Errorf("failed to list uploads: %w", err)
	}

	result := listMultipartUploadsResult{
		Namespace:          xmlNamespace,
		Bucket:             addr.bucket,
		Prefix:             query.Get("prefix"),
		KeyMarker:          query.Get("key-marker"),
		UploadIDMarker:     query.Get("upload-id-marker"),
		NextKeyMarker:      uploads.NextKeyMarker,
		NextUploadIDMarker: uploads.NextUploadIDMarker,
		MaxUploads:         maxUploads,
		IsTruncated:        uploads.Truncated,
	}

	for _, session := range uploads.Uploads {
		result.Uploads = append(result.Uploads, upload{
			Key:       session.Key,
			UploadID:  session.UploadID,
			Initiated: session.Initiated.Format(objval.ISO8601),
		})
	}

	h.writeXML(w, http.StatusOK, result)

	return nil
}
