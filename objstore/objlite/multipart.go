package objlite

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/couchbaselabs/s3lite/objstore/objerr"
	"github.com/couchbaselabs/s3lite/objstore/objval"
	"github.com/couchbaselabs/s3lite/sqlite"

	"github.com/google/uuid"
)

// CreateMultipartUpload begins a new multipart upload session for the given key, returning the id parts should be
// uploaded against.
func (s *Store) CreateMultipartUpload(ctx context.Context, opts CreateMultipartUploadOptions) (string, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	id := uuid.NewString()

	_, err := sqlite.ExecuteQuery(s.db, sqlite.Query{
		Query: "insert into multipart_uploads (upload_id, bucket, key, created_at, content_type) " +
			"values (?, ?, ?, ?, ?);",
		Arguments: []any{id, opts.Bucket, opts.Key, now().Format(objval.ISO8601), opts.ContentType},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create multipart upload: %w", err)
	}

	return id, nil
}

// UploadPart stores a part against an in-progress upload session. Uploading a part number which already exists
// replaces the prior part in its entirety.
func (s *Store) UploadPart(ctx context.Context, opts UploadPartOptions) (objval.Part, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	err := uploadExists(s.db, opts.Bucket, opts.Key, opts.UploadID)
	if err != nil {
		return objval.Part{}, err
	}

	if opts.Body == nil {
		opts.Body = []byte{}
	}

	sum := md5.Sum(opts.Body)

	part := objval.Part{
		Number: opts.Number,
		Size:   int64(len(opts.Body)),
		ETag:   hex.EncodeToString(sum[:]),
	}

	err = sqlite.WithTransaction(ctx, s.db, func(tx sqlite.Tx) error {
		return replacePart(tx, opts.UploadID, part, opts.Body)
	})
	if err != nil {
		return objval.Part{}, fmt.Errorf("failed to upload part: %w", err)
	}

	return part, nil
}

// ListParts returns the parts staged against the given upload session, ordered by part number.
func (s *Store) ListParts(ctx context.Context, opts ListPartsOptions) ([]objval.Part, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	err := uploadExists(s.db, opts.Bucket, opts.Key, opts.UploadID)
	if err != nil {
		return nil, err
	}

	var parts []objval.Part

	callback := func(scan sqlite.ScanCallback) error {
		var part objval.Part

		err := scan(&part.Number, &part.Size, &part.ETag)
		if err != nil {
			return err
		}

		parts = append(parts, part)

		return nil
	}

	err = sqlite.QueryRows(s.db, sqlite.Query{
		Query: "select part_number, size, etag from multipart_parts where upload_id = ? and chunk_index = 0 " +
			"order by part_number;",
		Arguments: []any{opts.UploadID},
	}, callback)
	if err != nil && !errors.Is(err, sqlite.ErrQueryReturnedNoRows) {
		return nil, fmt.Errorf("failed to list parts: %w", err)
	}

	return parts, nil
}

// CompleteMultipartUpload assembles the parts staged against the given session into a single object at the session
// key, then discards the session. Assembly is atomic, the object appears in its entirety or not at all.
//
// The object's entity tag is synthesized from the part entity tags; the MD5 of their concatenated digests suffixed
// with the part count.
func (s *Store) CompleteMultipartUpload(ctx context.Context, opts CompleteMultipartUploadOptions) (*objval.ObjectAttrs, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	var attrs *objval.ObjectAttrs

	err := sqlite.WithTransaction(ctx, s.db, func(tx sqlite.Tx) error {
		var err error
		attrs, err = completeUpload(tx, opts)

		return err
	})
	if err != nil {
		return nil, err
	}

	return attrs, nil
}

// AbortMultipartUpload discards the given session and any parts staged against it. Aborting a session which does not
// exist, or which has already been completed/aborted, is not an error.
func (s *Store) AbortMultipartUpload(ctx context.Context, opts AbortMultipartUploadOptions) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	err := sqlite.WithTransaction(ctx, s.db, func(tx sqlite.Tx) error { return discardUpload(tx, opts.UploadID) })
	if err != nil {
		return fmt.Errorf("failed to abort multipart upload: %w", err)
	}

	return nil
}

// ListUploads returns a page of the in-progress upload sessions for the given bucket, ordered by key then upload id.
func (s *Store) ListUploads(ctx context.Context, opts ListUploadsOptions) (*objval.ListUploadsResult, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if opts.MaxUploads <= 0 || opts.MaxUploads > MaxKeys {
		opts.MaxUploads = MaxKeys
	}

	var (
		conditions = []string{"bucket = ?"}
		arguments  = []any{opts.Bucket}
	)

	if opts.Prefix != "" {
		conditions = append(conditions, "key >= ?", "key < ?")
		arguments = append(arguments, opts.Prefix, objval.PrefixUpperBound(opts.Prefix))
	}

	// A key/upload id marker pair resumes after that exact session, a bare key marker skips the key entirely
	switch {
	case opts.KeyMarker != "" && opts.UploadIDMarker != "":
		conditions = append(conditions, "(key > ? or (key = ? and upload_id > ?))")
		arguments = append(arguments, opts.KeyMarker, opts.KeyMarker, opts.UploadIDMarker)
	case opts.KeyMarker != "":
		conditions = append(conditions, "key > ?")
		arguments = append(arguments, opts.KeyMarker)
	}

	arguments = append(arguments, opts.MaxUploads+1)

	var uploads []objval.Upload

	callback := func(scan sqlite.ScanCallback) error {
		var (
			upload  objval.Upload
			created string
		)

		err := scan(&upload.UploadID, &upload.Key, &created)
		if err != nil {
			return err
		}

		upload.Initiated, err = time.Parse(objval.ISO8601, created)
		if err != nil {
			return fmt.Errorf("failed to parse initiated time: %w", err)
		}

		uploads = append(uploads, upload)

		return nil
	}

	err := sqlite.QueryRows(s.db, sqlite.Query{
		Query: "select upload_id, key, created_at from multipart_uploads where " +
			strings.Join(conditions, " and ") + " order by key, upload_id limit ?;",
		Arguments: arguments,
	}, callback)
	if err != nil && !errors.Is(err, sqlite.ErrQueryReturnedNoRows) {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}

	result := &objval.ListUploadsResult{Uploads: uploads}

	if len(uploads) > opts.MaxUploads {
		result.Uploads = uploads[:opts.MaxUploads]
		result.Truncated = true
		result.NextKeyMarker = result.Uploads[opts.MaxUploads-1].Key
		result.NextUploadIDMarker = result.Uploads[opts.MaxUploads-1].UploadID
	}

	return result, nil
}

// uploadExists returns a 'NotFoundError' if no session exists for the given bucket/key/id triple; an upload id is
// only valid against the bucket and key it was created for.
func uploadExists(db sqlite.Queryable, bucket, key, id string) error {
	var one int

	err := sqlite.QueryRow(db, sqlite.Query{
		Query:     "select 1 from multipart_uploads where upload_id = ? and bucket = ? and key = ?;",
		Arguments: []any{id, bucket, key},
	}, &one)
	if errors.Is(err, sqlite.ErrQueryReturnedNoRows) {
		return &objerr.NotFoundError{Type: "upload", Name: id}
	}

	if err != nil {
		return fmt.Errorf("failed to find upload: %w", err)
	}

	return nil
}

// replacePart deletes then re-inserts the chunk rows for a part, the same replacement discipline used for objects.
func replacePart(tx sqlite.Tx, id string, part objval.Part, body []byte) error {
	_, err := sqlite.ExecuteQuery(tx, sqlite.Query{
		Query:     "delete from multipart_parts where upload_id = ? and part_number = ?;",
		Arguments: []any{id, part.Number},
	})
	if err != nil {
		return err
	}

	_, err = sqlite.ExecuteQuery(tx, sqlite.Query{
		Query: "insert into multipart_parts (upload_id, part_number, chunk_index, size, etag, data) " +
			"values (?, ?, 0, ?, ?, ?);",
		Arguments: []any{id, part.Number, part.Size, part.ETag, body[:min(len(body), ChunkSize)]},
	})
	if err != nil {
		return err
	}

	for start := ChunkSize; start < len(body); start += ChunkSize {
		_, err = sqlite.ExecuteQuery(tx, sqlite.Query{
			Query: "insert into multipart_parts (upload_id, part_number, chunk_index, data) values (?, ?, ?, ?);",
			Arguments: []any{
				id, part.Number, start / ChunkSize, body[start:min(start+ChunkSize, len(body))],
			},
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// completeUpload performs the assembly of a session's parts into an object; collect the staged part chunks in order,
// replace the object at the session key with them densely re-indexed from zero, then discard the session.
func completeUpload(tx sqlite.Tx, opts CompleteMultipartUploadOptions) (*objval.ObjectAttrs, error) {
	var (
		id          = opts.UploadID
		bucket      = opts.Bucket
		key         = opts.Key
		contentType string
	)

	err := sqlite.QueryRow(tx, sqlite.Query{
		Query:     "select content_type from multipart_uploads where upload_id = ? and bucket = ? and key = ?;",
		Arguments: []any{id, bucket, key},
	}, &contentType)
	if errors.Is(err, sqlite.ErrQueryReturnedNoRows) {
		return nil, &objerr.NotFoundError{Type: "upload", Name: id}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to find upload: %w", err)
	}

	parts, err := stagedParts(tx, id)
	if err != nil {
		return nil, err
	}

	if len(parts) == 0 {
		return nil, &objerr.InvalidPartError{UploadID: id}
	}

	var size int64
	for _, part := range parts {
		size += part.Size
	}

	etag, err := syntheticETag(parts)
	if err != nil {
		return nil, err
	}

	attrs := objval.ObjectAttrs{
		Key:          key,
		ETag:         etag,
		Size:         size,
		LastModified: now(),
		ContentType:  contentType,
	}

	chunks, err := stagedChunks(tx, id)
	if err != nil {
		return nil, err
	}

	err = deleteObjectRows(tx, bucket, key)
	if err != nil {
		return nil, fmt.Errorf("failed to delete existing object: %w", err)
	}

	err = insertChunkZero(tx, bucket, attrs, chunks[0])
	if err != nil {
		return nil, fmt.Errorf("failed to insert metadata chunk: %w", err)
	}

	for index, data := range chunks[1:] {
		err = insertChunk(tx, bucket, key, index+1, data)
		if err != nil {
			return nil, fmt.Errorf("failed to insert chunk: %w", err)
		}
	}

	err = discardUpload(tx, id)
	if err != nil {
		return nil, err
	}

	return &attrs, nil
}

// stagedParts returns the metadata of the parts staged against the given session, ordered by part number.
func stagedParts(tx sqlite.Tx, id string) ([]objval.Part, error) {
	var parts []objval.Part

	callback := func(scan sqlite.ScanCallback) error {
		var part objval.Part

		err := scan(&part.Number, &part.Size, &part.ETag)
		if err != nil {
			return err
		}

		parts = append(parts, part)

		return nil
	}

	err := sqlite.QueryRows(tx, sqlite.Query{
		Query: "select part_number, size, etag from multipart_parts where upload_id = ? and chunk_index = 0 " +
			"order by part_number;",
		Arguments: []any{id},
	}, callback)
	if err != nil && !errors.Is(err, sqlite.ErrQueryReturnedNoRows) {
		return nil, fmt.Errorf("failed to collect part metadata: %w", err)
	}

	return parts, nil
}

// stagedChunks returns the data of every chunk staged against the given session, in part number then chunk order;
// the byte sequence of the assembled object.
func stagedChunks(tx sqlite.Tx, id string) ([][]byte, error) {
	var chunks [][]byte

	callback := func(scan sqlite.ScanCallback) error {
		var data []byte

		err := scan(&data)
		if err != nil {
			return err
		}

		chunks = append(chunks, data)

		return nil
	}

	err := sqlite.QueryRows(tx, sqlite.Query{
		Query:     "select data from multipart_parts where upload_id = ? order by part_number, chunk_index;",
		Arguments: []any{id},
	}, callback)
	if err != nil {
		return nil, fmt.Errorf("failed to collect part chunks: %w", err)
	}

	return chunks, nil
}

// discardUpload removes the session row and any staged parts for the given id.
func discardUpload(tx sqlite.Tx, id string) error {
	_, err := sqlite.ExecuteQuery(tx, sqlite.Query{
		Query:     "delete from multipart_parts where upload_id = ?;",
		Arguments: []any{id},
	})
	if err != nil {
		return fmt.Errorf("failed to delete parts: %w", err)
	}

	_, err = sqlite.ExecuteQuery(tx, sqlite.Query{
		Query:     "delete from multipart_uploads where upload_id = ?;",
		Arguments: []any{id},
	})
	if err != nil {
		return fmt.Errorf("failed to delete upload: %w", err)
	}

	return nil
}

// syntheticETag derives the entity tag of an assembled object; the MD5 of the concatenated binary part digests,
// suffixed with the part count.
func syntheticETag(parts []objval.Part) (string, error) {
	digests := make([]byte, 0, len(parts)*md5.Size)

	for _, part := range parts {
		digest, err := hex.DecodeString(part.ETag)
		if err != nil {
			return "", fmt.Errorf("failed to decode part etag: %w", err)
		}

		digests = append(digests, digest...)
	}

	sum := md5.Sum(digests)

	return hex.EncodeToString(sum[:]) + "-" + strconv.Itoa(len(parts)), nil
}
