package objlite

import (
	"context"
	"errors"
	"fmt"

	"github.com/couchbaselabs/s3lite/objstore/objerr"
	"github.com/couchbaselabs/s3lite/objstore/objval"
	"github.com/couchbaselabs/s3lite/sqlite"
)

// CopyObject duplicates the source object under the destination key with a fresh last modified time, returning the
// attributes of the copy. The copy is chunk for chunk, the body is not re-read or re-chunked.
//
// NOTE: Copying between buckets is unsupported, the source bucket must match the destination bucket.
func (s *Store) CopyObject(ctx context.Context, opts CopyObjectOptions) (*objval.ObjectAttrs, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if opts.SourceBucket != opts.DestinationBucket {
		return nil, &objerr.InvalidArgumentError{Reason: "Copy source bucket must match the destination bucket"}
	}

	var attrs *objval.ObjectAttrs

	callback := func(tx sqlite.Tx) error {
		var err error

		attrs, err = copyObject(tx, opts)

		return err
	}

	err := sqlite.WithTransaction(ctx, s.db, callback)
	if err != nil {
		return nil, err
	}

	return attrs, nil
}

// copyObject reads every chunk of the source into memory then replaces the destination; a copy of an object onto
// itself must not observe its own delete, so the read completes before any row is touched.
func copyObject(tx sqlite.Tx, opts CopyObjectOptions) (*objval.ObjectAttrs, error) {
	attrs, err := getObjectAttrs(tx, opts.SourceBucket, opts.SourceKey)
	if err != nil {
		return nil, err
	}

	chunks, err := objectChunks(tx, opts.SourceBucket, opts.SourceKey)
	if err != nil {
		return nil, err
	}

	attrs.Key = opts.DestinationKey
	attrs.LastModified = now()

	err = deleteObjectRows(tx, opts.DestinationBucket, opts.DestinationKey)
	if err != nil {
		return nil, err
	}

	err = insertChunkZero(tx, opts.DestinationBucket, *attrs, chunks[0].data)
	if err != nil {
		return nil, err
	}

	for _, chunk := range chunks[1:] {
		err = insertChunk(tx, opts.DestinationBucket, opts.DestinationKey, chunk.index, chunk.data)
		if err != nil {
			return nil, err
		}
	}

	return attrs, nil
}

// storedChunk is a single persisted chunk of an object, the index is preserved across copies since completed
// multipart uploads may leave chunks which aren't sized at the chunking boundary.
type storedChunk struct {
	index int
	data  []byte
}

// objectChunks returns every chunk of an object in index order, including the metadata chunk.
func objectChunks(db sqlite.Queryable, bucket, key string) ([]storedChunk, error) {
	var chunks []storedChunk

	callback := func(scan sqlite.ScanCallback) error {
		var chunk storedChunk

		err := scan(&chunk.index, &chunk.data)
		if err != nil {
			return err
		}

		chunks = append(chunks, chunk)

		return nil
	}

	err := sqlite.QueryRows(db, sqlite.Query{
		Query:     "select chunk_index, data from objects where bucket = ? and key = ? order by chunk_index;",
		Arguments: []any{bucket, key},
	}, callback)
	if err != nil && !errors.Is(err, sqlite.ErrQueryReturnedNoRows) {
		return nil, fmt.Errorf("failed to select object chunks: %w", err)
	}

	return chunks, nil
}
