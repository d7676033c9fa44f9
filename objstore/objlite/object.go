package objlite

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/couchbaselabs/s3lite/objstore/objerr"
	"github.com/couchbaselabs/s3lite/objstore/objval"
	"github.com/couchbaselabs/s3lite/sqlite"
)

// PutObject creates or replaces the object at the given key, returning its new attributes. Replacement is atomic, a
// concurrent read sees either the entire prior object or the entire new one.
func (s *Store) PutObject(ctx context.Context, opts PutObjectOptions) (*objval.ObjectAttrs, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if opts.Body == nil {
		opts.Body = []byte{}
	}

	sum := md5.Sum(opts.Body)

	attrs := objval.ObjectAttrs{
		Key:          opts.Key,
		ETag:         hex.EncodeToString(sum[:]),
		Size:         int64(len(opts.Body)),
		LastModified: now(),
		ContentType:  opts.ContentType,
	}

	err := sqlite.WithTransaction(ctx, s.db, func(tx sqlite.Tx) error {
		return replaceObject(tx, opts.Bucket, attrs, opts.Body)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to put object: %w", err)
	}

	return &attrs, nil
}

// GetObject retrieves the object at the given key, attributes and body.
func (s *Store) GetObject(ctx context.Context, opts GetObjectOptions) (*objval.Object, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	var (
		attrs    = objval.ObjectAttrs{Key: opts.Key}
		modified string
		first    []byte
	)

	err := sqlite.QueryRow(s.db, sqlite.Query{
		Query: "select size, etag, last_modified, content_type, data from objects " +
			"where bucket = ? and key = ? and chunk_index = 0;",
		Arguments: []any{opts.Bucket, opts.Key},
	}, &attrs.Size, &attrs.ETag, &modified, &attrs.ContentType, &first)
	if errors.Is(err, sqlite.ErrQueryReturnedNoRows) {
		return nil, &objerr.NotFoundError{Type: "key", Name: opts.Key}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get metadata chunk: %w", err)
	}

	attrs.LastModified, err = time.Parse(objval.ISO8601, modified)
	if err != nil {
		return nil, fmt.Errorf("failed to parse last modified time: %w", err)
	}

	body := make([]byte, 0, attrs.Size)
	body = append(body, first...)

	callback := func(scan sqlite.ScanCallback) error {
		var data []byte

		err := scan(&data)
		if err != nil {
			return err
		}

		body = append(body, data...)

		return nil
	}

	err = sqlite.QueryRows(s.db, sqlite.Query{
		Query:     "select data from objects where bucket = ? and key = ? and chunk_index > 0 order by chunk_index;",
		Arguments: []any{opts.Bucket, opts.Key},
	}, callback)
	if err != nil && !errors.Is(err, sqlite.ErrQueryReturnedNoRows) {
		return nil, fmt.Errorf("failed to get chunks: %w", err)
	}

	object := &objval.Object{
		ObjectAttrs: attrs,
		Body:        body,
	}

	return object, nil
}

// GetObjectAttrs returns the attributes of the object at the given key; read from the metadata chunk alone.
func (s *Store) GetObjectAttrs(ctx context.Context, opts GetObjectAttrsOptions) (*objval.ObjectAttrs, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	return getObjectAttrs(s.db, opts.Bucket, opts.Key)
}

// DeleteObject removes all rows for the object at the given key; deleting a key which does not exist is not an error.
func (s *Store) DeleteObject(ctx context.Context, opts DeleteObjectOptions) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	err := deleteObjectRows(s.db, opts.Bucket, opts.Key)
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}

	return nil
}

// DeleteObjects removes the objects at all the given keys in a single transaction; keys which do not exist are
// ignored.
func (s *Store) DeleteObjects(ctx context.Context, opts DeleteObjectsOptions) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	err := sqlite.WithTransaction(ctx, s.db, func(tx sqlite.Tx) error {
		for _, key := range opts.Keys {
			err := deleteObjectRows(tx, opts.Bucket, key)
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete objects: %w", err)
	}

	return nil
}

// getObjectAttrs reads the attributes of an object from its metadata chunk.
func getObjectAttrs(db sqlite.Queryable, bucket, key string) (*objval.ObjectAttrs, error) {
	var (
		attrs    = objval.ObjectAttrs{Key: key}
		modified string
	)

	err := sqlite.QueryRow(db, sqlite.Query{
		Query: "select size, etag, last_modified, content_type from objects " +
			"where bucket = ? and key = ? and chunk_index = 0;",
		Arguments: []any{bucket, key},
	}, &attrs.Size, &attrs.ETag, &modified, &attrs.ContentType)
	if errors.Is(err, sqlite.ErrQueryReturnedNoRows) {
		return nil, &objerr.NotFoundError{Type: "key", Name: key}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get metadata chunk: %w", err)
	}

	attrs.LastModified, err = time.Parse(objval.ISO8601, modified)
	if err != nil {
		return nil, fmt.Errorf("failed to parse last modified time: %w", err)
	}

	return &attrs, nil
}

// replaceObject deletes then re-inserts the rows for an object; the delete-then-insert discipline is the atomicity
// primitive for all object mutations.
func replaceObject(tx sqlite.Tx, bucket string, attrs objval.ObjectAttrs, body []byte) error {
	err := deleteObjectRows(tx, bucket, attrs.Key)
	if err != nil {
		return err
	}

	err = insertChunkZero(tx, bucket, attrs, body[:min(len(body), ChunkSize)])
	if err != nil {
		return err
	}

	for start := ChunkSize; start < len(body); start += ChunkSize {
		err = insertChunk(tx, bucket, attrs.Key, start/ChunkSize, body[start:min(start+ChunkSize, len(body))])
		if err != nil {
			return err
		}
	}

	return nil
}

// deleteObjectRows removes all chunk rows for the given key.
func deleteObjectRows(db sqlite.Executable, bucket, key string) error {
	_, err := sqlite.ExecuteQuery(db, sqlite.Query{
		Query:     "delete from objects where bucket = ? and key = ?;",
		Arguments: []any{bucket, key},
	})

	return err
}

// insertChunkZero inserts the metadata carrying chunk for an object; chunk zero holds the attributes and the computed
// 'depth'/'parent' of the key alongside the first slice of the body.
func insertChunkZero(tx sqlite.Tx, bucket string, attrs objval.ObjectAttrs, data []byte) error {
	_, err := sqlite.ExecuteQuery(tx, sqlite.Query{
		Query: "insert into objects (bucket, key, chunk_index, size, etag, last_modified, content_type, data, " +
			"depth, parent) values (?, ?, 0, ?, ?, ?, ?, ?, ?, ?);",
		Arguments: []any{
			bucket,
			attrs.Key,
			attrs.Size,
			attrs.ETag,
			attrs.LastModified.Format(objval.ISO8601),
			attrs.ContentType,
			data,
			objval.KeyDepth(attrs.Key),
			objval.KeyParent(attrs.Key),
		},
	})

	return err
}

// insertChunk inserts a non-zero chunk; non-zero chunks carry data only, with null 'depth'/'parent' so the listing
// indexes remain compact.
func insertChunk(tx sqlite.Tx, bucket, key string, index int, data []byte) error {
	_, err := sqlite.ExecuteQuery(tx, sqlite.Query{
		Query:     "insert into objects (bucket, key, chunk_index, data) values (?, ?, ?, ?);",
		Arguments: []any{bucket, key, index, data},
	})

	return err
}

// now returns the current UTC time at the millisecond precision persisted to the store, so that returned attributes
// match what a subsequent read parses.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
