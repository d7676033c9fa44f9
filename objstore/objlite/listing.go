package objlite

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/couchbaselabs/s3lite/objstore/objval"
	"github.com/couchbaselabs/s3lite/sqlite"

	"golang.org/x/exp/slices"
)

// ListObjects serves a single page of the bucket's objects, grouping keys into common prefixes when a delimiter is
// given. Pages reflect the state of the store at the time of the call.
//
// A '/' delimiter is served from the 'parent' index; one level of grouping is read directly off the metadata chunks
// rather than scanning and collapsing every key under the prefix. Any other delimiter falls back to a scan of the
// prefix range which collapses keys as it walks.
func (s *Store) ListObjects(ctx context.Context, opts ListObjectsOptions) (*objval.ListObjectsResult, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if opts.MaxKeys <= 0 || opts.MaxKeys > MaxKeys {
		opts.MaxKeys = MaxKeys
	}

	// The continuation token from a truncated page wins over a caller supplied start position
	marker := opts.ContinuationToken
	if marker == "" {
		marker = opts.StartAfter
	}

	switch {
	case opts.Delimiter == "/":
		return s.listSlashDelimited(opts, marker)
	case opts.Delimiter != "":
		return s.listDelimited(opts, marker)
	}

	return s.listFlat(opts, marker)
}

// listFlat lists without any grouping; a straight walk of the prefix range.
func (s *Store) listFlat(opts ListObjectsOptions, marker string) (*objval.ListObjectsResult, error) {
	objects, err := selectObjects(s.db, opts.Bucket, opts.Prefix, marker, opts.MaxKeys+1)
	if err != nil {
		return nil, err
	}

	result := &objval.ListObjectsResult{Objects: objects}

	if len(objects) > opts.MaxKeys {
		result.Objects = objects[:opts.MaxKeys]
		result.Truncated = true
		result.NextContinuationToken = result.Objects[opts.MaxKeys-1].Key
	}

	return result, nil
}

// listDelimited lists with an arbitrary delimiter by over-fetching the prefix range in key order and collapsing runs
// of keys which share a common prefix as it walks.
func (s *Store) listDelimited(opts ListObjectsOptions, marker string) (*objval.ListObjectsResult, error) {
	fetch := opts.MaxKeys*10 + 1

	rows, err := selectObjects(s.db, opts.Bucket, opts.Prefix, marker, fetch)
	if err != nil {
		return nil, err
	}

	var (
		contents  []objval.ObjectAttrs
		prefixes  []string
		cursor    string
		truncated bool
	)

	for _, attrs := range rows {
		var (
			tail = strings.TrimPrefix(attrs.Key, opts.Prefix)
			idx  = strings.Index(tail, opts.Delimiter)
		)

		// Keys under the most recently emitted common prefix collapse into it; keys are walked in order, so runs
		// sharing a common prefix are contiguous
		if idx != -1 {
			common := opts.Prefix + tail[:idx+len(opts.Delimiter)]

			if len(prefixes) != 0 && prefixes[len(prefixes)-1] == common {
				cursor = attrs.Key
				continue
			}

			if len(contents)+len(prefixes) == opts.MaxKeys {
				truncated = true
				break
			}

			prefixes = append(prefixes, common)
			cursor = attrs.Key

			continue
		}

		if len(contents)+len(prefixes) == opts.MaxKeys {
			truncated = true
			break
		}

		contents = append(contents, attrs)
		cursor = attrs.Key
	}

	// A full over-fetch which didn't fill the page can not prove there are no further keys
	if !truncated && len(rows) == fetch {
		truncated = true
	}

	result := &objval.ListObjectsResult{
		Objects:        contents,
		CommonPrefixes: prefixes,
		Truncated:      truncated,
	}

	if truncated {
		result.NextContinuationToken = cursor
	}

	return result, nil
}

// listSlashDelimited lists with the '/' delimiter off the 'parent' index; common prefixes are the distinct parents
// exactly one level below the requested prefix, direct contents are the keys whose parent is the prefix itself.
func (s *Store) listSlashDelimited(opts ListObjectsOptions, marker string) (*objval.ListObjectsResult, error) {
	prefixes, err := s.selectCommonPrefixes(opts, marker)
	if err != nil {
		return nil, err
	}

	contents, err := s.selectDirectContents(opts, marker)
	if err != nil {
		return nil, err
	}

	// Merge both result sets into a single ordered page; an item is an object or a common prefix, compared by key
	type listItem struct {
		value string
		attrs *objval.ObjectAttrs
	}

	items := make([]listItem, 0, len(contents)+len(prefixes))

	for idx := range contents {
		items = append(items, listItem{value: contents[idx].Key, attrs: &contents[idx]})
	}

	for _, prefix := range prefixes {
		items = append(items, listItem{value: prefix})
	}

	slices.SortStableFunc(items, func(a, b listItem) int { return strings.Compare(a.value, b.value) })

	truncated := len(items) > opts.MaxKeys
	if truncated {
		items = items[:opts.MaxKeys]
	}

	result := &objval.ListObjectsResult{Truncated: truncated}

	for _, item := range items {
		if item.attrs == nil {
			result.CommonPrefixes = append(result.CommonPrefixes, item.value)
			continue
		}

		result.Objects = append(result.Objects, *item.attrs)
	}

	if truncated {
		result.NextContinuationToken = items[len(items)-1].value
	}

	return result, nil
}

// selectCommonPrefixes returns the distinct parents exactly one level below the requested prefix, in order.
func (s *Store) selectCommonPrefixes(opts ListObjectsOptions, marker string) ([]string, error) {
	var (
		conditions = []string{"bucket = ?", "chunk_index = 0"}
		arguments  = []any{opts.Bucket}
		depth      = objval.KeyDepth(opts.Prefix) + 1
	)

	if opts.Prefix != "" {
		conditions = append(conditions, "parent >= ?", "parent < ?")
		arguments = append(arguments, opts.Prefix, objval.PrefixUpperBound(opts.Prefix))
	}

	conditions = append(conditions, "(length(parent) - length(replace(parent, '/', ''))) = ?")
	arguments = append(arguments, depth)

	if marker != "" {
		conditions = append(conditions, "parent > ?")
		arguments = append(arguments, marker)
	}

	arguments = append(arguments, opts.MaxKeys+1)

	var prefixes []string

	callback := func(scan sqlite.ScanCallback) error {
		var parent string

		err := scan(&parent)
		if err != nil {
			return err
		}

		// Belt and braces, the range/depth conditions should already guarantee both
		if !strings.HasPrefix(parent, opts.Prefix) || objval.KeyDepth(parent) != depth {
			return nil
		}

		prefixes = append(prefixes, parent)

		return nil
	}

	err := sqlite.QueryRows(s.db, sqlite.Query{
		Query: "select distinct parent from objects where " + strings.Join(conditions, " and ") +
			" order by parent limit ?;",
		Arguments: arguments,
	}, callback)
	if err != nil && !errors.Is(err, sqlite.ErrQueryReturnedNoRows) {
		return nil, fmt.Errorf("failed to select common prefixes: %w", err)
	}

	return prefixes, nil
}

// selectDirectContents returns the metadata chunks of the keys sitting directly at the requested prefix, in key
// order.
func (s *Store) selectDirectContents(opts ListObjectsOptions, marker string) ([]objval.ObjectAttrs, error) {
	var (
		conditions = []string{"bucket = ?", "chunk_index = 0", "parent = ?"}
		arguments  = []any{opts.Bucket, opts.Prefix}
	)

	if marker != "" {
		conditions = append(conditions, "key > ?")
		arguments = append(arguments, marker)
	}

	arguments = append(arguments, opts.MaxKeys+1)

	query := sqlite.Query{
		Query: "select key, size, etag, last_modified from objects where " + strings.Join(conditions, " and ") +
			" order by key limit ?;",
		Arguments: arguments,
	}

	return listQuery(s.db, query)
}

// selectObjects returns up to 'limit' metadata chunks of the bucket in key order, restricted to the prefix range and
// positioned after the marker.
func selectObjects(db sqlite.Queryable, bucket, prefix, marker string, limit int) ([]objval.ObjectAttrs, error) {
	var (
		conditions = []string{"bucket = ?", "chunk_index = 0"}
		arguments  = []any{bucket}
	)

	if prefix != "" {
		conditions = append(conditions, "key >= ?", "key < ?")
		arguments = append(arguments, prefix, objval.PrefixUpperBound(prefix))
	}

	if marker != "" {
		conditions = append(conditions, "key > ?")
		arguments = append(arguments, marker)
	}

	arguments = append(arguments, limit)

	query := sqlite.Query{
		Query: "select key, size, etag, last_modified from objects where " + strings.Join(conditions, " and ") +
			" order by key limit ?;",
		Arguments: arguments,
	}

	return listQuery(db, query)
}

// listQuery runs a metadata chunk select returning object attributes; the given query must select the key, size,
// etag and last modified columns in that order.
func listQuery(db sqlite.Queryable, query sqlite.Query) ([]objval.ObjectAttrs, error) {
	var objects []objval.ObjectAttrs

	callback := func(scan sqlite.ScanCallback) error {
		var (
			attrs    objval.ObjectAttrs
			modified string
		)

		err := scan(&attrs.Key, &attrs.Size, &attrs.ETag, &modified)
		if err != nil {
			return err
		}

		attrs.LastModified, err = time.Parse(objval.ISO8601, modified)
		if err != nil {
			return fmt.Errorf("failed to parse last modified time: %w", err)
		}

		objects = append(objects, attrs)

		return nil
	}

	err := sqlite.QueryRows(db, query, callback)
	if err != nil && !errors.Is(err, sqlite.ErrQueryReturnedNoRows) {
		return nil, fmt.Errorf("failed to select objects: %w", err)
	}

	return objects, nil
}
