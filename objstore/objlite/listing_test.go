package objlite

import (
	"context"
	"fmt"
	"testing"

	"github.com/couchbaselabs/s3lite/objstore/objval"

	"github.com/stretchr/testify/require"
)

func seedKeys(t *testing.T, store *Store, keys ...string) {
	for _, key := range keys {
		_, err := store.PutObject(context.Background(), PutObjectOptions{
			Bucket: "bucket",
			Key:    key,
			Body:   []byte(key),
		})
		require.Nil(t, err)
	}
}

func listedKeys(result *objval.ListObjectsResult) []string {
	keys := make([]string, 0, len(result.Objects))

	for _, attrs := range result.Objects {
		keys = append(keys, attrs.Key)
	}

	return keys
}

func TestListObjectsEmptyBucket(t *testing.T) {
	store := newTestStore(t)

	result, err := store.ListObjects(context.Background(), ListObjectsOptions{Bucket: "bucket"})
	require.Nil(t, err)
	require.Empty(t, result.Objects)
	require.Empty(t, result.CommonPrefixes)
	require.False(t, result.Truncated)
	require.Empty(t, result.NextContinuationToken)
}

func TestListObjectsFlat(t *testing.T) {
	store := newTestStore(t)

	seedKeys(t, store, "banana", "apple", "cherry")

	result, err := store.ListObjects(context.Background(), ListObjectsOptions{Bucket: "bucket"})
	require.Nil(t, err)
	require.Equal(t, []string{"apple", "banana", "cherry"}, listedKeys(result))
	require.False(t, result.Truncated)
}

func TestListObjectsFlatPrefix(t *testing.T) {
	store := newTestStore(t)

	seedKeys(t, store,
		"dir1/file1.txt",
		"dir1/file2.txt",
		"dir1/subdir/file3.txt",
		"dir2/file4.txt",
		"file5.txt",
	)

	result, err := store.ListObjects(context.Background(), ListObjectsOptions{Bucket: "bucket", Prefix: "dir1/"})
	require.Nil(t, err)
	require.Equal(t, []string{"dir1/file1.txt", "dir1/file2.txt", "dir1/subdir/file3.txt"}, listedKeys(result))
}

func TestListObjectsFlatStartAfter(t *testing.T) {
	store := newTestStore(t)

	seedKeys(t, store, "a", "b", "c", "d")

	result, err := store.ListObjects(context.Background(), ListObjectsOptions{Bucket: "bucket", StartAfter: "b"})
	require.Nil(t, err)
	require.Equal(t, []string{"c", "d"}, listedKeys(result))
}

func TestListObjectsContinuationTokenWinsOverStartAfter(t *testing.T) {
	store := newTestStore(t)

	seedKeys(t, store, "a", "b", "c", "d")

	result, err := store.ListObjects(context.Background(), ListObjectsOptions{
		Bucket:            "bucket",
		StartAfter:        "a",
		ContinuationToken: "c",
	})
	require.Nil(t, err)
	require.Equal(t, []string{"d"}, listedKeys(result))
}

func TestListObjectsFlatPagination(t *testing.T) {
	store := newTestStore(t)

	for idx := 0; idx < 5; idx++ {
		seedKeys(t, store, fmt.Sprintf("key-%d", idx))
	}

	var (
		seen  []string
		opts  = ListObjectsOptions{Bucket: "bucket", MaxKeys: 2}
		pages int
	)

	for {
		result, err := store.ListObjects(context.Background(), opts)
		require.Nil(t, err)

		seen = append(seen, listedKeys(result)...)
		pages++

		if !result.Truncated {
			require.Empty(t, result.NextContinuationToken)
			break
		}

		require.NotEmpty(t, result.NextContinuationToken)

		opts.ContinuationToken = result.NextContinuationToken
	}

	require.Equal(t, 3, pages)
	require.Equal(t, []string{"key-0", "key-1", "key-2", "key-3", "key-4"}, seen)
}

func TestListObjectsTruncationAtExactPageSize(t *testing.T) {
	store := newTestStore(t)

	seedKeys(t, store, "a", "b", "c")

	result, err := store.ListObjects(context.Background(), ListObjectsOptions{Bucket: "bucket", MaxKeys: 3})
	require.Nil(t, err)
	require.Len(t, result.Objects, 3)
	require.False(t, result.Truncated)
	require.Empty(t, result.NextContinuationToken)
}

func TestListObjectsSlashDelimiterRoot(t *testing.T) {
	store := newTestStore(t)

	seedKeys(t, store,
		"dir1/file1.txt",
		"dir1/file2.txt",
		"dir1/subdir/file3.txt",
		"dir2/file4.txt",
		"file5.txt",
	)

	result, err := store.ListObjects(context.Background(), ListObjectsOptions{Bucket: "bucket", Delimiter: "/"})
	require.Nil(t, err)
	require.Equal(t, []string{"file5.txt"}, listedKeys(result))
	require.Equal(t, []string{"dir1/", "dir2/"}, result.CommonPrefixes)
	require.False(t, result.Truncated)
}

func TestListObjectsSlashDelimiterPrefix(t *testing.T) {
	store := newTestStore(t)

	seedKeys(t, store,
		"dir1/file1.txt",
		"dir1/file2.txt",
		"dir1/subdir/file3.txt",
		"dir2/file4.txt",
		"file5.txt",
	)

	result, err := store.ListObjects(context.Background(), ListObjectsOptions{
		Bucket:    "bucket",
		Prefix:    "dir1/",
		Delimiter: "/",
	})
	require.Nil(t, err)
	require.Equal(t, []string{"dir1/file1.txt", "dir1/file2.txt"}, listedKeys(result))
	require.Equal(t, []string{"dir1/subdir/"}, result.CommonPrefixes)
}

func TestListObjectsSlashDelimiterBarePrefix(t *testing.T) {
	store := newTestStore(t)

	seedKeys(t, store, "dir1/file1.txt", "dir2/file4.txt", "file5.txt")

	// A prefix which stops short of the delimiter still groups one level below it
	result, err := store.ListObjects(context.Background(), ListObjectsOptions{
		Bucket:    "bucket",
		Prefix:    "dir",
		Delimiter: "/",
	})
	require.Nil(t, err)
	require.Empty(t, result.Objects)
	require.Equal(t, []string{"dir1/", "dir2/"}, result.CommonPrefixes)
}

func TestListObjectsSlashDelimiterPagination(t *testing.T) {
	store := newTestStore(t)

	seedKeys(t, store, "a.txt", "b/one.txt", "b/two.txt", "c.txt", "d/x.txt", "e.txt")

	opts := ListObjectsOptions{Bucket: "bucket", Delimiter: "/", MaxKeys: 2}

	// Pages interleave objects and common prefixes in key order
	result, err := store.ListObjects(context.Background(), opts)
	require.Nil(t, err)
	require.Equal(t, []string{"a.txt"}, listedKeys(result))
	require.Equal(t, []string{"b/"}, result.CommonPrefixes)
	require.True(t, result.Truncated)

	opts.ContinuationToken = result.NextContinuationToken

	result, err = store.ListObjects(context.Background(), opts)
	require.Nil(t, err)
	require.Equal(t, []string{"c.txt"}, listedKeys(result))
	require.Equal(t, []string{"d/"}, result.CommonPrefixes)
	require.True(t, result.Truncated)

	opts.ContinuationToken = result.NextContinuationToken

	result, err = store.ListObjects(context.Background(), opts)
	require.Nil(t, err)
	require.Equal(t, []string{"e.txt"}, listedKeys(result))
	require.Empty(t, result.CommonPrefixes)
	require.False(t, result.Truncated)
}

func TestListObjectsSlashDelimiterMergedOrderGovernsTruncation(t *testing.T) {
	store := newTestStore(t)

	seedKeys(t, store, "a/1.txt", "b.txt", "c/2.txt", "d.txt")

	result, err := store.ListObjects(context.Background(), ListObjectsOptions{
		Bucket:    "bucket",
		Delimiter: "/",
		MaxKeys:   2,
	})
	require.Nil(t, err)
	require.Equal(t, []string{"b.txt"}, listedKeys(result))
	require.Equal(t, []string{"a/"}, result.CommonPrefixes)
	require.True(t, result.Truncated)

	result, err = store.ListObjects(context.Background(), ListObjectsOptions{
		Bucket:            "bucket",
		Delimiter:         "/",
		MaxKeys:           2,
		ContinuationToken: result.NextContinuationToken,
	})
	require.Nil(t, err)
	require.Equal(t, []string{"d.txt"}, listedKeys(result))
	require.Equal(t, []string{"c/"}, result.CommonPrefixes)
	require.False(t, result.Truncated)
}

func TestListObjectsGenericDelimiter(t *testing.T) {
	store := newTestStore(t)

	seedKeys(t, store,
		"photos-2021-a.jpg",
		"photos-2021-b.jpg",
		"photos-2022-c.jpg",
		"photos-x.jpg",
		"readme.txt",
	)

	result, err := store.ListObjects(context.Background(), ListObjectsOptions{
		Bucket:    "bucket",
		Prefix:    "photos-",
		Delimiter: "-",
	})
	require.Nil(t, err)
	require.Equal(t, []string{"photos-x.jpg"}, listedKeys(result))
	require.Equal(t, []string{"photos-2021-", "photos-2022-"}, result.CommonPrefixes)
	require.False(t, result.Truncated)
}

func TestListObjectsGenericDelimiterPagination(t *testing.T) {
	store := newTestStore(t)

	seedKeys(t, store, "photos-2021-a.jpg", "photos-2021-b.jpg", "photos-2022-c.jpg", "photos-x.jpg")

	opts := ListObjectsOptions{Bucket: "bucket", Prefix: "photos-", Delimiter: "-", MaxKeys: 1}

	var (
		contents []string
		prefixes []string
		pages    int
	)

	for {
		result, err := store.ListObjects(context.Background(), opts)
		require.Nil(t, err)

		contents = append(contents, listedKeys(result)...)
		prefixes = append(prefixes, result.CommonPrefixes...)
		pages++

		if !result.Truncated {
			break
		}

		opts.ContinuationToken = result.NextContinuationToken
	}

	require.Equal(t, 3, pages)
	require.Equal(t, []string{"photos-x.jpg"}, contents)
	require.Equal(t, []string{"photos-2021-", "photos-2022-"}, prefixes)
}

func TestListObjectsMaxKeysNormalized(t *testing.T) {
	store := newTestStore(t)

	seedKeys(t, store, "a", "b", "c")

	for _, maxKeys := range []int{0, -5, MaxKeys + 1} {
		result, err := store.ListObjects(context.Background(), ListObjectsOptions{
			Bucket:  "bucket",
			MaxKeys: maxKeys,
		})
		require.Nil(t, err)
		require.Len(t, result.Objects, 3)
		require.False(t, result.Truncated)
	}
}

func TestListObjectsPrefixWithSpecialCharacters(t *testing.T) {
	store := newTestStore(t)

	seedKeys(t, store, "test_prefix%weird/file1.txt", "test_prefixa/file2.txt", "unrelated.txt")

	// Prefix ranges are plain byte ranges, characters which are wildcards elsewhere have no special meaning
	result, err := store.ListObjects(context.Background(), ListObjectsOptions{
		Bucket: "bucket",
		Prefix: "test_prefix%",
	})
	require.Nil(t, err)
	require.Equal(t, []string{"test_prefix%weird/file1.txt"}, listedKeys(result))
}

func TestListObjectsBucketsAreIsolated(t *testing.T) {
	store := newTestStore(t)

	_, err := store.PutObject(context.Background(), PutObjectOptions{Bucket: "one", Key: "key", Body: []byte("a")})
	require.Nil(t, err)

	_, err = store.PutObject(context.Background(), PutObjectOptions{Bucket: "two", Key: "key", Body: []byte("b")})
	require.Nil(t, err)

	result, err := store.ListObjects(context.Background(), ListObjectsOptions{Bucket: "one"})
	require.Nil(t, err)
	require.Len(t, result.Objects, 1)
}
