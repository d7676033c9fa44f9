package objlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/couchbaselabs/s3lite/sqlite"

	"github.com/stretchr/testify/require"
)

func TestMigrateFreshStore(t *testing.T) {
	store := newTestStore(t)

	var version int

	err := sqlite.QueryRow(store.db, sqlite.Query{Query: "select max(version) from _migrations;"}, &version)
	require.Nil(t, err)
	require.Equal(t, len(migrations)-1, version)
}

func TestMigrateIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tenant.db")

	store, err := NewStore(context.Background(), StoreOptions{Path: path})
	require.Nil(t, err)

	_, err = store.PutObject(context.Background(), PutObjectOptions{Bucket: "bucket", Key: "key", Body: []byte("body")})
	require.Nil(t, err)
	require.Nil(t, store.Close())

	// Reopening an up to date store must not reapply anything, or disturb the data
	store, err = NewStore(context.Background(), StoreOptions{Path: path})
	require.Nil(t, err)

	defer store.Close()

	object, err := store.GetObject(context.Background(), GetObjectOptions{Bucket: "bucket", Key: "key"})
	require.Nil(t, err)
	require.Equal(t, []byte("body"), object.Body)

	count := testRowCount(t, store, sqlite.Query{Query: "select count(*) from _migrations;"})
	require.Equal(t, len(migrations), count)
}

func TestMigrateBackfillsKeyDerivation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tenant.db")

	// Construct a store at the initial schema version, before the 'depth'/'parent' columns existed
	db, err := sqlite.Open(path)
	require.Nil(t, err)

	for _, statement := range migrations[0].statements {
		_, err = sqlite.ExecuteQuery(db, sqlite.Query{Query: statement})
		require.Nil(t, err)
	}

	_, err = sqlite.ExecuteQuery(db, sqlite.Query{Query: "create table _migrations (version integer primary key);"})
	require.Nil(t, err)

	_, err = sqlite.ExecuteQuery(db, sqlite.Query{Query: "insert into _migrations (version) values (0);"})
	require.Nil(t, err)

	for _, key := range []string{"dir/sub/file.txt", "dir/file2.txt", "file.txt"} {
		_, err = sqlite.ExecuteQuery(db, sqlite.Query{
			Query: "insert into objects (bucket, key, chunk_index, size, etag, last_modified, data) " +
				"values ('bucket', ?, 0, 4, 'etag', '2024-01-01T00:00:00.000Z', 'body');",
			Arguments: []any{key},
		})
		require.Nil(t, err)
	}

	require.Nil(t, db.Close())

	store, err := NewStore(context.Background(), StoreOptions{Path: path})
	require.Nil(t, err)

	defer store.Close()

	type test struct {
		name   string
		key    string
		depth  int
		parent string
	}

	tests := []*test{
		{
			name:   "Nested",
			key:    "dir/sub/file.txt",
			depth:  2,
			parent: "dir/sub/",
		},
		{
			name:   "SingleLevel",
			key:    "dir/file2.txt",
			depth:  1,
			parent: "dir/",
		},
		{
			name:   "Root",
			key:    "file.txt",
			depth:  0,
			parent: "",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var (
				depth  int
				parent string
			)

			err = sqlite.QueryRow(store.db, sqlite.Query{
				Query:     "select depth, parent from objects where bucket = 'bucket' and key = ? and chunk_index = 0;",
				Arguments: []any{test.key},
			}, &depth, &parent)
			require.Nil(t, err)
			require.Equal(t, test.depth, depth)
			require.Equal(t, test.parent, parent)
		})
	}

	// The listing which relies on those columns now sees the backfilled keys
	result, err := store.ListObjects(context.Background(), ListObjectsOptions{Bucket: "bucket", Delimiter: "/"})
	require.Nil(t, err)
	require.Len(t, result.Objects, 1)
	require.Equal(t, []string{"dir/"}, result.CommonPrefixes)
}
