package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQueries(t *testing.T) {
	testDir := t.TempDir()

	db, err := Open(filepath.Join(testDir, "sqlite.db"))
	require.Nil(t, err)

	defer db.Close()

	query := Query{
		Query: `
		create table if not exists chunks (
			idx integer not null primary key
		);`,
	}

	affected, err := ExecuteQuery(db, query)
	require.Nil(t, err)
	require.Empty(t, affected, int64(0))

	query.Query = "select idx from chunks where idx = 128;"

	var value uint64
	err = QueryRow(db, query, &value)
	require.NotNil(t, err)
	require.ErrorIs(t, err, ErrQueryReturnedNoRows)

	query.Query = "select idx from chunks order by idx;"

	var indexes []uint64

	callback := func(scan ScanCallback) error {
		var idx uint64
		err := scan(&idx)
		indexes = append(indexes, idx)

		return err
	}

	err = QueryRows(db, query, callback)
	require.NotNil(t, err)
	require.ErrorIs(t, err, ErrQueryReturnedNoRows)

	query.Query = "insert into chunks (idx) values (?);"
	query.Arguments = []any{128}

	affected, err = ExecuteQuery(db, query)
	require.Nil(t, err)
	require.Equal(t, int64(1), affected)

	query.Query = "select idx from chunks where idx = 128;"

	err = QueryRow(db, query, &value)
	require.Nil(t, err)
	require.Equal(t, uint64(128), value)

	query.Query = "insert into chunks (idx) values (?);"
	query.Arguments = []any{256}

	affected, err = ExecuteQuery(db, query)
	require.Nil(t, err)
	require.Equal(t, int64(1), affected)

	query.Query = "select idx from chunks order by idx;"

	err = QueryRows(db, query, callback)
	require.Nil(t, err)
	require.Equal(t, []uint64{128, 256}, indexes)
}
