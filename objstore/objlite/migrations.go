package objlite

import (
	"context"
	"errors"
	"fmt"

	"github.com/couchbaselabs/s3lite/objstore/objval"
	"github.com/couchbaselabs/s3lite/sqlite"
)

// migration is a single schema step applied to a tenant store exactly once; applied migrations are recorded in the
// '_migrations' table by their index.
//
// NOTE: Published migrations are immutable, schema changes must be appended as new entries.
type migration struct {
	statements []string
	backfill   sqlite.TxCallback
}

var migrations = []migration{
	{
		statements: []string{
			`create table if not exists objects (
				bucket text not null,
				key text not null,
				chunk_index integer not null,
				size integer not null default 0,
				etag text not null default '',
				last_modified text not null default '',
				content_type text not null default '',
				data blob,
				primary key (bucket, key, chunk_index)
			);`,
			`create table if not exists multipart_uploads (
				upload_id text primary key,
				bucket text not null,
				key text not null,
				created_at text not null,
				content_type text not null default ''
			);`,
			`create table if not exists multipart_parts (
				upload_id text not null,
				part_number integer not null,
				chunk_index integer not null,
				size integer not null default 0,
				etag text not null default '',
				data blob,
				primary key (upload_id, part_number, chunk_index)
			);`,
			`create index if not exists idx_objects_listing on objects (bucket, key) where chunk_index = 0;`,
		},
	},
	{
		statements: []string{
			`alter table objects add column depth integer;`,
			`alter table objects add column parent text;`,
			`create index if not exists idx_objects_parent on objects (bucket, parent) where chunk_index = 0;`,
		},
		backfill: backfillKeyDerivation,
	},
}

// migrate brings the schema up to date, applying any migrations beyond the latest version recorded in the
// '_migrations' table. Each migration runs inside its own transaction together with the recording of its version, a
// failed migration leaves the store on the prior version.
func (s *Store) migrate(ctx context.Context) error {
	_, err := sqlite.ExecuteQuery(s.db, sqlite.Query{
		Query: "create table if not exists _migrations (version integer primary key);",
	})
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	var applied int

	err = sqlite.QueryRow(s.db, sqlite.Query{Query: "select coalesce(max(version), -1) from _migrations;"}, &applied)
	if err != nil {
		return fmt.Errorf("failed to determine applied migrations: %w", err)
	}

	for version := applied + 1; version < len(migrations); version++ {
		err = sqlite.WithTransaction(ctx, s.db, func(tx sqlite.Tx) error { return apply(tx, version) })
		if err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", version, err)
		}

		s.logger.Info("applied migration", "version", version)
	}

	return nil
}

// apply runs the statements (and backfill, where one exists) of the migration with the given version, then records it
// as applied.
func apply(tx sqlite.Tx, version int) error {
	for _, statement := range migrations[version].statements {
		_, err := sqlite.ExecuteQuery(tx, sqlite.Query{Query: statement})
		if err != nil {
			return err
		}
	}

	if backfill := migrations[version].backfill; backfill != nil {
		err := backfill(tx)
		if err != nil {
			return fmt.Errorf("failed to backfill: %w", err)
		}
	}

	_, err := sqlite.ExecuteQuery(tx, sqlite.Query{
		Query:     "insert into _migrations (version) values (?);",
		Arguments: []any{version},
	})

	return err
}

// backfillKeyDerivation populates the 'depth'/'parent' columns on metadata chunks created before the columns existed.
func backfillKeyDerivation(tx sqlite.Tx) error {
	type object struct {
		bucket string
		key    string
	}

	var objects []object

	callback := func(scan sqlite.ScanCallback) error {
		var obj object

		err := scan(&obj.bucket, &obj.key)
		if err != nil {
			return err
		}

		objects = append(objects, obj)

		return nil
	}

	err := sqlite.QueryRows(tx, sqlite.Query{Query: "select bucket, key from objects where chunk_index = 0;"}, callback)
	if err != nil && !errors.Is(err, sqlite.ErrQueryReturnedNoRows) {
		return err
	}

	for _, obj := range objects {
		_, err = sqlite.ExecuteQuery(tx, sqlite.Query{
			Query:     "update objects set depth = ?, parent = ? where bucket = ? and key = ? and chunk_index = 0;",
			Arguments: []any{objval.KeyDepth(obj.key), objval.KeyParent(obj.key), obj.bucket, obj.key},
		})
		if err != nil {
			return err
		}
	}

	return nil
}
