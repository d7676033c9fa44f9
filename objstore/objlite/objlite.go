// Package objlite implements an S3 style object storage engine on top of a single embedded SQLite database; the
// database backs exactly one logical tenant, with objects stored as ordered sequences of fixed size chunk rows.
package objlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/couchbaselabs/s3lite/fsutil"
	"github.com/couchbaselabs/s3lite/sqlite"
)

const (
	// ChunkSize is the maximum number of object/part bytes carried by a single chunk row, chosen to sit comfortably
	// within the row size limits of the underlying storage engine.
	ChunkSize = 1024 * 1024

	// MaxKeys is the default/maximum page size honored when listing objects or multipart uploads.
	MaxKeys = 1000

	// busyTimeoutMillis is how long a connection will wait on a locked database file before failing; locks are only
	// expected to be held briefly by external tooling, requests serialize on the store lock.
	busyTimeoutMillis = 5000
)

// Store exposes CRUD, multipart upload, listing and copy operations for the objects held in a single tenant database.
//
// All operations serialize on an internal lock; a tenant handles one operation at a time, with mutations additionally
// wrapped in a transaction so that replacement (delete-then-insert) is atomic with respect to readers reconnecting
// after a crash.
type Store struct {
	db     *sql.DB
	lock   sync.Mutex
	logger *slog.Logger
}

// StoreOptions encapsulates the options available when creating a new store.
type StoreOptions struct {
	// Path is the location of the tenant database on disk, created if it does not already exist.
	//
	// NOTE: Required
	Path string

	// Logger is the passed logger which implements a custom Log method
	Logger *slog.Logger
}

// defaults fills any missing attributes to a sane default.
func (s *StoreOptions) defaults() {
	if s.Logger == nil {
		s.Logger = slog.Default()
	}
}

// NewStore opens (creating it, and any missing parent directories, if required) the tenant database at the given
// path and brings its schema up to date before returning; a store which returns without error is ready to serve
// requests.
func NewStore(ctx context.Context, options StoreOptions) (*Store, error) {
	// Fill out any missing fields with the sane defaults
	options.defaults()

	err := fsutil.Mkdir(filepath.Dir(options.Path), 0)
	if err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sqlite.Open(options.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// The store lock serializes requests on this side of the pool, a single connection keeps SQLite seeing the same
	// serial stream and makes the busy timeout/journal mode pragmas connection-stable.
	db.SetMaxOpenConns(1)

	store := Store{
		db:     db,
		logger: options.Logger,
	}

	err = store.prepare(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &store, nil
}

// prepare applies the connection pragmas then brings the schema up to date.
func (s *Store) prepare(ctx context.Context) error {
	err := sqlite.SetPragma(s.db, sqlite.PragmaBusyTimeout, busyTimeoutMillis)
	if err != nil {
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	err = sqlite.SetPragma(s.db, sqlite.PragmaJournalMode, "wal")
	if err != nil {
		return fmt.Errorf("failed to set journal mode: %w", err)
	}

	err = s.migrate(ctx)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	return nil
}

// Close releases the underlying database; use of the store after a call to 'Close' has undefined behavior.
func (s *Store) Close() error {
	return s.db.Close()
}
