package sqlite

import (
	"database/sql"

	// Register the 'sqlite3' driver used by 'Open'.
	_ "github.com/mattn/go-sqlite3"
)

// initBarrier ensures a single goroutine performs initialization of the SQLite library.
//
// NOTE: A serving process may open any number of tenant databases concurrently; multiple goroutines can therefore call
// 'sql.Open' at the same time. Concurrent first-time initialization of the SQLite library has been observed to SIGSEGV,
// so the first call is funneled through an initialization barrier.
var initBarrier = newInitBarrier()

// Open a new SQLite database on disk whilst ensuring that the first time this function is called the SQLite library is
// initialized by a single goroutine.
func Open(path string) (*sql.DB, error) {
	ok := initBarrier.wait()

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		if ok {
			initBarrier.failed()
		}

		return nil, err
	}

	// We didn't read anything from the barrier channel, meaning another goroutine has already initialized the SQLite
	// library and we can return early.
	if !ok {
		return db, nil
	}

	// We're the first goroutine to open an SQLite database, call 'Ping' to force the first connection to be made
	// ensuring the SQLite library is initialized.
	err = db.Ping()
	if err != nil {
		initBarrier.failed()
		return nil, err
	}

	// Only close the barrier channel if the call to 'Ping' was successful; failed calls must not lead other goroutines
	// to assume the SQLite library was initialized because it might not have been.
	initBarrier.success()

	return db, nil
}
