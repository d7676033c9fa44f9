package sqlite

import "fmt"

// Pragma represents the string representation of an SQLite PRAGMA which can be used to query the SQLite library for
// internal (non-table) data.
type Pragma string

const (
	// PragmaUserVersion is an integer that is available to applications to use however they want; SQLite makes no use
	// of the user_version itself.
	PragmaUserVersion Pragma = "user_version"

	// PragmaJournalMode sets or queries the journal mode for the database, for example 'wal' or 'delete'.
	PragmaJournalMode Pragma = "journal_mode"

	// PragmaBusyTimeout is the duration, in milliseconds, a connection will sleep waiting for a locked table to become
	// available before returning SQLITE_BUSY.
	PragmaBusyTimeout Pragma = "busy_timeout"
)

// GetPragma queries the provided pragma and stores the result in the provided interface; its the job of the caller to
// ensure the provided type is valid for the value returned by the pragma.
func GetPragma(db Queryable, pragma Pragma, data any) error {
	query := Query{
		Query: fmt.Sprintf("pragma %s;", pragma),
	}

	return QueryRow(db, query, data)
}

// SetPragma sets the provided pragma to the given value; its the job of the caller to ensure the provided value is of a
// valid type for the pragma.
func SetPragma(db Executable, pragma Pragma, value any) error {
	query := Query{
		Query: fmt.Sprintf("pragma %s=%v;", pragma, value),
	}

	_, err := ExecuteQuery(db, query)

	return err
}
