package db

import (
	"github.com/AdamBeresnev/matchday/internal/logging"
	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// fileOptions apply to every pooled connection. Transactions start with BEGIN IMMEDIATE so a
// read-then-write transaction takes the write lock up front and waits on busy_timeout instead
// of failing with SQLITE_BUSY when another writer holds the database.
const fileOptions = "?_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate&_foreign_keys=on"

// Open connects to the SQLite database at path with WAL journaling and foreign keys on.
func Open(path string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", path+fileOptions)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to %s", path)
	}

	logging.Default().Info("database connected", "path", path)
	return db, nil
}

// OpenMemory returns a private in-memory database. The pool is pinned to one connection since
// every new SQLite memory connection starts empty.
func OpenMemory() (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", "file::memory:")
	if err != nil {
		return nil, errors.Wrap(err, "failed to open in-memory database")
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to enable foreign keys")
	}
	return db, nil
}
