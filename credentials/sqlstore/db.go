package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	_ "modernc.org/sqlite"
)

// filePragmas are applied to every connection of an on-disk database.
var filePragmas = []string{
	"journal_mode(WAL)",
	"busy_timeout(5000)",
	"synchronous(NORMAL)",
}

// readerConns bounds the read pool. Writes go through a single connection.
const readerConns = 4

// DB is a SQLite database opened as a single-connection writer pool and a
// small reader pool over the same DSN.
type DB struct {
	Writer *sql.DB
	Reader *sql.DB
}

// Open opens (creating if needed) the database file at path and brings its
// schema up to date.
func Open(path string) (*DB, error) {
	if path == "" {
		return nil, errors.New("sqlstore: empty database path")
	}
	return OpenDSN(fileDSN(path))
}

func fileDSN(path string) string {
	params := make([]string, len(filePragmas))
	for i, p := range filePragmas {
		params[i] = "_pragma=" + p
	}
	return "file:" + path + "?" + strings.Join(params, "&")
}

// OpenDSN opens a database from a raw modernc.org/sqlite DSN and brings its
// schema up to date.
func OpenDSN(dsn string) (*DB, error) {
	writer, err := openPool(dsn, 1)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: writer: %w", err)
	}
	reader, err := openPool(dsn, readerConns)
	if err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("sqlstore: reader: %w", err)
	}

	db := &DB{Writer: writer, Reader: reader}
	if err := migrateUp(writer); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func openPool(dsn string, conns int) (*sql.DB, error) {
	pool, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	pool.SetMaxOpenConns(conns)
	if err := pool.Ping(); err != nil {
		_ = pool.Close()
		return nil, err
	}
	return pool, nil
}

// Close closes both pools and reports every failure.
func (db *DB) Close() error {
	return multierror.Append(nil, db.Reader.Close(), db.Writer.Close()).ErrorOrNil()
}
