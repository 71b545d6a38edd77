// Package dbpkg opens database connections and defines the query
// surface the repository layer is written against.
package dbpkg

import (
	"context"
	"database/sql"
)

// Setup opens a database connection and verifies it with a ping.
func Setup(driver, source string) (*sql.DB, error) {
	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, err
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// SQLInterface is the subset of database/sql methods the repositories use.
// Both *sql.DB and *sql.Tx satisfy it, so a repository can run standalone
// or inside a caller-managed transaction.
type SQLInterface interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}
