package database

import (
	"context"
	"database/sql"
)

// SQLDatabase is the subset of *sql.DB the repositories and migrations use.
// *Pool satisfies it, and so does a sqlmock connection in tests.
type SQLDatabase interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	PingContext(ctx context.Context) error
}

var (
	_ SQLDatabase = (*sql.DB)(nil)
	_ SQLDatabase = (*Pool)(nil)
)
