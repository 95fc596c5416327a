package store

import (
	"context"
	"database/sql"
)

// querier is the subset of *sql.DB and *sql.Tx the repositories need, so a
// method can run either on the pool or inside a caller-owned transaction.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// querierFor picks the transaction when one is given, the pool otherwise.
func querierFor(db *DB, tx *sql.Tx) querier {
	if tx != nil {
		return tx
	}
	return db
}

// scanner abstracts over *sql.Row and *sql.Rows for shared scan helpers.
type scanner interface {
	Scan(dest ...any) error
}
