// Package store owns the on-disk catalogue schema and its raw,
// transactional CRUD operations. All methods block; the catalogue's
// worker goroutine is the only intended caller.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

type DB struct {
	*sqlx.DB
}

// Open opens or creates the catalogue database at path and applies
// pending schema migrations before returning.
func Open(path string) (*DB, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	s := &DB{db}
	if err := s.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (db *DB) Close() error {
	return db.DB.Close()
}

// withTx runs fn inside one write transaction with deferred
// foreign-key checking, so rows inside one batch may reference each
// other in any order. Constraint violations come back as
// ReferentialError.
func (db *DB) withTx(ctx context.Context, op string, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "PRAGMA defer_foreign_keys = ON"); err != nil {
		return fmt.Errorf("%s: defer foreign keys: %w", op, err)
	}

	if err := fn(tx); err != nil {
		return classify(op, err)
	}
	if err := checkDeferredFKs(ctx, tx, op); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return classify(op, err)
	}
	return nil
}

// checkDeferredFKs surfaces deferred foreign-key violations before
// Commit. A commit-time failure would mark the Tx done with the
// connection still inside the open transaction, poisoning the pool;
// at this point rollback still works.
func checkDeferredFKs(ctx context.Context, tx *sqlx.Tx, op string) error {
	var table, parent string
	err := tx.QueryRowContext(ctx, `SELECT "table", parent FROM pragma_foreign_key_check LIMIT 1`).Scan(&table, &parent)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: foreign key check: %w", op, err)
	}
	return &ReferentialError{Op: op, Err: fmt.Errorf("%s row references a missing %s row", table, parent)}
}

// getOne scans a single row into dest, mapping absence to (false, nil)
// rather than an error.
func getOne(ctx context.Context, db *DB, dest interface{}, query string, args ...interface{}) (bool, error) {
	err := db.GetContext(ctx, dest, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
