package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"github.com/phrazzld/pagequeue/internal/store"
)

// ErrNotOpen is returned by CloseConnection when the Storage has no open
// connection.
var ErrNotOpen = errors.New("sqlite: connection is not open")

// ExecError records which named statement failed.
type ExecError struct {
	Name string
	Err  error
}

// Error implements the error interface.
func (e *ExecError) Error() string {
	return fmt.Sprintf("sqlite: statement %q failed: %v", e.Name, e.Err)
}

// Unwrap returns the underlying error to support errors.Is/errors.As.
func (e *ExecError) Unwrap() error {
	return e.Err
}

// MapError maps a SQLite driver error to the matching store error.
// The original error stays in the chain so callers can still inspect it.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %w", store.ErrNotFound, err)
	}

	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}

	switch sqliteErr.Code {
	case sqlite3.ErrConstraint:
		switch {
		case IsUniqueViolation(err):
			return fmt.Errorf("%w: %w", store.ErrDuplicate, err)
		case IsCheckConstraintViolation(err):
			return fmt.Errorf("%w: check constraint violation: %w", store.ErrInvalidEntity, err)
		case sqliteErr.ExtendedCode == sqlite3.ErrConstraintNotNull:
			return fmt.Errorf("%w: not null violation: %w", store.ErrInvalidEntity, err)
		case sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey:
			return fmt.Errorf("%w: foreign key violation: %w", store.ErrInvalidEntity, err)
		}
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	case sqlite3.ErrBusy, sqlite3.ErrLocked:
		return fmt.Errorf("%w: %w", store.ErrBusy, err)
	}

	return err
}

// IsUniqueViolation reports whether err is a SQLite unique or primary key
// constraint violation.
func IsUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) &&
		(sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey)
}

// IsCheckConstraintViolation reports whether err is a SQLite CHECK
// constraint violation.
func IsCheckConstraintViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintCheck
}
