package sqlite_test

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/mattn/go-sqlite3"
	"github.com/phrazzld/pagequeue/internal/platform/sqlite"
	"github.com/phrazzld/pagequeue/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "no rows",
			err:  sql.ErrNoRows,
			want: store.ErrNotFound,
		},
		{
			name: "unique constraint",
			err:  sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique},
			want: store.ErrDuplicate,
		},
		{
			name: "primary key constraint",
			err:  sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintPrimaryKey},
			want: store.ErrDuplicate,
		},
		{
			name: "check constraint",
			err:  sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintCheck},
			want: store.ErrInvalidEntity,
		},
		{
			name: "not null constraint",
			err:  sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintNotNull},
			want: store.ErrInvalidEntity,
		},
		{
			name: "busy",
			err:  sqlite3.Error{Code: sqlite3.ErrBusy},
			want: store.ErrBusy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapped := sqlite.MapError(tt.err)
			assert.ErrorIs(t, mapped, tt.want)
			assert.ErrorIs(t, mapped, tt.err)
		})
	}

	t.Run("check violation is not a duplicate", func(t *testing.T) {
		mapped := sqlite.MapError(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintCheck})
		assert.False(t, errors.Is(mapped, store.ErrDuplicate))
	})

	t.Run("nil and foreign errors pass through", func(t *testing.T) {
		assert.NoError(t, sqlite.MapError(nil))
		other := errors.New("boom")
		assert.Same(t, other, sqlite.MapError(other))
	})
}
