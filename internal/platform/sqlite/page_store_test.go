package sqlite_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/phrazzld/pagequeue/internal/domain"
	"github.com/phrazzld/pagequeue/internal/platform/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestDBPath creates a migrated database file and returns its path.
func newTestDBPath(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "taskqueue.sqlite")
	s := sqlite.NewStorage(path)
	require.NoError(t, s.CreateTables(context.Background()))
	require.NoError(t, s.CloseConnection())
	return path
}

func TestPageStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	pages := sqlite.NewPageStore(newTestDBPath(t))

	page, err := domain.NewPage(domain.PageParams{
		URL:       "http://example.com/",
		MaxAge:    60000,
		Remote:    true,
		CreatedAt: 1700000000000,
	})
	require.NoError(t, err)

	require.NoError(t, pages.SavePage(ctx, page))

	got, err := pages.GetPageByURL(ctx, "http://example.com/")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, page, got)
	assert.Equal(t, page.Expiration(), got.Expiration())

	t.Run("saving again is idempotent", func(t *testing.T) {
		require.NoError(t, pages.SavePage(ctx, page))
		count, err := pages.CountPages(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("missing page returns nil", func(t *testing.T) {
		got, err := pages.GetPageByURL(ctx, "http://missing.test/")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestPageStore_ReplaceByURL(t *testing.T) {
	ctx := context.Background()
	pages := sqlite.NewPageStore(newTestDBPath(t))

	first, err := domain.NewPage(domain.PageParams{URL: "http://example.com/", CreatedAt: 1})
	require.NoError(t, err)
	second, err := domain.NewPage(domain.PageParams{URL: "http://example.com/"})
	require.NoError(t, err)
	require.NotEqual(t, first.Path(), second.Path())

	require.NoError(t, pages.SavePage(ctx, first))
	require.NoError(t, pages.SavePage(ctx, second))

	got, err := pages.GetPageByURL(ctx, "http://example.com/")
	require.NoError(t, err)
	assert.Equal(t, second.Path(), got.Path())
	assert.Equal(t, second.CreatedAt(), got.CreatedAt())

	count, err := pages.CountPages(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestPageStore_CountPages(t *testing.T) {
	ctx := context.Background()
	pages := sqlite.NewPageStore(newTestDBPath(t))

	const n = 20
	for i := 0; i < n; i++ {
		page, err := domain.NewPage(domain.PageParams{URL: fmt.Sprintf("http://example.com/%d", i)})
		require.NoError(t, err)
		require.NoError(t, pages.SavePage(ctx, page))
	}

	count, err := pages.CountPages(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(n), count)
}

func TestPageStore_MissingSchema(t *testing.T) {
	pages := sqlite.NewPageStore(filepath.Join(t.TempDir(), "empty.sqlite"))

	_, err := pages.GetPageByURL(context.Background(), "http://example.com/")
	require.Error(t, err)

	var execErr *sqlite.ExecError
	assert.ErrorAs(t, err, &execErr)
}
