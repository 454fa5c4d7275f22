package sqlite

import (
	"context"
	"fmt"

	"github.com/phrazzld/pagequeue/internal/domain"
	"github.com/phrazzld/pagequeue/internal/platform/logger"
	"github.com/phrazzld/pagequeue/internal/store"
)

const (
	replacePageSQL = `INSERT OR REPLACE INTO moz_pages (url, path, maxAge, createdAt, remote)
		VALUES (:url, :path, :maxAge, :createdAt, :remote)`

	selectPageSQL = `SELECT url, path, maxAge, createdAt, remote
		FROM moz_pages WHERE url = :url`

	countPagesSQL = `SELECT COUNT(*) FROM moz_pages`
)

var pageColumns = []string{"url", "path", "maxAge", "createdAt", "remote"}

// PageStore implements store.PageStore using SQLite.
type PageStore struct {
	path string
	opts []Option
}

var _ store.PageStore = (*PageStore)(nil)

// NewPageStore creates a PageStore for the database file at path.
func NewPageStore(path string, opts ...Option) *PageStore {
	return &PageStore{path: path, opts: opts}
}

// SavePage inserts the page, replacing any row with the same URL.
func (s *PageStore) SavePage(ctx context.Context, page *domain.Page) error {
	params := Params{
		"url":       page.URL(),
		"path":      page.Path(),
		"maxAge":    page.MaxAge(),
		"createdAt": page.CreatedAt(),
		"remote":    page.Remote(),
	}
	err := withStorage(s.path, s.opts, func(st *Storage) error {
		_, err := st.Execute(ctx, "save page", replacePageSQL, params)
		return err
	})
	if err != nil {
		logger.FromContext(ctx).Error("failed to save page",
			"url", page.URL(),
			"error", err)
		return store.NewStoreError("page", "save", "failed to save page", err)
	}
	return nil
}

// GetPageByURL retrieves the page stored under url, or nil if there is none.
func (s *PageStore) GetPageByURL(ctx context.Context, url string) (*domain.Page, error) {
	var rows []map[string]any
	err := withStorage(s.path, s.opts, func(st *Storage) error {
		var err error
		rows, err = st.ExecuteColumns(ctx, "get page", selectPageSQL, pageColumns, Params{"url": url})
		return err
	})
	if err != nil {
		return nil, store.NewStoreError("page", "get", "failed to query page", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	page, err := pageFromRow(rows[0])
	if err != nil {
		return nil, store.NewStoreError("page", "get", "failed to decode page", err)
	}
	return page, nil
}

// CountPages returns the number of stored pages.
func (s *PageStore) CountPages(ctx context.Context) (int64, error) {
	var rows [][]any
	err := withStorage(s.path, s.opts, func(st *Storage) error {
		var err error
		rows, err = st.Execute(ctx, "count pages", countPagesSQL, nil)
		return err
	})
	if err != nil {
		return 0, store.NewStoreError("page", "count", "failed to count pages", err)
	}
	if len(rows) != 1 || len(rows[0]) != 1 {
		return 0, store.NewStoreError("page", "count", "unexpected result shape", nil)
	}
	return asInt64(rows[0][0])
}

func pageFromRow(row map[string]any) (*domain.Page, error) {
	var (
		params domain.PageParams
		remote int64
		err    error
	)
	if params.URL, err = asString(row["url"]); err != nil {
		return nil, fmt.Errorf("url: %w", err)
	}
	if params.Path, err = asString(row["path"]); err != nil {
		return nil, fmt.Errorf("path: %w", err)
	}
	if params.MaxAge, err = asInt64(row["maxAge"]); err != nil {
		return nil, fmt.Errorf("maxAge: %w", err)
	}
	if params.CreatedAt, err = asInt64(row["createdAt"]); err != nil {
		return nil, fmt.Errorf("createdAt: %w", err)
	}
	if remote, err = asInt64(row["remote"]); err != nil {
		return nil, fmt.Errorf("remote: %w", err)
	}
	params.Remote = remote != 0

	return domain.NewPage(params)
}
