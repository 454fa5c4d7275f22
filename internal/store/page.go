package store

import (
	"context"

	"github.com/phrazzld/pagequeue/internal/domain"
)

// PageStore defines the interface for page persistence.
type PageStore interface {
	// SavePage inserts the page or replaces the row with the same URL.
	// Saving an unchanged page again produces an identical row.
	SavePage(ctx context.Context, page *domain.Page) error

	// GetPageByURL retrieves the page with exactly this URL.
	// Returns nil and no error if no such page exists.
	GetPageByURL(ctx context.Context, url string) (*domain.Page, error)

	// CountPages returns the number of stored pages.
	CountPages(ctx context.Context) (int64, error)
}
