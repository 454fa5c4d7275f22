package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/pagequeue/internal/domain"
	"github.com/phrazzld/pagequeue/internal/store"
)

// MockPageStore is an in-memory store.PageStore.
type MockPageStore struct {
	mu    sync.Mutex
	pages map[string]*domain.Page

	// Custom behavior functions, used instead of the in-memory data when set
	SavePageFn     func(ctx context.Context, page *domain.Page) error
	GetPageByURLFn func(ctx context.Context, url string) (*domain.Page, error)

	SavePageCalls int
}

var _ store.PageStore = (*MockPageStore)(nil)

// NewMockPageStore creates an empty MockPageStore.
func NewMockPageStore() *MockPageStore {
	return &MockPageStore{pages: make(map[string]*domain.Page)}
}

// SavePage implements store.PageStore.
func (m *MockPageStore) SavePage(ctx context.Context, page *domain.Page) error {
	m.mu.Lock()
	m.SavePageCalls++
	m.mu.Unlock()

	if m.SavePageFn != nil {
		return m.SavePageFn(ctx, page)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[page.URL()] = page
	return nil
}

// GetPageByURL implements store.PageStore.
func (m *MockPageStore) GetPageByURL(ctx context.Context, url string) (*domain.Page, error) {
	if m.GetPageByURLFn != nil {
		return m.GetPageByURLFn(ctx, url)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pages[url], nil
}

// CountPages implements store.PageStore.
func (m *MockPageStore) CountPages(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.pages)), nil
}

// Put stores page directly, bypassing SavePageFn and call tracking.
func (m *MockPageStore) Put(page *domain.Page) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[page.URL()] = page
}
