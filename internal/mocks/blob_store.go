package mocks

import (
	"sync"

	"github.com/phrazzld/pagequeue/internal/store"
)

// MockBlobStore is an in-memory store.BlobStore.
type MockBlobStore struct {
	mu    sync.Mutex
	files map[string][]byte

	SaveFileFn func(name string, content []byte) error

	RemoveFileCalls []string
}

var _ store.BlobStore = (*MockBlobStore)(nil)

// NewMockBlobStore creates an empty MockBlobStore.
func NewMockBlobStore() *MockBlobStore {
	return &MockBlobStore{files: make(map[string][]byte)}
}

// GetFile implements store.BlobStore.
func (m *MockBlobStore) GetFile(name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.files[name], nil
}

// SaveFile implements store.BlobStore.
func (m *MockBlobStore) SaveFile(name string, content []byte) error {
	if m.SaveFileFn != nil {
		return m.SaveFileFn(name, content)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = append([]byte(nil), content...)
	return nil
}

// RemoveFile implements store.BlobStore.
func (m *MockBlobStore) RemoveFile(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RemoveFileCalls = append(m.RemoveFileCalls, name)
	delete(m.files, name)
	return nil
}

// Count returns the number of stored blobs.
func (m *MockBlobStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.files)
}
