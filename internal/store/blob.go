package store

// BlobStore defines the interface for the captured-content namespace.
type BlobStore interface {
	// GetFile returns the content stored under name.
	// Returns nil and no error if the blob does not exist.
	GetFile(name string) ([]byte, error)

	// SaveFile atomically replaces the content stored under name.
	SaveFile(name string, content []byte) error

	// RemoveFile deletes the blob. Removing an absent blob is not an error.
	RemoveFile(name string) error
}
