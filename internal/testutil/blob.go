package testutil

import (
	"twarchive/internal/archive"
	"twarchive/internal/blob"
)

// NewTestBlobStore creates a new in-memory blob store for testing.
func NewTestBlobStore() archive.BlobStore {
	return blob.NewMemoryStore()
}
