package preview

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// BlobStore hands out local blob: URLs for in-memory binary data, so views
// can display attachments and recordings without touching the network.
type BlobStore struct {
	mu    sync.RWMutex
	blobs map[string]Blob
}

// Blob is an in-memory binary object.
type Blob struct {
	Data     []byte
	MIMEType string
}

// NewBlobStore creates an empty blob store.
func NewBlobStore() *BlobStore {
	return &BlobStore{blobs: make(map[string]Blob)}
}

// Create registers data and returns its blob: URL.
func (s *BlobStore) Create(data []byte, mimeType string) string {
	url := fmt.Sprintf("blob:%s", uuid.New().String())
	s.mu.Lock()
	s.blobs[url] = Blob{Data: data, MIMEType: mimeType}
	s.mu.Unlock()
	return url
}

// Get resolves a blob: URL.
func (s *BlobStore) Get(url string) (Blob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blobs[url]
	return b, ok
}

// Revoke releases the data behind a blob: URL.
func (s *BlobStore) Revoke(url string) {
	s.mu.Lock()
	delete(s.blobs, url)
	s.mu.Unlock()
}
