package media

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"
)

// MemoryStore keeps uploads in a map
type MemoryStore struct {
	baseURL string
	folder  string
	objects map[string][]byte
	mu      sync.RWMutex
}

// NewMemoryStore creates an empty store; URLs are rooted at baseURL
func NewMemoryStore(baseURL, folder string) *MemoryStore {
	if baseURL == "" {
		baseURL = "memory://media"
	}
	return &MemoryStore{
		baseURL: baseURL,
		folder:  folder,
		objects: make(map[string][]byte),
	}
}

// Upload reads the whole body into memory
func (s *MemoryStore) Upload(ctx context.Context, up *Upload) (*Object, error) {
	if up == nil || up.Body == nil {
		return nil, ErrEmptyUpload
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, up.Body); err != nil {
		return nil, err
	}
	if buf.Len() == 0 {
		return nil, ErrEmptyUpload
	}

	key := objectKey(s.folder, up.Filename, time.Now())

	s.mu.Lock()
	s.objects[key] = buf.Bytes()
	s.mu.Unlock()

	return &Object{URL: publicURL(s.baseURL, key), ID: key}, nil
}

// Destroy removes id; unknown ids are not an error
func (s *MemoryStore) Destroy(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.objects, id)
	s.mu.Unlock()
	return nil
}

// Has reports whether id is stored
func (s *MemoryStore) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[id]
	return ok
}

// Len returns the number of stored objects
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
