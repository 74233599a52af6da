package storage

import (
	"context"
	"io"
	"sync"
)

// MemoryStorage keeps uploads in process memory for dev mode and tests.
type MemoryStorage struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{blobs: make(map[string][]byte)}
}

func (s *MemoryStorage) Upload(ctx context.Context, key string, file io.Reader, contentType string) (string, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = data

	return "memory://" + key, nil
}

// Blob returns a stored blob; test helper.
func (s *MemoryStorage) Blob(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.blobs[key]
	return data, ok
}
