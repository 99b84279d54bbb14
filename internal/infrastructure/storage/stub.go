package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	mailapp "github.com/mailriver/backend/internal/application/mail"
)

var _ mailapp.ObjectStorageService = (*StubObjectStorage)(nil)

// StubObjectStorage is the dev/test scan store. URLs are fabricated; every
// issued key is considered uploaded so the confirm flow works without a
// real backend.
type StubObjectStorage struct {
	// BaseURL prefixes the fabricated upload/download URLs
	BaseURL string

	mu      sync.Mutex
	deleted map[string]bool
}

// NewStubObjectStorage creates a new stub scan store
func NewStubObjectStorage() *StubObjectStorage {
	return &StubObjectStorage{
		BaseURL: "https://storage.example.com",
		deleted: make(map[string]bool),
	}
}

// GenerateUploadURL fabricates a PUT URL for the key
func (s *StubObjectStorage) GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	expiresAt := time.Now().Add(expiresIn)
	return s.BaseURL + "/upload/" + storageKey, expiresAt, nil
}

// GenerateDownloadURL fabricates a GET URL for the key
func (s *StubObjectStorage) GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	expiresAt := time.Now().Add(expiresIn)
	return s.BaseURL + "/download/" + storageKey, expiresAt, nil
}

// DeleteObject records the deletion so ObjectExists stops reporting the key
func (s *StubObjectStorage) DeleteObject(ctx context.Context, storageKey string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}
	s.mu.Lock()
	s.deleted[storageKey] = true
	s.mu.Unlock()
	return nil
}

// ObjectExists reports true for any key that has not been deleted, letting
// the scan confirmation flow proceed without real uploads
func (s *StubObjectStorage) ObjectExists(ctx context.Context, storageKey string) (bool, error) {
	if storageKey == "" {
		return false, errors.New("storage key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.deleted[storageKey], nil
}
