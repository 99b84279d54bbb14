package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubObjectStorage_URLs(t *testing.T) {
	s := NewStubObjectStorage()
	ctx := context.Background()

	url, expiresAt, err := s.GenerateUploadURL(ctx, "scans/ws/item/abc.pdf", "application/pdf", 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "https://storage.example.com/upload/scans/ws/item/abc.pdf", url)
	assert.True(t, expiresAt.After(time.Now()))

	url, _, err = s.GenerateDownloadURL(ctx, "scans/ws/item/abc.pdf", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "https://storage.example.com/download/scans/ws/item/abc.pdf", url)
}

func TestStubObjectStorage_EmptyKeyRejected(t *testing.T) {
	s := NewStubObjectStorage()
	ctx := context.Background()

	_, _, err := s.GenerateUploadURL(ctx, "", "application/pdf", time.Minute)
	require.Error(t, err)
	_, _, err = s.GenerateDownloadURL(ctx, "", time.Minute)
	require.Error(t, err)
	require.Error(t, s.DeleteObject(ctx, ""))
	_, err = s.ObjectExists(ctx, "")
	require.Error(t, err)
}

func TestStubObjectStorage_DeleteHidesObject(t *testing.T) {
	s := NewStubObjectStorage()
	ctx := context.Background()

	exists, err := s.ObjectExists(ctx, "scans/ws/item/abc.pdf")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, s.DeleteObject(ctx, "scans/ws/item/abc.pdf"))

	exists, err = s.ObjectExists(ctx, "scans/ws/item/abc.pdf")
	require.NoError(t, err)
	assert.False(t, exists)
}
