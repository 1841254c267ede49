package blobstore

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(t.TempDir(), "http://localhost:8080/api/v1/blobs")
	require.NoError(t, err)
	return store
}

func TestFileStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	url, err := store.Put(ctx, "sources/rec-1/video.mp4", strings.NewReader("media bytes"), "video/mp4")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api/v1/blobs/sources/rec-1/video.mp4", url)

	reader, err := store.Get(ctx, "sources/rec-1/video.mp4")
	require.NoError(t, err)
	defer reader.Close()

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "media bytes", string(data))
}

func TestFileStorePutOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Put(ctx, "derived/rec-1/audio.wav", strings.NewReader("first"), "audio/wav")
	require.NoError(t, err)
	_, err = store.Put(ctx, "derived/rec-1/audio.wav", strings.NewReader("second"), "audio/wav")
	require.NoError(t, err)

	reader, err := store.Get(ctx, "derived/rec-1/audio.wav")
	require.NoError(t, err)
	defer reader.Close()

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestFileStoreGetMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "sources/nope/video.mp4")
	assert.True(t, errors.Is(err, ErrBlobNotFound))
}

func TestFileStoreDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Put(ctx, "highlights/rec-1/reel.mp4", strings.NewReader("clip"), "video/mp4")
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "highlights/rec-1/reel.mp4"))

	_, err = store.Get(ctx, "highlights/rec-1/reel.mp4")
	assert.True(t, errors.Is(err, ErrBlobNotFound))

	// Deleting a missing key is not an error
	assert.NoError(t, store.Delete(ctx, "highlights/rec-1/reel.mp4"))
}

func TestFileStoreRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(filepath.Join(dir, "blobs"), "")
	require.NoError(t, err)

	secret := filepath.Join(dir, "secret.txt")
	require.NoError(t, os.WriteFile(secret, []byte("keep out"), 0o600))

	_, err = store.Get(context.Background(), "../secret.txt")
	assert.Error(t, err, "traversal outside the root must not resolve")

	_, err = store.Put(context.Background(), "", strings.NewReader("x"), "")
	assert.Error(t, err, "empty key is rejected")
}

func TestFileStoreRequiresDirectory(t *testing.T) {
	_, err := NewFileStore("", "http://localhost")
	assert.Error(t, err)
}

func TestFileStoreURLTrimsSlashes(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "http://localhost:8080/api/v1/blobs/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api/v1/blobs/sources/a", store.URL("/sources/a"))
}
