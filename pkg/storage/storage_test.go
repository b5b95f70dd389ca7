package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/kickstock-backend/pkg/config"
)

func TestFileStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	key := "queue/7/abc-front.jpg"
	require.NoError(t, store.Put(ctx, key, bytes.NewReader([]byte("jpeg")), 4, "image/jpeg"))

	data, err := os.ReadFile(filepath.Join(dir, "queue", "7", "abc-front.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(data))

	url, err := store.PresignGet(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "file://"))

	require.NoError(t, store.Delete(ctx, key))
	require.NoError(t, store.Delete(ctx, key))
	_, err = store.PresignGet(ctx, key, time.Minute)
	assert.Error(t, err)
}

func TestFileStoreRejectsEscapingKeys(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"../outside.jpg", "/etc/passwd", "", "."} {
		err := store.Put(context.Background(), key, strings.NewReader("x"), 1, "image/png")
		assert.Error(t, err, "key %q", key)
	}
}

func TestNewFileStoreRequiresPath(t *testing.T) {
	_, err := NewFileStore("  ")
	assert.Error(t, err)
}

func TestNewSelectsLocalBackend(t *testing.T) {
	store, err := New(context.Background(), config.StorageConfig{Backend: config.StorageBackendLocal, LocalDir: t.TempDir()})
	require.NoError(t, err)
	_, ok := store.(*FileStore)
	assert.True(t, ok)
}

func TestNewMinioStoreRequiresBucket(t *testing.T) {
	_, err := NewMinioStore(context.Background(), "localhost:9000", "a", "b", "", false)
	assert.Error(t, err)
}

func TestObjectKey(t *testing.T) {
	key := ObjectKey(12, "../../left shoe.png")
	assert.True(t, strings.HasPrefix(key, "queue/12/"))
	assert.True(t, strings.HasSuffix(key, "-left_shoe.png"))
	assert.NotEqual(t, key, ObjectKey(12, "../../left shoe.png"))
	assert.True(t, strings.HasSuffix(ObjectKey(1, ""), "-image"))
}
