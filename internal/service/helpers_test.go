package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-file-manager/internal/cache"
	"go-file-manager/internal/kv"
	"go-file-manager/internal/logger"
	"go-file-manager/internal/model"
	"go-file-manager/internal/storage"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.LevelError, Detailed: false, Console: io.Discard})
}

func testIdentity() model.Identity {
	return model.Identity{User: "tester", IP: "127.0.0.1", UserAgent: "test"}
}

func newStack(t *testing.T) (*cache.CachedAdapter, *cache.MetadataCache) {
	t.Helper()

	local, err := storage.NewLocal(t.TempDir(), 0)
	require.NoError(t, err)

	store, err := kv.NewBadgerStore("")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	metadata := cache.NewMetadataCache(store, local, time.Minute, testLogger())
	return cache.NewCachedAdapter(local, metadata), metadata
}

func writeTestFile(t *testing.T, fs *cache.CachedAdapter, path string, content string) {
	t.Helper()

	writer, err := fs.WriteStream(context.Background(), path)
	require.NoError(t, err)
	_, err = io.WriteString(writer, content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
}
