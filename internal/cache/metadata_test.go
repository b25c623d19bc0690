package cache

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-file-manager/internal/kv"
	"go-file-manager/internal/logger"
	"go-file-manager/internal/model"
	"go-file-manager/internal/storage"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.LevelError, Detailed: false, Console: io.Discard})
}

func newBackend(t *testing.T) (*countingAdapter, kv.Store) {
	t.Helper()

	local, err := storage.NewLocal(t.TempDir(), 0)
	require.NoError(t, err)

	store, err := kv.NewBadgerStore("")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return &countingAdapter{Adapter: local}, store
}

// countingAdapter counts List calls so tests can observe cache hits and
// single-flight coalescing.
type countingAdapter struct {
	storage.Adapter
	listCalls atomic.Int64
	listDelay time.Duration
}

func (a *countingAdapter) List(ctx context.Context, dir string) ([]model.FileEntry, error) {
	a.listCalls.Add(1)
	if a.listDelay > 0 {
		time.Sleep(a.listDelay)
	}
	return a.Adapter.List(ctx, dir)
}

func seed(t *testing.T, fs storage.Adapter, paths ...string) {
	t.Helper()

	ctx := context.Background()
	for _, path := range paths {
		writer, err := fs.WriteStream(ctx, path)
		require.NoError(t, err)
		_, err = io.WriteString(writer, "data")
		require.NoError(t, err)
		require.NoError(t, writer.Close())
	}
}

func TestGetListingCachesWithinTTL(t *testing.T) {
	fs, store := newBackend(t)
	seed(t, fs, "/a.txt", "/b.txt")

	cache := NewMetadataCache(store, fs, time.Minute, testLogger())
	ctx := context.Background()

	first, err := cache.GetListing(ctx, "/")
	require.NoError(t, err)
	assert.Len(t, first.Entries, 2)
	assert.Equal(t, int64(1), fs.listCalls.Load())

	second, err := cache.GetListing(ctx, "/")
	require.NoError(t, err)
	assert.Len(t, second.Entries, 2)
	assert.Equal(t, int64(1), fs.listCalls.Load(), "fresh entry must be served from cache")
	assert.Equal(t, first.Generation, second.Generation)
}

func TestGetListingStaleRescans(t *testing.T) {
	fs, store := newBackend(t)
	seed(t, fs, "/a.txt")

	cache := NewMetadataCache(store, fs, 20*time.Millisecond, testLogger())
	ctx := context.Background()

	_, err := cache.GetListing(ctx, "/")
	require.NoError(t, err)

	time.Sleep(40 * time.Millisecond)

	_, err = cache.GetListing(ctx, "/")
	require.NoError(t, err)
	assert.Equal(t, int64(2), fs.listCalls.Load())
}

func TestExpiredContextServesFreshEntry(t *testing.T) {
	fs, store := newBackend(t)
	seed(t, fs, "/a.txt")

	cache := NewMetadataCache(store, fs, time.Minute, testLogger())

	_, err := cache.GetListing(context.Background(), "/")
	require.NoError(t, err)
	require.Equal(t, int64(1), fs.listCalls.Load())

	expired, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	listing, err := cache.GetListing(expired, "/")
	require.NoError(t, err)
	assert.Len(t, listing.Entries, 1)
	assert.Equal(t, int64(1), fs.listCalls.Load(), "cached entry must be served without a rescan")
}

func TestExpiredContextServesStaleEntry(t *testing.T) {
	fs, store := newBackend(t)
	seed(t, fs, "/a.txt")

	cache := NewMetadataCache(store, fs, 50*time.Millisecond, testLogger())

	primed, err := cache.GetListing(context.Background(), "/")
	require.NoError(t, err)

	time.Sleep(70 * time.Millisecond)

	// The rescan fails on the dead deadline; the stale entry is returned
	// rather than the error.
	expired, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	listing, err := cache.GetListing(expired, "/")
	require.NoError(t, err)
	assert.Equal(t, primed.Entries, listing.Entries)
	assert.Equal(t, primed.Generation, listing.Generation)
}

func TestExpiredContextColdCacheReturnsError(t *testing.T) {
	fs, store := newBackend(t)
	seed(t, fs, "/a.txt")

	cache := NewMetadataCache(store, fs, time.Minute, testLogger())

	expired, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := cache.GetListing(expired, "/")
	require.Error(t, err)
}

func TestConcurrentPopulateCoalesces(t *testing.T) {
	fs, store := newBackend(t)
	fs.listDelay = 30 * time.Millisecond
	seed(t, fs, "/a.txt")

	cache := NewMetadataCache(store, fs, time.Minute, testLogger())
	ctx := context.Background()

	const callers = 8
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			listing, err := cache.GetListing(ctx, "/")
			assert.NoError(t, err)
			assert.Len(t, listing.Entries, 1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), fs.listCalls.Load(), "concurrent cold reads must share one scan")
}

func TestInvalidateBumpsGeneration(t *testing.T) {
	fs, store := newBackend(t)
	seed(t, fs, "/a.txt")

	cache := NewMetadataCache(store, fs, time.Minute, testLogger())
	ctx := context.Background()

	first, err := cache.GetListing(ctx, "/")
	require.NoError(t, err)

	cache.Invalidate(ctx, "/")

	second, err := cache.GetListing(ctx, "/")
	require.NoError(t, err)
	assert.Greater(t, second.Generation, first.Generation)
	assert.Equal(t, int64(2), fs.listCalls.Load())
}

func TestInvalidateTreeDropsChildren(t *testing.T) {
	fs, store := newBackend(t)
	seed(t, fs, "/docs/a.txt", "/docs/sub/b.txt")

	cache := NewMetadataCache(store, fs, time.Minute, testLogger())
	ctx := context.Background()

	_, err := cache.GetListing(ctx, "/docs")
	require.NoError(t, err)
	_, err = cache.GetListing(ctx, "/docs/sub")
	require.NoError(t, err)
	require.Equal(t, int64(2), fs.listCalls.Load())

	cache.InvalidateTree(ctx, "/docs")

	_, err = cache.GetListing(ctx, "/docs/sub")
	require.NoError(t, err)
	assert.Equal(t, int64(3), fs.listCalls.Load(), "child entry must be gone after tree invalidation")
}

func TestStoreFailureFallsBackToFilesystem(t *testing.T) {
	local, err := storage.NewLocal(t.TempDir(), 0)
	require.NoError(t, err)
	fs := &countingAdapter{Adapter: local}
	seed(t, fs, "/a.txt")

	cache := NewMetadataCache(&brokenStore{}, fs, time.Minute, testLogger())

	listing, err := cache.GetListing(context.Background(), "/")
	require.NoError(t, err)
	assert.Len(t, listing.Entries, 1)
	assert.Equal(t, uint64(0), listing.Generation)
}

func TestDirKey(t *testing.T) {
	assert.Equal(t, "fs:dir:", DirKey("/"))
	assert.Equal(t, "fs:dir:", DirKey(""))
	assert.Equal(t, "fs:dir:docs", DirKey("/docs"))
	assert.Equal(t, "fs:dir:docs/sub", DirKey("/docs/sub/"))
}

type brokenStore struct{}

var errStoreDown = errors.New("store down")

func (s *brokenStore) Get(context.Context, string) ([]byte, error) { return nil, errStoreDown }
func (s *brokenStore) Set(context.Context, string, []byte, time.Duration) error {
	return errStoreDown
}
func (s *brokenStore) Delete(context.Context, string) error          { return errStoreDown }
func (s *brokenStore) DeletePrefix(context.Context, string) error    { return errStoreDown }
func (s *brokenStore) Increment(context.Context, string) (uint64, error) {
	return 0, errStoreDown
}
func (s *brokenStore) Counter(context.Context, string) (uint64, error) { return 0, errStoreDown }
func (s *brokenStore) Close() error                                    { return nil }
