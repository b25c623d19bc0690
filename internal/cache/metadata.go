package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"go-file-manager/internal/kv"
	"go-file-manager/internal/logger"
	"go-file-manager/internal/model"
	"go-file-manager/internal/storage"
	"go-file-manager/pkg/fault"
)

const (
	dirKeyPrefix = "fs:dir:"
	genKey       = "fs:gen"

	DefaultTTL = 60 * time.Second
)

// MetadataCache keeps directory listings in the key-value store so repeat
// access stays cheap. It is best effort: a listing may lag reality by up
// to the TTL, and a broken store degrades to direct filesystem scans.
type MetadataCache struct {
	store kv.Store
	fs    storage.Adapter
	ttl   time.Duration
	log   *logger.Logger
	group singleflight.Group
}

func NewMetadataCache(store kv.Store, fs storage.Adapter, ttl time.Duration, log *logger.Logger) *MetadataCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &MetadataCache{store: store, fs: fs, ttl: ttl, log: log}
}

// DirKey returns the store key for a directory ("fs:dir:" for the root).
func DirKey(dir string) string {
	rel := strings.TrimPrefix(storage.NormalizeClientPath(dir), "/")
	return dirKeyPrefix + rel
}

// GetListing returns the cached listing when fresh, otherwise scans the
// filesystem and repopulates. Concurrent callers for the same directory
// coalesce onto one scan; late arrivals observe the populated entry.
func (c *MetadataCache) GetListing(ctx context.Context, dir string) (model.DirectoryListing, error) {
	normalized := storage.NormalizeClientPath(dir)
	key := DirKey(normalized)

	entry, found, err := c.cachedEntry(ctx, key)
	if err != nil {
		// Soft failure: serve from the filesystem and say so.
		c.log.Warn(logger.CategorySystem, "metadata cache unavailable; falling back to filesystem", map[string]any{
			"path":  normalized,
			"error": err.Error(),
		}, nil)

		entries, listErr := c.fs.List(ctx, normalized)
		if listErr != nil {
			return model.DirectoryListing{}, listErr
		}

		return model.DirectoryListing{Path: normalized, Entries: entries}, nil
	}

	if found && time.Since(entry.LastScannedAt) < c.ttl {
		return model.DirectoryListing{Path: normalized, Entries: entry.Entries, Generation: entry.Generation}, nil
	}

	listing, err := c.populate(ctx, normalized)
	if err != nil {
		if found && ctx.Err() != nil {
			// Out of time mid-rescan: the stale entry beats no answer.
			c.log.Warn(logger.CategorySystem, "rescan deadline exceeded; serving stale listing", map[string]any{
				"path":  normalized,
				"error": err.Error(),
			}, nil)

			return model.DirectoryListing{Path: normalized, Entries: entry.Entries, Generation: entry.Generation}, nil
		}

		return model.DirectoryListing{}, err
	}

	return listing, nil
}

// Reload bypasses freshness and repopulates the directory entry.
func (c *MetadataCache) Reload(ctx context.Context, dir string) (model.DirectoryListing, error) {
	normalized := storage.NormalizeClientPath(dir)
	if err := c.store.Delete(ctx, DirKey(normalized)); err != nil {
		c.warnStore("invalidate before reload", normalized, err)
	}

	return c.populate(ctx, normalized)
}

// Invalidate drops the directory key and bumps the generation counter.
// Mutations call this for the parent of every touched path, and for the
// path itself when it is a directory.
func (c *MetadataCache) Invalidate(ctx context.Context, dir string) {
	normalized := storage.NormalizeClientPath(dir)
	if err := c.store.Delete(ctx, DirKey(normalized)); err != nil {
		c.warnStore("invalidate", normalized, err)
		return
	}

	if _, err := c.store.Increment(ctx, genKey); err != nil {
		c.warnStore("bump generation", normalized, err)
	}
}

// InvalidateTree drops the directory key and every key beneath it.
func (c *MetadataCache) InvalidateTree(ctx context.Context, dir string) {
	normalized := storage.NormalizeClientPath(dir)
	key := DirKey(normalized)

	if err := c.store.Delete(ctx, key); err != nil {
		c.warnStore("invalidate tree", normalized, err)
		return
	}

	childPrefix := key + "/"
	if normalized == "/" {
		childPrefix = dirKeyPrefix
	}
	if err := c.store.DeletePrefix(ctx, childPrefix); err != nil {
		c.warnStore("invalidate tree", normalized, err)
		return
	}

	if _, err := c.store.Increment(ctx, genKey); err != nil {
		c.warnStore("bump generation", normalized, err)
	}
}

// Generation reads the current value of the fs:gen counter.
func (c *MetadataCache) Generation(ctx context.Context) (uint64, error) {
	gen, err := c.store.Counter(ctx, genKey)
	if err != nil {
		return 0, fault.Wrap(fault.KindCacheUnavailable, "read generation counter", err)
	}

	return gen, nil
}

// Entry exposes the raw cache entry for a directory, if present. The
// refresh controller uses LastScannedAt for its change filter.
func (c *MetadataCache) Entry(ctx context.Context, dir string) (model.CacheEntry, bool) {
	entry, found, err := c.cachedEntry(ctx, DirKey(dir))
	if err != nil || !found {
		return model.CacheEntry{}, false
	}

	return entry, true
}

func (c *MetadataCache) TTL() time.Duration {
	return c.ttl
}

func (c *MetadataCache) populate(ctx context.Context, normalized string) (model.DirectoryListing, error) {
	key := DirKey(normalized)

	result, err, _ := c.group.Do(key, func() (any, error) {
		entries, err := c.fs.List(ctx, normalized)
		if err != nil {
			return nil, err
		}

		generation, genErr := c.store.Increment(ctx, genKey)
		if genErr != nil {
			c.warnStore("bump generation", normalized, genErr)
		}

		entry := model.CacheEntry{
			Generation:    generation,
			Entries:       entries,
			LastScannedAt: time.Now().UTC(),
		}

		raw, marshalErr := json.Marshal(entry)
		if marshalErr == nil {
			// Keep the key past freshness so a deadline-bound caller can
			// still be served the stale listing.
			if setErr := c.store.Set(ctx, key, raw, 2*c.ttl); setErr != nil {
				c.warnStore("store listing", normalized, setErr)
			}
		}

		return model.DirectoryListing{Path: normalized, Entries: entries, Generation: generation}, nil
	})
	if err != nil {
		return model.DirectoryListing{}, err
	}

	return result.(model.DirectoryListing), nil
}

func (c *MetadataCache) cachedEntry(ctx context.Context, key string) (model.CacheEntry, bool, error) {
	raw, err := c.store.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return model.CacheEntry{}, false, nil
	}
	if err != nil {
		return model.CacheEntry{}, false, fault.Wrap(fault.KindCacheUnavailable, "read cache entry", err)
	}

	var entry model.CacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		// A corrupt value is treated as a miss.
		return model.CacheEntry{}, false, nil
	}

	return entry, true, nil
}

func (c *MetadataCache) warnStore(action string, path string, err error) {
	c.log.Warn(logger.CategorySystem, "metadata cache store error", map[string]any{
		"action": action,
		"path":   path,
		"error":  err.Error(),
	}, nil)
}
