package cache

import (
	"context"
	"io"

	"go-file-manager/internal/model"
	"go-file-manager/internal/storage"
)

// CachedAdapter is the cache-fronted realization of storage.Adapter:
// listings come from the metadata cache, mutations go to the wrapped
// adapter and invalidate the affected directory keys afterwards.
type CachedAdapter struct {
	fs    storage.Adapter
	cache *MetadataCache
}

func NewCachedAdapter(fs storage.Adapter, cache *MetadataCache) *CachedAdapter {
	return &CachedAdapter{fs: fs, cache: cache}
}

func (a *CachedAdapter) Resolver() *storage.PathResolver {
	return a.fs.Resolver()
}

func (a *CachedAdapter) List(ctx context.Context, dir string) ([]model.FileEntry, error) {
	listing, err := a.cache.GetListing(ctx, dir)
	if err != nil {
		return nil, err
	}

	return listing.Entries, nil
}

// Listing returns the full DirectoryListing including the generation.
func (a *CachedAdapter) Listing(ctx context.Context, dir string) (model.DirectoryListing, error) {
	return a.cache.GetListing(ctx, dir)
}

func (a *CachedAdapter) Stat(ctx context.Context, path string) (model.FileEntry, error) {
	return a.fs.Stat(ctx, path)
}

func (a *CachedAdapter) ReadStream(ctx context.Context, path string) (io.ReadCloser, int64, error) {
	return a.fs.ReadStream(ctx, path)
}

// WriteStream defers invalidation until the stream is closed so readers
// never observe a half-written entry through a fresh listing.
func (a *CachedAdapter) WriteStream(ctx context.Context, path string) (io.WriteCloser, error) {
	parents := a.creationParents(ctx, path)

	writer, err := a.fs.WriteStream(ctx, path)
	if err != nil {
		return nil, err
	}

	return &invalidatingWriter{
		WriteCloser: writer,
		invalidate: func() {
			for _, dir := range parents {
				a.cache.Invalidate(ctx, dir)
			}
		},
	}, nil
}

func (a *CachedAdapter) Mkdir(ctx context.Context, path string) error {
	parents := a.creationParents(ctx, path)

	if err := a.fs.Mkdir(ctx, path); err != nil {
		return err
	}

	for _, dir := range parents {
		a.cache.Invalidate(ctx, dir)
	}

	return nil
}

// creationParents returns the directories whose listings a create at path
// can change: the immediate parent and, when intermediates are implicitly
// created along the way, each absent ancestor plus the nearest existing
// one. Evaluated before the create so existence reflects the prior state.
func (a *CachedAdapter) creationParents(ctx context.Context, path string) []string {
	parent := storage.ParentPath(path)
	parents := []string{parent}

	for dir := parent; dir != "/"; {
		if a.isDirectory(ctx, dir) {
			break
		}

		dir = storage.ParentPath(dir)
		parents = append(parents, dir)
	}

	return parents
}

func (a *CachedAdapter) Rename(ctx context.Context, oldPath string, newPath string) error {
	wasDir := a.isDirectory(ctx, oldPath)

	if err := a.fs.Rename(ctx, oldPath, newPath); err != nil {
		return err
	}

	a.cache.Invalidate(ctx, storage.ParentPath(oldPath))
	a.cache.Invalidate(ctx, storage.ParentPath(newPath))
	if wasDir {
		a.cache.InvalidateTree(ctx, oldPath)
	}

	return nil
}

func (a *CachedAdapter) Remove(ctx context.Context, path string, recursive bool) error {
	wasDir := a.isDirectory(ctx, path)

	if err := a.fs.Remove(ctx, path, recursive); err != nil {
		return err
	}

	a.cache.Invalidate(ctx, storage.ParentPath(path))
	if wasDir {
		a.cache.InvalidateTree(ctx, path)
	}

	return nil
}

func (a *CachedAdapter) Copy(ctx context.Context, src string, dst string, recursive bool) error {
	if err := a.fs.Copy(ctx, src, dst, recursive); err != nil {
		return err
	}

	a.cache.Invalidate(ctx, storage.ParentPath(dst))
	return nil
}

func (a *CachedAdapter) Move(ctx context.Context, src string, dst string) error {
	wasDir := a.isDirectory(ctx, src)

	if err := a.fs.Move(ctx, src, dst); err != nil {
		return err
	}

	a.cache.Invalidate(ctx, storage.ParentPath(src))
	a.cache.Invalidate(ctx, storage.ParentPath(dst))
	if wasDir {
		a.cache.InvalidateTree(ctx, src)
	}

	return nil
}

func (a *CachedAdapter) isDirectory(ctx context.Context, path string) bool {
	entry, err := a.fs.Stat(ctx, path)
	return err == nil && entry.IsDirectory
}

type invalidatingWriter struct {
	io.WriteCloser
	invalidate func()
	done       bool
}

func (w *invalidatingWriter) Close() error {
	err := w.WriteCloser.Close()
	if !w.done {
		w.done = true
		w.invalidate()
	}

	return err
}
