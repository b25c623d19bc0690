package service

import (
	"context"
	"sort"
	"strings"

	"go-file-manager/internal/cache"
	"go-file-manager/internal/logger"
	"go-file-manager/internal/model"
	"go-file-manager/internal/storage"
	"go-file-manager/internal/util"
	"go-file-manager/pkg/fault"
)

const (
	defaultPageLimit = 100
	maxPageLimit     = 1000
)

type ListOptions struct {
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

// DirectoryService serves listings through the metadata cache and creates
// directories through the cache-invalidating adapter.
type DirectoryService struct {
	fs    *cache.CachedAdapter
	cache *cache.MetadataCache
	log   *logger.Logger
}

func NewDirectoryService(fs *cache.CachedAdapter, metadata *cache.MetadataCache, log *logger.Logger) *DirectoryService {
	return &DirectoryService{fs: fs, cache: metadata, log: log}
}

// List returns a sorted page of the directory listing plus pagination meta.
// Directories always sort ahead of files.
func (s *DirectoryService) List(ctx context.Context, dir string, opts ListOptions) (model.DirectoryListing, model.Meta, error) {
	listing, err := s.fs.Listing(ctx, dir)
	if err != nil {
		return model.DirectoryListing{}, model.Meta{}, err
	}

	entries := make([]model.FileEntry, len(listing.Entries))
	copy(entries, listing.Entries)
	sortEntries(entries, opts.SortBy, opts.SortOrder)

	page := opts.Page
	if page < 1 {
		page = 1
	}
	limit := opts.Limit
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	total := len(entries)
	totalPages := (total + limit - 1) / limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	listing.Entries = entries[start:end]
	meta := model.Meta{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
	return listing, meta, nil
}

// Create makes a new directory under parent after sanitizing the name.
func (s *DirectoryService) Create(ctx context.Context, identity model.Identity, parent string, name string) (model.FileEntry, error) {
	clean, err := util.SanitizeFilename(name, false)
	if err != nil {
		return model.FileEntry{}, err
	}

	path := joinClientPath(parent, clean)
	if err := s.fs.Mkdir(ctx, path); err != nil {
		s.log.FileOperation(identity, "mkdir", path, 0, false, map[string]any{"error": err.Error()})
		return model.FileEntry{}, err
	}

	entry, err := s.fs.Stat(ctx, path)
	if err != nil {
		return model.FileEntry{}, err
	}

	s.log.FileOperation(identity, "mkdir", path, 0, true, nil)
	return entry, nil
}

// Stat resolves metadata for a single path.
func (s *DirectoryService) Stat(ctx context.Context, path string) (model.FileEntry, error) {
	return s.fs.Stat(ctx, path)
}

// Generation exposes the cache generation for change polling.
func (s *DirectoryService) Generation(ctx context.Context) (uint64, error) {
	if s.cache == nil {
		return 0, fault.New(fault.KindCacheUnavailable, "metadata cache is not configured", "")
	}
	return s.cache.Generation(ctx)
}

func sortEntries(entries []model.FileEntry, sortBy string, sortOrder string) {
	descending := strings.EqualFold(sortOrder, "desc")

	less := func(a, b model.FileEntry) bool {
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	}
	switch strings.ToLower(sortBy) {
	case "size":
		less = func(a, b model.FileEntry) bool { return a.Size < b.Size }
	case "modified", "modified_at":
		less = func(a, b model.FileEntry) bool { return a.ModifiedAt.Before(b.ModifiedAt) }
	case "kind", "type":
		less = func(a, b model.FileEntry) bool { return a.Kind < b.Kind }
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.IsDirectory != b.IsDirectory {
			return a.IsDirectory
		}
		if descending {
			return less(b, a)
		}
		return less(a, b)
	})
}

func joinClientPath(parent string, name string) string {
	normalized := storage.NormalizeClientPath(parent)
	if normalized == "/" {
		return "/" + name
	}
	return normalized + "/" + name
}
