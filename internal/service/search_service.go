package service

import (
	"context"
	"strings"
	"time"

	"go-file-manager/internal/cache"
	"go-file-manager/internal/logger"
	"go-file-manager/internal/model"
	"go-file-manager/internal/storage"
	"go-file-manager/pkg/fault"
)

// SearchService walks the tree through the metadata cache, matching entry
// names case-insensitively against a substring query. Bounded by depth,
// result count and a deadline so a search never pins the server.
type SearchService struct {
	fs         *cache.CachedAdapter
	log        *logger.Logger
	maxDepth   int
	maxResults int
	timeout    time.Duration
}

func NewSearchService(fs *cache.CachedAdapter, log *logger.Logger, maxDepth int, maxResults int, timeout time.Duration) *SearchService {
	if maxDepth <= 0 {
		maxDepth = 10
	}
	if maxResults <= 0 {
		maxResults = 200
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &SearchService{fs: fs, log: log, maxDepth: maxDepth, maxResults: maxResults, timeout: timeout}
}

func (s *SearchService) Search(ctx context.Context, dir string, query string) (model.SearchResponse, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return model.SearchResponse{}, fault.New(fault.KindBadRequest, "search query cannot be empty", "")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	root := storage.NormalizeClientPath(dir)
	response := model.SearchResponse{Query: query, Items: []model.FileEntry{}}

	err := s.walk(ctx, root, needle, 0, &response.Items)
	if err != nil && len(response.Items) == 0 {
		return model.SearchResponse{}, err
	}

	s.log.Performance("search", time.Since(start), map[string]any{
		"query":   query,
		"path":    root,
		"results": len(response.Items),
	})
	return response, nil
}

func (s *SearchService) walk(ctx context.Context, dir string, needle string, depth int, results *[]model.FileEntry) error {
	if depth > s.maxDepth || len(*results) >= s.maxResults {
		return nil
	}
	if err := ctx.Err(); err != nil {
		// A timeout truncates the result set rather than failing it.
		return nil
	}

	entries, err := s.fs.List(ctx, dir)
	if err != nil {
		if depth == 0 {
			return err
		}
		return nil
	}

	for _, entry := range entries {
		if len(*results) >= s.maxResults {
			return nil
		}

		if strings.Contains(strings.ToLower(entry.Name), needle) {
			*results = append(*results, entry)
		}

		if entry.IsDirectory {
			if err := s.walk(ctx, entry.Path, needle, depth+1, results); err != nil {
				return err
			}
		}
	}

	return nil
}
