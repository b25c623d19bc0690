package cache

import (
	"context"
	"sync"
	"time"

	"go-file-manager/internal/logger"
	"go-file-manager/internal/model"
	"go-file-manager/internal/storage"
	"go-file-manager/pkg/fault"
)

// RefreshController orchestrates the three cache-refresh strategies and
// exposes scanning progress. One refresh runs per process; overlapping
// calls observe the live progress instead of starting a second walk.
type RefreshController struct {
	cache *MetadataCache
	fs    storage.Adapter
	log   *logger.Logger

	mu       sync.Mutex
	running  bool
	progress model.ScanProgress
}

func NewRefreshController(cache *MetadataCache, fs storage.Adapter, log *logger.Logger) *RefreshController {
	return &RefreshController{
		cache:    cache,
		fs:       fs,
		log:      log,
		progress: model.ScanProgress{Stage: model.StageIdle},
	}
}

// Progress returns the live snapshot of the current (or last) refresh.
func (r *RefreshController) Progress() model.ScanProgress {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.progress
}

// Refresh runs the requested strategy rooted at targetPath. When a
// refresh is already in flight the current progress is returned
// immediately; strict callers get ScanBusy instead.
func (r *RefreshController) Refresh(ctx context.Context, strategy model.RefreshStrategy, targetPath string, strict bool) (model.ScanProgress, error) {
	switch strategy {
	case model.StrategyFast, model.StrategySmart, model.StrategyFull:
	default:
		return model.ScanProgress{}, fault.New(fault.KindBadRequest, "unknown refresh strategy", string(strategy))
	}

	normalized := storage.NormalizeClientPath(targetPath)

	r.mu.Lock()
	if r.running {
		snapshot := r.progress
		r.mu.Unlock()
		if strict {
			return snapshot, fault.New(fault.KindScanBusy, "a refresh is already in flight", string(snapshot.Strategy))
		}
		return snapshot, nil
	}
	r.running = true
	r.progress = model.ScanProgress{
		IsScanning: true,
		Strategy:   strategy,
		StartedAt:  time.Now().UTC(),
		Stage:      model.StageStarting,
	}
	r.mu.Unlock()

	started := time.Now()
	var err error
	switch strategy {
	case model.StrategyFast:
		err = r.refreshFast(ctx, normalized)
	case model.StrategySmart:
		err = r.walk(ctx, normalized, false)
	case model.StrategyFull:
		r.cache.InvalidateTree(ctx, normalized)
		err = r.walk(ctx, normalized, true)
	}

	r.mu.Lock()
	r.running = false
	r.progress.IsScanning = false
	if err != nil {
		r.progress.Stage = model.StageError
		r.progress.Error = err.Error()
	} else {
		r.progress.Stage = model.StageComplete
	}
	snapshot := r.progress
	r.mu.Unlock()

	if err != nil {
		r.log.Error(logger.CategorySystem, "cache refresh failed", map[string]any{
			"strategy": string(strategy),
			"path":     normalized,
			"error":    err.Error(),
		}, nil)
		return snapshot, err
	}

	r.log.Performance("cache refresh "+string(strategy), time.Since(started), map[string]any{
		"path":       normalized,
		"totalItems": snapshot.TotalItems,
	})

	return snapshot, nil
}

// refreshFast repopulates exactly one directory entry, no recursion.
func (r *RefreshController) refreshFast(ctx context.Context, dir string) error {
	listing, err := r.cache.Reload(ctx, dir)
	if err != nil {
		return err
	}

	r.advance(len(listing.Entries))
	return nil
}

// walk recurses from dir. With force set every directory is repopulated
// (full strategy); otherwise a directory is rescanned only when its mtime
// moved past the cached scan instant, and unchanged directories are
// enumerated from the cache (smart strategy).
//
// The change filter leans on directory mtime reflecting child-entry
// changes, which holds on common POSIX filesystems and is weaker
// elsewhere.
func (r *RefreshController) walk(ctx context.Context, dir string, force bool) error {
	// Deadlines abort at directory boundaries.
	if err := ctx.Err(); err != nil {
		return fault.Wrap(fault.KindIO, "refresh aborted", err)
	}

	var entries []model.FileEntry
	rescan := force
	if !rescan {
		cached, found := r.cache.Entry(ctx, dir)
		if !found {
			rescan = true
		} else {
			info, statErr := r.fs.Stat(ctx, dir)
			if statErr != nil || info.ModifiedAt.After(cached.LastScannedAt) {
				rescan = true
			} else {
				entries = cached.Entries
			}
		}
	}

	if rescan {
		listing, err := r.cache.Reload(ctx, dir)
		if err != nil {
			return err
		}
		entries = listing.Entries
	}

	r.advance(len(entries))

	for _, entry := range entries {
		if !entry.IsDirectory {
			continue
		}
		if err := r.walk(ctx, entry.Path, force); err != nil {
			return err
		}
	}

	return nil
}

func (r *RefreshController) advance(items int) {
	r.mu.Lock()
	r.progress.Stage = model.StageScanning
	r.progress.TotalItems += items
	r.mu.Unlock()
}
