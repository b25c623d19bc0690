package service

import (
	"context"
	"strings"

	"go-file-manager/internal/cache"
	"go-file-manager/internal/logger"
	"go-file-manager/internal/model"
	"go-file-manager/internal/storage"
	"go-file-manager/internal/util"
	"go-file-manager/pkg/fault"
)

const (
	OperationCopy = "copy"
	OperationMove = "move"
)

// OperationsService implements rename, delete and clipboard-style paste on
// top of the cache-invalidating adapter. Multi-item operations are best
// effort: each source succeeds or fails independently.
type OperationsService struct {
	fs  *cache.CachedAdapter
	log *logger.Logger
}

func NewOperationsService(fs *cache.CachedAdapter, log *logger.Logger) *OperationsService {
	return &OperationsService{fs: fs, log: log}
}

func (s *OperationsService) Rename(ctx context.Context, identity model.Identity, path string, newName string) (model.RenameResponse, error) {
	clean, err := util.SanitizeFilename(newName, true)
	if err != nil {
		return model.RenameResponse{}, err
	}

	oldPath := storage.NormalizeClientPath(path)
	newPath := joinClientPath(storage.ParentPath(oldPath), clean)
	if newPath == oldPath {
		return model.RenameResponse{OldPath: oldPath, NewPath: newPath, Name: clean}, nil
	}

	if err := s.fs.Rename(ctx, oldPath, newPath); err != nil {
		s.log.FileOperation(identity, "rename", oldPath, 0, false, map[string]any{"error": err.Error()})
		return model.RenameResponse{}, err
	}

	s.log.FileOperation(identity, "rename", oldPath, 0, true, map[string]any{"newPath": newPath})
	return model.RenameResponse{OldPath: oldPath, NewPath: newPath, Name: clean}, nil
}

// Delete removes each path, recursing into directories. Failures are
// reported per path instead of aborting the batch.
func (s *OperationsService) Delete(ctx context.Context, identity model.Identity, paths []string) (model.DeleteResponse, error) {
	if len(paths) == 0 {
		return model.DeleteResponse{}, fault.New(fault.KindBadRequest, "no paths given", "")
	}

	response := model.DeleteResponse{Deleted: []string{}, Failed: []model.DeleteFailure{}}
	for _, raw := range paths {
		path := storage.NormalizeClientPath(raw)

		if err := s.fs.Remove(ctx, path, true); err != nil {
			response.Failed = append(response.Failed, model.DeleteFailure{Path: path, Reason: err.Error()})
			s.log.FileOperation(identity, "delete", path, 0, false, map[string]any{"error": err.Error()})
			continue
		}

		response.Deleted = append(response.Deleted, path)
		s.log.FileOperation(identity, "delete", path, 0, true, nil)
	}

	return response, nil
}

// Paste copies or moves each source into the destination directory under
// its own base name.
func (s *OperationsService) Paste(ctx context.Context, identity model.Identity, req model.PasteRequest) (model.PasteResponse, error) {
	operation := strings.ToLower(strings.TrimSpace(req.Operation))
	if operation != OperationCopy && operation != OperationMove {
		return model.PasteResponse{}, fault.New(fault.KindBadRequest, "operation must be copy or move", req.Operation)
	}
	if len(req.Sources) == 0 {
		return model.PasteResponse{}, fault.New(fault.KindBadRequest, "no sources given", "")
	}

	destination := storage.NormalizeClientPath(req.Destination)
	destEntry, err := s.fs.Stat(ctx, destination)
	if err != nil {
		return model.PasteResponse{}, err
	}
	if !destEntry.IsDirectory {
		return model.PasteResponse{}, fault.New(fault.KindNotADirectory, "destination is not a directory", destination)
	}

	response := model.PasteResponse{Operation: operation, Done: []model.PasteResult{}, Failed: []model.PasteFailure{}}
	for _, raw := range req.Sources {
		source := storage.NormalizeClientPath(raw)
		target := joinClientPath(destination, baseName(source))

		if err := s.pasteOne(ctx, operation, source, target); err != nil {
			response.Failed = append(response.Failed, model.PasteFailure{From: source, Reason: err.Error()})
			s.log.FileOperation(identity, operation, source, 0, false, map[string]any{"error": err.Error()})
			continue
		}

		response.Done = append(response.Done, model.PasteResult{From: source, To: target})
		s.log.FileOperation(identity, operation, source, 0, true, map[string]any{"target": target})
	}

	return response, nil
}

func (s *OperationsService) pasteOne(ctx context.Context, operation string, source string, target string) error {
	if target == source {
		return fault.New(fault.KindInvalidPath, "source and destination are the same", source)
	}
	// Pasting a directory into its own subtree would recurse forever.
	if strings.HasPrefix(target+"/", source+"/") {
		return fault.New(fault.KindInvalidPath, "cannot paste a directory into itself", source)
	}

	if operation == OperationMove {
		return s.fs.Move(ctx, source, target)
	}
	return s.fs.Copy(ctx, source, target, true)
}

func baseName(path string) string {
	normalized := storage.NormalizeClientPath(path)
	if normalized == "/" {
		return ""
	}
	if i := strings.LastIndexByte(normalized, '/'); i >= 0 {
		return normalized[i+1:]
	}
	return normalized
}
