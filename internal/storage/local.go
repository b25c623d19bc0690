package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	"go-file-manager/internal/model"
	"go-file-manager/internal/util"
	"go-file-manager/pkg/fault"
)

// Local performs read and mutation operations directly against the OS
// filesystem under a resolved root.
type Local struct {
	resolver *PathResolver
}

func NewLocal(root string, maxDepth int) (*Local, error) {
	resolver, err := NewPathResolver(root, maxDepth)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(resolver.RootAbs(), 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}

	return &Local{resolver: resolver}, nil
}

func (l *Local) Resolver() *PathResolver {
	return l.resolver
}

func (l *Local) List(ctx context.Context, dir string) ([]model.FileEntry, error) {
	if err := deadlineErr(ctx); err != nil {
		return nil, err
	}

	resolved, err := l.resolver.Resolve(dir)
	if err != nil {
		return nil, err
	}

	dirEntries, err := os.ReadDir(resolved)
	if err != nil {
		return nil, classify(err, "list directory", dir)
	}

	entries := make([]model.FileEntry, 0, len(dirEntries))
	for _, dirEntry := range dirEntries {
		info, infoErr := dirEntry.Info()
		if infoErr != nil {
			continue
		}

		entries = append(entries, entryFromInfo(l.resolver.Relative(filepath.Join(resolved, dirEntry.Name())), info))
	}

	return entries, nil
}

func (l *Local) Stat(ctx context.Context, path string) (model.FileEntry, error) {
	if err := deadlineErr(ctx); err != nil {
		return model.FileEntry{}, err
	}

	resolved, err := l.resolver.Resolve(path)
	if err != nil {
		return model.FileEntry{}, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return model.FileEntry{}, classify(err, "stat path", path)
	}

	return entryFromInfo(l.resolver.Relative(resolved), info), nil
}

func (l *Local) ReadStream(ctx context.Context, path string) (io.ReadCloser, int64, error) {
	if err := deadlineErr(ctx); err != nil {
		return nil, 0, err
	}

	resolved, err := l.resolver.Resolve(path)
	if err != nil {
		return nil, 0, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, 0, classify(err, "open file", path)
	}
	if info.IsDir() {
		return nil, 0, fault.New(fault.KindIsADirectory, "cannot read a directory", path)
	}

	file, err := os.Open(resolved)
	if err != nil {
		return nil, 0, classify(err, "open file", path)
	}

	return file, info.Size(), nil
}

func (l *Local) WriteStream(ctx context.Context, path string) (io.WriteCloser, error) {
	if err := deadlineErr(ctx); err != nil {
		return nil, err
	}

	resolved, err := l.resolver.Resolve(path)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return nil, classify(err, "create parent directory", path)
	}

	file, err := os.OpenFile(resolved, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, classify(err, "open file for write", path)
	}

	return file, nil
}

func (l *Local) Mkdir(ctx context.Context, path string) error {
	if err := deadlineErr(ctx); err != nil {
		return err
	}

	resolved, err := l.resolver.Resolve(path)
	if err != nil {
		return err
	}

	if _, statErr := os.Stat(resolved); statErr == nil {
		return fault.New(fault.KindAlreadyExists, "path already exists", path)
	}

	if err := os.MkdirAll(resolved, 0o755); err != nil {
		return classify(err, "create directory", path)
	}

	return nil
}

func (l *Local) Rename(ctx context.Context, oldPath string, newPath string) error {
	if err := deadlineErr(ctx); err != nil {
		return err
	}

	oldResolved, err := l.resolver.Resolve(oldPath)
	if err != nil {
		return err
	}

	newResolved, err := l.resolver.Resolve(newPath)
	if err != nil {
		return err
	}

	if _, statErr := os.Stat(newResolved); statErr == nil {
		return fault.New(fault.KindAlreadyExists, "target path already exists", newPath)
	}

	if err := os.MkdirAll(filepath.Dir(newResolved), 0o755); err != nil {
		return classify(err, "prepare destination", newPath)
	}

	if err := os.Rename(oldResolved, newResolved); err != nil {
		return classify(err, "rename path", oldPath)
	}

	return nil
}

func (l *Local) Remove(ctx context.Context, path string, recursive bool) error {
	if err := deadlineErr(ctx); err != nil {
		return err
	}

	resolved, err := l.resolver.Resolve(path)
	if err != nil {
		return err
	}

	if resolved == l.resolver.RootAbs() {
		return fault.New(fault.KindInvalidPath, "storage root cannot be removed", path)
	}

	if _, err := os.Stat(resolved); err != nil {
		return classify(err, "remove path", path)
	}

	if recursive {
		// RemoveAll deletes children before parents.
		if err := os.RemoveAll(resolved); err != nil {
			return classify(err, "remove path", path)
		}
		return nil
	}

	if err := os.Remove(resolved); err != nil {
		return classify(err, "remove path", path)
	}

	return nil
}

func (l *Local) Copy(ctx context.Context, src string, dst string, recursive bool) error {
	if err := deadlineErr(ctx); err != nil {
		return err
	}

	srcResolved, err := l.resolver.Resolve(src)
	if err != nil {
		return err
	}

	dstResolved, err := l.resolver.Resolve(dst)
	if err != nil {
		return err
	}

	info, err := os.Stat(srcResolved)
	if err != nil {
		return classify(err, "copy source", src)
	}

	if info.IsDir() && !recursive {
		return fault.New(fault.KindIsADirectory, "source is a directory; recursive copy required", src)
	}

	if _, statErr := os.Stat(dstResolved); statErr == nil {
		return fault.New(fault.KindAlreadyExists, "target path already exists", dst)
	}

	if err := copyRecursive(ctx, srcResolved, dstResolved); err != nil {
		if fault.KindOf(err) != "" {
			return err
		}
		return classify(err, "copy path", src)
	}

	return nil
}

func (l *Local) Move(ctx context.Context, src string, dst string) error {
	if err := deadlineErr(ctx); err != nil {
		return err
	}

	srcResolved, err := l.resolver.Resolve(src)
	if err != nil {
		return err
	}

	dstResolved, err := l.resolver.Resolve(dst)
	if err != nil {
		return err
	}

	if _, statErr := os.Stat(dstResolved); statErr == nil {
		return fault.New(fault.KindAlreadyExists, "target path already exists", dst)
	}

	if err := os.MkdirAll(filepath.Dir(dstResolved), 0o755); err != nil {
		return classify(err, "prepare destination", dst)
	}

	renameErr := os.Rename(srcResolved, dstResolved)
	if renameErr == nil {
		return nil
	}

	// Cross-device moves fall back to copy+remove.
	var linkErr *os.LinkError
	if errors.As(renameErr, &linkErr) && errors.Is(linkErr.Err, syscall.EXDEV) {
		if err := copyRecursive(ctx, srcResolved, dstResolved); err != nil {
			return classify(err, "move path", src)
		}
		if err := os.RemoveAll(srcResolved); err != nil {
			return classify(err, "move path", src)
		}
		return nil
	}

	return classify(renameErr, "move path", src)
}

func copyRecursive(ctx context.Context, source string, target string) error {
	if err := deadlineErr(ctx); err != nil {
		return err
	}

	info, err := os.Stat(source)
	if err != nil {
		return err
	}

	if info.IsDir() {
		if err := os.MkdirAll(target, info.Mode()); err != nil {
			return err
		}

		entries, err := os.ReadDir(source)
		if err != nil {
			return err
		}

		for _, entry := range entries {
			if entry.Type()&os.ModeSymlink != 0 {
				continue
			}
			if err := copyRecursive(ctx, filepath.Join(source, entry.Name()), filepath.Join(target, entry.Name())); err != nil {
				return err
			}
		}

		return nil
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	sourceFile, err := os.Open(source)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	targetFile, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}

	if _, err := io.Copy(targetFile, sourceFile); err != nil {
		targetFile.Close()
		return err
	}

	if err := targetFile.Close(); err != nil {
		return err
	}

	// Preserve the source modification time where the OS allows it.
	_ = os.Chtimes(target, info.ModTime(), info.ModTime())

	return nil
}

func entryFromInfo(clientPath string, info fs.FileInfo) model.FileEntry {
	entry := model.FileEntry{
		Name:        info.Name(),
		Path:        clientPath,
		IsDirectory: info.IsDir(),
		ModifiedAt:  info.ModTime().UTC(),
	}

	if info.IsDir() {
		entry.Kind = model.KindDir
	} else {
		entry.Size = info.Size()
		entry.Kind = util.KindForName(info.Name())
	}

	return entry
}

func deadlineErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fault.Wrap(fault.KindIO, "deadline exceeded", err)
	}

	return nil
}

func classify(err error, message string, path string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, os.ErrNotExist):
		return fault.New(fault.KindNotFound, "path not found", path)
	case errors.Is(err, os.ErrExist):
		return fault.New(fault.KindAlreadyExists, "path already exists", path)
	case errors.Is(err, os.ErrPermission):
		return fault.New(fault.KindPermissionDenied, "permission denied", path)
	case errors.Is(err, syscall.ENOTDIR):
		return fault.New(fault.KindNotADirectory, "path is not a directory", path)
	case errors.Is(err, syscall.EISDIR):
		return fault.New(fault.KindIsADirectory, "path is a directory", path)
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		return fault.Wrap(fault.KindIO, "deadline exceeded", err)
	default:
		return fault.Wrap(fault.KindIO, message, err)
	}
}
