package storage

import (
	"context"
	"io"

	"go-file-manager/internal/model"
)

// Adapter is the single capability set for filesystem access. Two
// realizations exist: the direct local adapter in this package and the
// cache-fronted adapter in internal/cache, which composes this one.
type Adapter interface {
	List(ctx context.Context, dir string) ([]model.FileEntry, error)
	Stat(ctx context.Context, path string) (model.FileEntry, error)
	ReadStream(ctx context.Context, path string) (io.ReadCloser, int64, error)
	WriteStream(ctx context.Context, path string) (io.WriteCloser, error)
	Mkdir(ctx context.Context, path string) error
	Rename(ctx context.Context, oldPath string, newPath string) error
	Remove(ctx context.Context, path string, recursive bool) error
	Copy(ctx context.Context, src string, dst string, recursive bool) error
	Move(ctx context.Context, src string, dst string) error
	Resolver() *PathResolver
}
