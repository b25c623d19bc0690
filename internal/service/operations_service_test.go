package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-file-manager/internal/model"
	"go-file-manager/pkg/fault"
)

func TestRename(t *testing.T) {
	fs, _ := newStack(t)
	ctx := context.Background()
	svc := NewOperationsService(fs, testLogger())

	writeTestFile(t, fs, "/docs/old.txt", "content")

	result, err := svc.Rename(ctx, testIdentity(), "/docs/old.txt", "new.txt")
	require.NoError(t, err)
	assert.Equal(t, "/docs/old.txt", result.OldPath)
	assert.Equal(t, "/docs/new.txt", result.NewPath)
	assert.Equal(t, "new.txt", result.Name)

	_, err = fs.Stat(ctx, "/docs/new.txt")
	require.NoError(t, err)
	_, err = fs.Stat(ctx, "/docs/old.txt")
	assert.Equal(t, fault.KindNotFound, fault.KindOf(err))
}

func TestRenameToSameNameIsNoop(t *testing.T) {
	fs, _ := newStack(t)
	svc := NewOperationsService(fs, testLogger())

	writeTestFile(t, fs, "/same.txt", "x")

	result, err := svc.Rename(context.Background(), testIdentity(), "/same.txt", "same.txt")
	require.NoError(t, err)
	assert.Equal(t, result.OldPath, result.NewPath)
}

func TestRenameRejectsInvalidName(t *testing.T) {
	fs, _ := newStack(t)
	svc := NewOperationsService(fs, testLogger())

	_, err := svc.Rename(context.Background(), testIdentity(), "/a.txt", "bad/name")
	require.Error(t, err)
	assert.Equal(t, fault.KindBadRequest, fault.KindOf(err))
}

func TestDeleteBatchReportsPerPathFailures(t *testing.T) {
	fs, _ := newStack(t)
	ctx := context.Background()
	svc := NewOperationsService(fs, testLogger())

	writeTestFile(t, fs, "/keepable.txt", "x")

	result, err := svc.Delete(ctx, testIdentity(), []string{"/keepable.txt", "/missing.txt"})
	require.NoError(t, err)

	assert.Equal(t, []string{"/keepable.txt"}, result.Deleted)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "/missing.txt", result.Failed[0].Path)

	_, err = fs.Stat(ctx, "/keepable.txt")
	assert.Equal(t, fault.KindNotFound, fault.KindOf(err))
}

func TestDeleteDirectoryRecursive(t *testing.T) {
	fs, _ := newStack(t)
	ctx := context.Background()
	svc := NewOperationsService(fs, testLogger())

	writeTestFile(t, fs, "/tree/deep/file.txt", "x")

	result, err := svc.Delete(ctx, testIdentity(), []string{"/tree"})
	require.NoError(t, err)
	assert.Empty(t, result.Failed)

	_, err = fs.Stat(ctx, "/tree")
	assert.Equal(t, fault.KindNotFound, fault.KindOf(err))
}

func TestDeleteEmptyRequest(t *testing.T) {
	fs, _ := newStack(t)
	svc := NewOperationsService(fs, testLogger())

	_, err := svc.Delete(context.Background(), testIdentity(), nil)
	require.Error(t, err)
	assert.Equal(t, fault.KindBadRequest, fault.KindOf(err))
}

func TestPasteCopy(t *testing.T) {
	fs, _ := newStack(t)
	ctx := context.Background()
	svc := NewOperationsService(fs, testLogger())

	writeTestFile(t, fs, "/src/a.txt", "a")
	writeTestFile(t, fs, "/src/b.txt", "b")
	require.NoError(t, fs.Mkdir(ctx, "/dst"))

	result, err := svc.Paste(ctx, testIdentity(), model.PasteRequest{
		Operation:   "copy",
		Sources:     []string{"/src/a.txt", "/src/b.txt"},
		Destination: "/dst",
	})
	require.NoError(t, err)

	assert.Len(t, result.Done, 2)
	assert.Empty(t, result.Failed)

	_, err = fs.Stat(ctx, "/dst/a.txt")
	require.NoError(t, err)
	_, err = fs.Stat(ctx, "/src/a.txt")
	require.NoError(t, err, "copy keeps the source")
}

func TestPasteMove(t *testing.T) {
	fs, _ := newStack(t)
	ctx := context.Background()
	svc := NewOperationsService(fs, testLogger())

	writeTestFile(t, fs, "/src/a.txt", "a")
	require.NoError(t, fs.Mkdir(ctx, "/dst"))

	result, err := svc.Paste(ctx, testIdentity(), model.PasteRequest{
		Operation:   "move",
		Sources:     []string{"/src/a.txt"},
		Destination: "/dst",
	})
	require.NoError(t, err)
	require.Len(t, result.Done, 1)
	assert.Equal(t, "/dst/a.txt", result.Done[0].To)

	_, err = fs.Stat(ctx, "/src/a.txt")
	assert.Equal(t, fault.KindNotFound, fault.KindOf(err))
}

func TestPasteIntoOwnSubtreeFails(t *testing.T) {
	fs, _ := newStack(t)
	ctx := context.Background()
	svc := NewOperationsService(fs, testLogger())

	writeTestFile(t, fs, "/dir/inner/file.txt", "x")

	result, err := svc.Paste(ctx, testIdentity(), model.PasteRequest{
		Operation:   "copy",
		Sources:     []string{"/dir"},
		Destination: "/dir/inner",
	})
	require.NoError(t, err)
	assert.Empty(t, result.Done)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "/dir", result.Failed[0].From)
}

func TestPasteMixedResults(t *testing.T) {
	fs, _ := newStack(t)
	ctx := context.Background()
	svc := NewOperationsService(fs, testLogger())

	writeTestFile(t, fs, "/src/ok.txt", "x")
	require.NoError(t, fs.Mkdir(ctx, "/dst"))

	result, err := svc.Paste(ctx, testIdentity(), model.PasteRequest{
		Operation:   "copy",
		Sources:     []string{"/src/ok.txt", "/src/missing.txt"},
		Destination: "/dst",
	})
	require.NoError(t, err)
	assert.Len(t, result.Done, 1)
	assert.Len(t, result.Failed, 1)
}

func TestPasteValidation(t *testing.T) {
	fs, _ := newStack(t)
	ctx := context.Background()
	svc := NewOperationsService(fs, testLogger())

	writeTestFile(t, fs, "/file.txt", "x")

	_, err := svc.Paste(ctx, testIdentity(), model.PasteRequest{Operation: "teleport", Sources: []string{"/file.txt"}, Destination: "/"})
	assert.Equal(t, fault.KindBadRequest, fault.KindOf(err))

	_, err = svc.Paste(ctx, testIdentity(), model.PasteRequest{Operation: "copy", Destination: "/"})
	assert.Equal(t, fault.KindBadRequest, fault.KindOf(err))

	_, err = svc.Paste(ctx, testIdentity(), model.PasteRequest{Operation: "copy", Sources: []string{"/x"}, Destination: "/file.txt"})
	assert.Equal(t, fault.KindNotADirectory, fault.KindOf(err))
}
