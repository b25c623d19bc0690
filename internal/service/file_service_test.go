package service

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-file-manager/internal/kv"
	"go-file-manager/internal/model"
	"go-file-manager/internal/transfer"
	"go-file-manager/pkg/fault"
)

func newFileService(t *testing.T, maxUpload int64, allowedMIME []string) (*FileService, *transfer.Tracker, *SettingsService) {
	t.Helper()

	fs, _ := newStack(t)
	tracker := transfer.NewTracker()

	store, err := kv.NewBadgerStore("")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	settings := NewSettingsService(context.Background(), store, testLogger())

	return NewFileService(fs, tracker, settings, testLogger(), maxUpload, allowedMIME), tracker, settings
}

func TestUploadCompletesTransfer(t *testing.T) {
	svc, tracker, _ := newFileService(t, 1<<20, nil)
	ctx := context.Background()

	body := strings.NewReader("hello upload")
	entry, tr, err := svc.Upload(ctx, testIdentity(), "/", "greeting.txt", int64(body.Len()), "text/plain", body)
	require.NoError(t, err)

	assert.Equal(t, "greeting.txt", entry.Name)
	assert.Equal(t, "/greeting.txt", entry.Path)
	assert.Equal(t, int64(12), entry.Size)

	assert.Equal(t, transfer.StatusCompleted, tr.Status)
	assert.Equal(t, 100, tr.Progress)

	stored, err := tracker.Get(tr.ID)
	require.NoError(t, err)
	assert.Equal(t, transfer.StatusCompleted, stored.Status)
}

func TestUploadRejectsBadFilename(t *testing.T) {
	svc, _, _ := newFileService(t, 1<<20, nil)

	_, _, err := svc.Upload(context.Background(), testIdentity(), "/", "../evil.txt", 4, "text/plain", strings.NewReader("data"))
	require.Error(t, err)
	assert.Equal(t, fault.KindBadRequest, fault.KindOf(err))
}

func TestUploadRejectsOversizedDeclaration(t *testing.T) {
	svc, _, _ := newFileService(t, 8, nil)

	_, _, err := svc.Upload(context.Background(), testIdentity(), "/", "big.bin", 100, "application/octet-stream", strings.NewReader("x"))
	require.Error(t, err)
	assert.Equal(t, fault.KindBadRequest, fault.KindOf(err))
}

func TestUploadMIMEAllowlist(t *testing.T) {
	svc, _, settings := newFileService(t, 1<<20, []string{"text/plain", "application/pdf"})
	ctx := context.Background()

	_, _, err := svc.Upload(ctx, testIdentity(), "/", "ok.txt", 2, "text/plain; charset=utf-8", strings.NewReader("ok"))
	require.NoError(t, err)

	_, _, err = svc.Upload(ctx, testIdentity(), "/", "bad.exe", 2, "application/x-msdownload", strings.NewReader("mz"))
	require.Error(t, err)
	assert.Equal(t, fault.KindBadRequest, fault.KindOf(err))

	// With upload security off the allowlist is bypassed.
	relaxed := model.DefaultSettings()
	relaxed.UploadSecurity = false
	_, err = settings.Update(ctx, testIdentity(), relaxed)
	require.NoError(t, err)

	_, _, err = svc.Upload(ctx, testIdentity(), "/", "now-ok.exe", 2, "application/x-msdownload", strings.NewReader("mz"))
	require.NoError(t, err)
}

func TestDownloadStreamsAndSettles(t *testing.T) {
	svc, tracker, _ := newFileService(t, 1<<20, nil)
	ctx := context.Background()

	body := strings.NewReader("download me")
	_, _, err := svc.Upload(ctx, testIdentity(), "/", "payload.txt", int64(body.Len()), "text/plain", body)
	require.NoError(t, err)

	reader, entry, err := svc.Download(ctx, testIdentity(), "/payload.txt")
	require.NoError(t, err)

	content, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.NoError(t, reader.Close())
	assert.Equal(t, "download me", string(content))
	assert.Equal(t, int64(11), entry.Size)

	transfers := tracker.List()
	require.Len(t, transfers, 2)
	download := transfers[1]
	assert.Equal(t, transfer.StatusCompleted, download.Status)
	assert.Equal(t, "/payload.txt", download.Source)
}

func TestDownloadAbortedMarksFailed(t *testing.T) {
	svc, tracker, _ := newFileService(t, 1<<20, nil)
	ctx := context.Background()

	body := strings.NewReader(strings.Repeat("a", 4096))
	_, _, err := svc.Upload(ctx, testIdentity(), "/", "partial.bin", int64(body.Len()), "application/octet-stream", body)
	require.NoError(t, err)

	reader, _, err := svc.Download(ctx, testIdentity(), "/partial.bin")
	require.NoError(t, err)

	// Close before reading everything: the client went away.
	buf := make([]byte, 16)
	_, err = reader.Read(buf)
	require.NoError(t, err)
	require.NoError(t, reader.Close())

	transfers := tracker.List()
	download := transfers[len(transfers)-1]
	assert.Equal(t, transfer.StatusFailed, download.Status)
}

func TestDownloadDirectory(t *testing.T) {
	svc, _, _ := newFileService(t, 1<<20, nil)
	ctx := context.Background()

	_, _, err := svc.Download(ctx, testIdentity(), "/")
	require.Error(t, err)
	assert.Equal(t, fault.KindIsADirectory, fault.KindOf(err))
}
