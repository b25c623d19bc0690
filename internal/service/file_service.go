package service

import (
	"context"
	"io"
	"strings"

	"go-file-manager/internal/cache"
	"go-file-manager/internal/logger"
	"go-file-manager/internal/model"
	"go-file-manager/internal/transfer"
	"go-file-manager/internal/util"
	"go-file-manager/pkg/fault"
)

// progressInterval is how many bytes pass between tracker updates so huge
// streams do not emit an event per Write call.
const progressInterval = 256 * 1024

// FileService streams uploads and downloads through the cache-fronted
// adapter, recording every stream as a tracked transfer.
type FileService struct {
	fs            *cache.CachedAdapter
	tracker       *transfer.Tracker
	settings      *SettingsService
	log           *logger.Logger
	maxUploadSize int64
	allowedMIME   map[string]struct{}
}

func NewFileService(fs *cache.CachedAdapter, tracker *transfer.Tracker, settings *SettingsService, log *logger.Logger, maxUploadSize int64, allowedMIMETypes []string) *FileService {
	allowed := make(map[string]struct{}, len(allowedMIMETypes))
	for _, mimeType := range allowedMIMETypes {
		mimeType = strings.ToLower(strings.TrimSpace(mimeType))
		if mimeType != "" {
			allowed[mimeType] = struct{}{}
		}
	}

	return &FileService{
		fs:            fs,
		tracker:       tracker,
		settings:      settings,
		log:           log,
		maxUploadSize: maxUploadSize,
		allowedMIME:   allowed,
	}
}

// Upload writes one incoming file below destDir. The returned transfer
// snapshot is terminal: completed on success, failed otherwise.
func (s *FileService) Upload(ctx context.Context, identity model.Identity, destDir string, filename string, size int64, contentType string, body io.Reader) (model.FileEntry, transfer.Transfer, error) {
	clean, err := util.SanitizeFilename(filename, false)
	if err != nil {
		return model.FileEntry{}, transfer.Transfer{}, err
	}

	if s.maxUploadSize > 0 && size > s.maxUploadSize {
		return model.FileEntry{}, transfer.Transfer{}, fault.New(fault.KindBadRequest, "file exceeds the maximum upload size", clean)
	}

	if err := s.checkMIME(ctx, identity, contentType, clean); err != nil {
		return model.FileEntry{}, transfer.Transfer{}, err
	}

	path := joinClientPath(destDir, clean)
	tr := s.tracker.Start(transfer.StartOptions{Source: clean, Destination: path, TotalSize: size})

	writer, err := s.fs.WriteStream(ctx, path)
	if err != nil {
		failed, _ := s.tracker.Fail(tr.ID, err)
		s.log.FileOperation(identity, "upload", path, size, false, map[string]any{"error": err.Error()})
		return model.FileEntry{}, failed, err
	}

	counted := &countingWriter{dst: writer, tracker: s.tracker, id: tr.ID}
	written, copyErr := io.Copy(counted, s.limitBody(body, size))
	closeErr := writer.Close()

	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr == nil && ctx.Err() != nil {
		copyErr = fault.Wrap(fault.KindIO, "upload interrupted", ctx.Err())
	}
	if copyErr != nil {
		failed, _ := s.tracker.Fail(tr.ID, copyErr)
		s.log.FileOperation(identity, "upload", path, written, false, map[string]any{"error": copyErr.Error()})
		return model.FileEntry{}, failed, fault.Wrap(fault.KindIO, "write upload stream", copyErr)
	}

	entry, statErr := s.fs.Stat(ctx, path)
	if statErr != nil {
		failed, _ := s.tracker.Fail(tr.ID, statErr)
		return model.FileEntry{}, failed, statErr
	}

	done, _ := s.tracker.Complete(tr.ID, map[string]any{"path": path, "size": written})
	s.log.FileOperation(identity, "upload", path, written, true, nil)
	return entry, done, nil
}

// Download opens a read stream for path. The caller owns the returned
// reader; closing it settles the transfer as completed or failed.
func (s *FileService) Download(ctx context.Context, identity model.Identity, path string) (io.ReadCloser, model.FileEntry, error) {
	entry, err := s.fs.Stat(ctx, path)
	if err != nil {
		return nil, model.FileEntry{}, err
	}

	reader, size, err := s.fs.ReadStream(ctx, path)
	if err != nil {
		s.log.FileOperation(identity, "download", path, 0, false, map[string]any{"error": err.Error()})
		return nil, model.FileEntry{}, err
	}

	tr := s.tracker.Start(transfer.StartOptions{Source: path, Destination: entry.Name, TotalSize: size})
	s.log.FileOperation(identity, "download", path, size, true, nil)

	return &trackedReader{src: reader, tracker: s.tracker, id: tr.ID, total: size}, entry, nil
}

func (s *FileService) checkMIME(ctx context.Context, identity model.Identity, contentType string, filename string) error {
	if s.settings != nil && !s.settings.Current(ctx).UploadSecurity {
		return nil
	}
	if len(s.allowedMIME) == 0 {
		return nil
	}

	mimeType := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}

	if _, ok := s.allowedMIME[mimeType]; ok {
		return nil
	}

	s.log.Security(identity, "upload_rejected", "upload blocked by content-type allowlist", map[string]any{
		"filename":    filename,
		"contentType": mimeType,
	})
	return fault.New(fault.KindBadRequest, "file type is not allowed", mimeType)
}

func (s *FileService) limitBody(body io.Reader, declaredSize int64) io.Reader {
	if s.maxUploadSize <= 0 {
		return body
	}
	limit := s.maxUploadSize
	if declaredSize > 0 && declaredSize < limit {
		limit = declaredSize
	}
	return io.LimitReader(body, limit)
}

type countingWriter struct {
	dst     io.Writer
	tracker *transfer.Tracker
	id      string
	written int64
	pending int64
}

func (w *countingWriter) Write(p []byte) (int, error) {
	n, err := w.dst.Write(p)
	w.written += int64(n)
	w.pending += int64(n)
	if w.pending >= progressInterval {
		w.pending = 0
		w.tracker.UpdateProgress(w.id, w.written)
	}
	return n, err
}

type trackedReader struct {
	src     io.ReadCloser
	tracker *transfer.Tracker
	id      string
	total   int64
	read    int64
	pending int64
	settled bool
}

func (r *trackedReader) Read(p []byte) (int, error) {
	n, err := r.src.Read(p)
	r.read += int64(n)
	r.pending += int64(n)

	if r.pending >= progressInterval {
		r.pending = 0
		r.tracker.UpdateProgress(r.id, r.read)
	}

	if err == io.EOF {
		r.settle(nil)
	} else if err != nil {
		r.settle(err)
	}

	return n, err
}

func (r *trackedReader) Close() error {
	err := r.src.Close()

	// A close before EOF means the client went away mid-stream.
	if !r.settled && r.total > 0 && r.read < r.total {
		r.settle(io.ErrUnexpectedEOF)
	} else {
		r.settle(nil)
	}

	return err
}

func (r *trackedReader) settle(cause error) {
	if r.settled {
		return
	}
	r.settled = true

	if cause != nil {
		r.tracker.Fail(r.id, cause)
		return
	}
	r.tracker.Complete(r.id, nil)
}
