package handler

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"

	"go-file-manager/internal/middleware"
	"go-file-manager/internal/service"
	"go-file-manager/internal/util"
	"go-file-manager/pkg/fault"
)

type FileHandler struct {
	files *service.FileService
}

func NewFileHandler(files *service.FileService) *FileHandler {
	return &FileHandler{files: files}
}

// Upload accepts one multipart file under the "file" form field and
// writes it into the "path" directory.
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	reader, err := r.MultipartReader()
	if err != nil {
		util.WriteError(w, fault.Wrap(fault.KindBadRequest, "expected multipart form data", err))
		return
	}

	destDir := r.URL.Query().Get("path")

	for {
		part, partErr := reader.NextPart()
		if partErr == io.EOF {
			util.WriteError(w, fault.New(fault.KindBadRequest, "no file part in request", ""))
			return
		}
		if partErr != nil {
			util.WriteError(w, fault.Wrap(fault.KindBadRequest, "read multipart body", partErr))
			return
		}

		if part.FormName() == "path" {
			raw, _ := io.ReadAll(io.LimitReader(part, 4096))
			destDir = string(raw)
			continue
		}

		if part.FormName() != "file" {
			continue
		}

		size := declaredSize(r)
		entry, tr, uploadErr := h.files.Upload(r.Context(), middleware.IdentityFromRequest(r),
			destDir, part.FileName(), size, part.Header.Get("Content-Type"), part)
		if uploadErr != nil {
			util.WriteError(w, uploadErr)
			return
		}

		util.WriteSuccess(w, http.StatusCreated, map[string]any{
			"file":     entry,
			"transfer": tr,
		})
		return
	}
}

// Download streams the file at "path" as an attachment.
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	reader, entry, err := h.files.Download(r.Context(), middleware.IdentityFromRequest(r), r.URL.Query().Get("path"))
	if err != nil {
		util.WriteError(w, err)
		return
	}
	defer reader.Close()

	contentType := mime.TypeByExtension(filepath.Ext(entry.Name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.FormatInt(entry.Size, 10))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", entry.Name))

	// Headers are committed; a mid-stream failure can only cut the
	// connection, the tracker records it as failed.
	io.Copy(w, reader)
}

// declaredSize reads the Content-Length of the whole request as the best
// available size hint for progress reporting.
func declaredSize(r *http.Request) int64 {
	if r.ContentLength > 0 {
		return r.ContentLength
	}
	return 0
}
