package util

import (
	"path/filepath"
	"strings"

	"go-file-manager/internal/model"
)

var extensionKinds = map[string]model.FileKind{}

func init() {
	register := func(kind model.FileKind, extensions ...string) {
		for _, ext := range extensions {
			extensionKinds[ext] = kind
		}
	}

	register(model.KindText, ".txt", ".md", ".markdown", ".rst", ".log", ".csv", ".tsv",
		".json", ".yaml", ".yml", ".toml", ".ini", ".xml", ".html", ".htm", ".css",
		".js", ".ts", ".go", ".py", ".rb", ".sh", ".c", ".h", ".cpp", ".java", ".sql")
	register(model.KindImage, ".png", ".apng", ".jpg", ".jpeg", ".jpe", ".jfif", ".gif",
		".webp", ".bmp", ".tiff", ".tif", ".svg", ".ico", ".avif", ".heic", ".heif")
	// ".ts" stays with text: TypeScript files are far more common here
	// than MPEG transport streams.
	register(model.KindVideo, ".mp4", ".m4v", ".mov", ".webm", ".mkv", ".avi", ".wmv",
		".flv", ".mpeg", ".mpg", ".3gp", ".ogv")
	register(model.KindAudio, ".mp3", ".wav", ".flac", ".aac", ".ogg", ".oga", ".m4a",
		".wma", ".opus", ".mid", ".midi")
	register(model.KindArchive, ".zip", ".tar", ".gz", ".tgz", ".bz2", ".xz", ".7z",
		".rar", ".zst")
	register(model.KindPDF, ".pdf")
}

// KindForName infers the file kind category from the basename extension.
// Directories are classified by the caller; this only sees plain files.
func KindForName(name string) model.FileKind {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return model.KindOther
	}

	if kind, ok := extensionKinds[ext]; ok {
		return kind
	}

	return model.KindOther
}
