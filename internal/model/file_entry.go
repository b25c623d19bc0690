package model

import "time"

// FileKind is the coarse category inferred from a file's extension.
type FileKind string

const (
	KindDir     FileKind = "dir"
	KindText    FileKind = "text"
	KindImage   FileKind = "image"
	KindVideo   FileKind = "video"
	KindAudio   FileKind = "audio"
	KindArchive FileKind = "archive"
	KindPDF     FileKind = "pdf"
	KindOther   FileKind = "other"
)

// FileEntry is one filesystem object as presented to clients. Path is
// always root-relative with forward slashes and never contains "..".
type FileEntry struct {
	Name        string    `json:"name"`
	Path        string    `json:"path"`
	IsDirectory bool      `json:"is_directory"`
	Size        int64     `json:"size"`
	ModifiedAt  time.Time `json:"modified_at"`
	Kind        FileKind  `json:"kind"`
}

// DirectoryListing is the ordered set of entries for one directory.
// Order is whatever the underlying scan produced; callers sort.
type DirectoryListing struct {
	Path       string      `json:"path"`
	Entries    []FileEntry `json:"entries"`
	Generation uint64      `json:"generation"`
}

// CacheEntry is the serialized value stored under a fs:dir:<path> key.
type CacheEntry struct {
	Generation    uint64      `json:"generation"`
	Entries       []FileEntry `json:"entries"`
	LastScannedAt time.Time   `json:"last_scanned_at"`
}

type RefreshStrategy string

const (
	StrategyFast  RefreshStrategy = "fast"
	StrategySmart RefreshStrategy = "smart"
	StrategyFull  RefreshStrategy = "full"
)

type ScanStage string

const (
	StageIdle     ScanStage = "idle"
	StageStarting ScanStage = "starting"
	StageScanning ScanStage = "scanning"
	StageComplete ScanStage = "complete"
	StageError    ScanStage = "error"
)

// ScanProgress is a point-in-time snapshot of the running refresh.
type ScanProgress struct {
	IsScanning bool            `json:"is_scanning"`
	Strategy   RefreshStrategy `json:"strategy,omitempty"`
	TotalItems int             `json:"total_items"`
	StartedAt  time.Time       `json:"started_at,omitzero"`
	Stage      ScanStage       `json:"stage"`
	Error      string          `json:"error,omitempty"`
}
