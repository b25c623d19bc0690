package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go-file-manager/internal/model"
)

// Level orders records from error (0) to debug (3). A record passes the
// gate when its numeric level is at or below the configured level.
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarn:
		return "warn"
	case LevelInfo:
		return "info"
	default:
		return "debug"
	}
}

func ParseLevel(raw string) Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "error":
		return LevelError
	case "warn", "warning":
		return LevelWarn
	case "debug":
		return LevelDebug
	default:
		return LevelInfo
	}
}

type Category string

const (
	CategoryRequest     Category = "request"
	CategoryFile        Category = "file"
	CategorySecurity    Category = "security"
	CategoryPerformance Category = "performance"
	CategorySystem      Category = "system"
	CategoryAuth        Category = "auth"
)

// Record is one normalized log event. It is immutable once built: the
// fields map is copied and sanitized at construction.
type Record struct {
	Timestamp time.Time
	Level     Level
	Category  Category
	Message   string
	Fields    map[string]any
}

// MarshalJSON flattens the record into a single object so the persisted
// line is {timestamp, level, category, message, ...contextFields}.
func (r Record) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(r.Fields)+4)
	for key, value := range r.Fields {
		flat[key] = value
	}

	flat["timestamp"] = r.Timestamp.UTC().Format(time.RFC3339Nano)
	flat["level"] = r.Level.String()
	flat["category"] = string(r.Category)
	flat["message"] = r.Message

	return json.Marshal(flat)
}

type Config struct {
	Level Level

	// Detailed false collapses the pipeline to error records only.
	Detailed bool

	// DisabledCategories suppresses specific categories; absent means on.
	DisabledCategories map[Category]bool

	// Dir receives system.log; created on demand at first write.
	Dir string

	Console io.Writer
}

// Logger normalizes events into Records and fans them out to the console
// and the append-only log file. Write failures on the file sink never
// propagate to callers.
type Logger struct {
	mu         sync.Mutex
	level      Level
	detailed   bool
	categories map[Category]bool
	dir        string
	console    io.Writer
	file       *os.File
	fileBroken bool
}

func New(cfg Config) *Logger {
	console := cfg.Console
	if console == nil {
		console = os.Stdout
	}

	categories := make(map[Category]bool, len(cfg.DisabledCategories))
	for category, disabled := range cfg.DisabledCategories {
		categories[category] = disabled
	}

	return &Logger{
		level:      cfg.Level,
		detailed:   cfg.Detailed,
		categories: categories,
		dir:        cfg.Dir,
		console:    console,
	}
}

// Log builds a Record and emits it through both sinks, subject to gating.
func (l *Logger) Log(level Level, category Category, message string, details map[string]any, identity *model.Identity) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.enabledLocked(level, category) {
		return
	}

	record := Record{
		Timestamp: time.Now(),
		Level:     level,
		Category:  category,
		Message:   message,
		Fields:    buildFields(details, identity),
	}

	l.writeConsoleLocked(record)
	l.writeFileLocked(record)
}

func (l *Logger) Error(category Category, message string, details map[string]any, identity *model.Identity) {
	l.Log(LevelError, category, message, details, identity)
}

func (l *Logger) Warn(category Category, message string, details map[string]any, identity *model.Identity) {
	l.Log(LevelWarn, category, message, details, identity)
}

func (l *Logger) Info(category Category, message string, details map[string]any, identity *model.Identity) {
	l.Log(LevelInfo, category, message, details, identity)
}

func (l *Logger) Debug(category Category, message string, details map[string]any, identity *model.Identity) {
	l.Log(LevelDebug, category, message, details, identity)
}

// Request records one handled HTTP request.
func (l *Logger) Request(identity model.Identity, method string, path string, statusCode int, duration time.Duration, details map[string]any) {
	merged := mergeFields(details, map[string]any{
		"method":     method,
		"path":       path,
		"statusCode": statusCode,
		"duration":   duration.Milliseconds(),
	})

	level := LevelInfo
	switch {
	case statusCode >= 500:
		level = LevelError
	case statusCode >= 400:
		level = LevelWarn
	}

	l.Log(level, CategoryRequest, fmt.Sprintf("%s %s", method, path), merged, &identity)
}

// FileOperation records a mutation or read against the managed tree.
func (l *Logger) FileOperation(identity model.Identity, operation string, filePath string, fileSize int64, success bool, details map[string]any) {
	merged := mergeFields(details, map[string]any{
		"operation": operation,
		"filePath":  filePath,
		"fileSize":  fileSize,
		"success":   success,
	})

	level := LevelInfo
	if !success {
		level = LevelWarn
	}

	l.Log(level, CategoryFile, operation+" "+filePath, merged, &identity)
}

// Security records an access-control decision or suspicious input.
func (l *Logger) Security(identity model.Identity, event string, message string, details map[string]any) {
	merged := mergeFields(details, map[string]any{"event": event})
	l.Log(LevelWarn, CategorySecurity, message, merged, &identity)
}

// Performance records a timed operation.
func (l *Logger) Performance(operation string, duration time.Duration, details map[string]any) {
	merged := mergeFields(details, map[string]any{
		"operation": operation,
		"duration":  duration.Milliseconds(),
	})
	l.Log(LevelInfo, CategoryPerformance, operation, merged, nil)
}

// Auth records a login, logout, refresh or registration outcome.
func (l *Logger) Auth(identity model.Identity, event string, success bool, details map[string]any) {
	merged := mergeFields(details, map[string]any{
		"event":   event,
		"success": success,
	})

	level := LevelInfo
	if !success {
		level = LevelWarn
	}

	l.Log(level, CategoryAuth, "auth "+event, merged, &identity)
}

// SetCategoryEnabled flips a single category gate at runtime; the
// settings endpoint uses this for the request-logging toggle.
func (l *Logger) SetCategoryEnabled(category Category, enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.categories[category] = !enabled
}

func (l *Logger) SetDetailed(detailed bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.detailed = detailed
}

func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}

	err := l.file.Close()
	l.file = nil
	return err
}

func (l *Logger) enabledLocked(level Level, category Category) bool {
	if !l.detailed {
		return level == LevelError
	}

	if level > l.level {
		return false
	}

	return !l.categories[category]
}

func (l *Logger) writeFileLocked(record Record) {
	if l.file == nil {
		if err := l.openFileLocked(); err != nil {
			l.reportFileErrLocked(err)
			return
		}
	}

	line, err := json.Marshal(record)
	if err != nil {
		l.reportFileErrLocked(err)
		return
	}

	// One whole record per write so concurrent appends stay intact.
	if _, err := l.file.Write(append(line, '\n')); err != nil {
		l.reportFileErrLocked(err)
		return
	}

	l.fileBroken = false
}

func (l *Logger) openFileLocked() error {
	if strings.TrimSpace(l.dir) == "" {
		return fmt.Errorf("log directory not configured")
	}

	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return err
	}

	file, err := os.OpenFile(filepath.Join(l.dir, "system.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}

	l.file = file
	return nil
}

func (l *Logger) reportFileErrLocked(err error) {
	if l.fileBroken {
		return
	}

	l.fileBroken = true
	fmt.Fprintf(l.console, "log file write failed: %v\n", err)
}

var sensitiveHeaders = map[string]struct{}{
	"authorization": {},
	"cookie":        {},
	"x-api-key":     {},
}

// buildFields copies details, strips sensitive header fields, and attaches
// identity attribution. The caller's maps are never mutated.
func buildFields(details map[string]any, identity *model.Identity) map[string]any {
	fields := make(map[string]any, len(details)+3)
	for key, value := range details {
		if strings.EqualFold(key, "headers") {
			fields[key] = sanitizeHeaders(value)
			continue
		}
		fields[key] = value
	}

	if identity != nil {
		fields["user"] = identity.User
		fields["ip"] = identity.IP
		fields["userAgent"] = identity.UserAgent
	}

	return fields
}

func sanitizeHeaders(value any) any {
	switch headers := value.(type) {
	case map[string]any:
		cleaned := make(map[string]any, len(headers))
		for name, headerValue := range headers {
			if _, sensitive := sensitiveHeaders[strings.ToLower(name)]; sensitive {
				continue
			}
			cleaned[name] = headerValue
		}
		return cleaned
	case map[string]string:
		cleaned := make(map[string]string, len(headers))
		for name, headerValue := range headers {
			if _, sensitive := sensitiveHeaders[strings.ToLower(name)]; sensitive {
				continue
			}
			cleaned[name] = headerValue
		}
		return cleaned
	default:
		return value
	}
}

func mergeFields(details map[string]any, canonical map[string]any) map[string]any {
	merged := make(map[string]any, len(details)+len(canonical))
	for key, value := range details {
		merged[key] = value
	}
	for key, value := range canonical {
		merged[key] = value
	}

	return merged
}
