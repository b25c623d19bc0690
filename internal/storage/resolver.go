package storage

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"go-file-manager/pkg/fault"
)

// PathResolver translates client-supplied relative paths into absolute
// paths bounded by a configured root. It performs no filesystem I/O.
type PathResolver struct {
	rootAbs  string
	maxDepth int
}

const defaultMaxDepth = 32

func NewPathResolver(root string, maxDepth int) (*PathResolver, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("root path cannot be empty")
	}

	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}

	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}

	return &PathResolver{rootAbs: rootAbs, maxDepth: maxDepth}, nil
}

func (v *PathResolver) RootAbs() string {
	return v.rootAbs
}

// Resolve maps clientPath onto an absolute path under the root. Both
// separator conventions are accepted; empty and "/" mean the root itself.
func (v *PathResolver) Resolve(clientPath string) (string, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(clientPath), `\`, "/")
	if normalized == "" || normalized == "/" {
		return v.rootAbs, nil
	}

	if strings.Contains(normalized, "\x00") || hasControlCharacters(normalized) {
		return "", fault.New(fault.KindInvalidPath, "path contains invalid characters", clientPath)
	}

	// A leading "/" is the root-relative client convention; anything
	// carrying a volume name ("C:...") is a true absolute path.
	if filepath.VolumeName(strings.TrimSpace(clientPath)) != "" {
		return "", fault.New(fault.KindInvalidPath, "absolute paths are not allowed", clientPath)
	}

	segments := strings.Split(strings.Trim(normalized, "/"), "/")
	depth := 0
	for _, segment := range segments {
		if segment == ".." {
			return "", fault.New(fault.KindInvalidPath, "path traversal attempt detected", clientPath)
		}
		if segment != "" && segment != "." {
			depth++
		}
	}

	if depth > v.maxDepth {
		return "", fault.New(fault.KindInvalidPath, "path exceeds maximum depth", clientPath)
	}

	cleanRel := filepath.Clean(strings.TrimPrefix(normalized, "/"))
	if cleanRel == "." {
		return v.rootAbs, nil
	}

	resolved := filepath.Join(v.rootAbs, filepath.FromSlash(cleanRel))
	resolvedAbs, err := filepath.Abs(resolved)
	if err != nil {
		return "", fault.Wrap(fault.KindInvalidPath, "resolve absolute path", err)
	}

	if !isWithinRoot(v.rootAbs, resolvedAbs) {
		return "", fault.New(fault.KindInvalidPath, "resolved path is outside storage root", clientPath)
	}

	return resolvedAbs, nil
}

// Relative converts an absolute path under the root back to the
// forward-slash client form ("/" for the root itself).
func (v *PathResolver) Relative(absPath string) string {
	rel, err := filepath.Rel(v.rootAbs, absPath)
	if err != nil {
		return "/"
	}

	rel = filepath.ToSlash(rel)
	if rel == "." || rel == "" {
		return "/"
	}

	return NormalizeClientPath("/" + rel)
}

// NormalizeClientPath canonicalizes a client path to a leading-slash,
// forward-slash form with no trailing separator.
func NormalizeClientPath(path string) string {
	cleaned := filepath.ToSlash(filepath.Clean(strings.ReplaceAll(strings.TrimSpace(path), `\`, "/")))
	if cleaned == "." || cleaned == "" {
		return "/"
	}

	if !strings.HasPrefix(cleaned, "/") {
		cleaned = "/" + cleaned
	}

	return cleaned
}

// ParentPath returns the client path of the containing directory.
func ParentPath(path string) string {
	normalized := NormalizeClientPath(path)
	if normalized == "/" {
		return "/"
	}

	idx := strings.LastIndexByte(normalized, '/')
	if idx <= 0 {
		return "/"
	}

	return normalized[:idx]
}

func hasControlCharacters(value string) bool {
	for _, char := range value {
		if unicode.IsControl(char) {
			return true
		}
	}

	return false
}

func isWithinRoot(rootAbs string, candidateAbs string) bool {
	if candidateAbs == rootAbs {
		return true
	}

	return strings.HasPrefix(candidateAbs, rootAbs+string(filepath.Separator))
}
