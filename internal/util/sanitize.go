package util

import (
	"regexp"
	"strings"
	"unicode"

	"go-file-manager/pkg/fault"
)

var invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)

var windowsReservedNames = map[string]struct{}{
	"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
	"COM1": {}, "COM2": {}, "COM3": {}, "COM4": {}, "COM5": {},
	"COM6": {}, "COM7": {}, "COM8": {}, "COM9": {},
	"LPT1": {}, "LPT2": {}, "LPT3": {}, "LPT4": {}, "LPT5": {},
	"LPT6": {}, "LPT7": {}, "LPT8": {}, "LPT9": {},
}

const maxFilenameLength = 255

// SanitizeFilename validates and cleans a single path component supplied
// by a client. It never returns a name that could change directories.
func SanitizeFilename(name string, allowHidden bool) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fault.New(fault.KindBadRequest, "filename cannot be empty", "")
	}

	if strings.Contains(trimmed, "\x00") {
		return "", fault.New(fault.KindBadRequest, "filename contains null bytes", trimmed)
	}

	builder := strings.Builder{}
	builder.Grow(len(trimmed))
	for _, char := range trimmed {
		if unicode.IsControl(char) {
			continue
		}
		builder.WriteRune(char)
	}

	cleaned := strings.TrimSpace(builder.String())
	if cleaned == "" || cleaned == "." || cleaned == ".." {
		return "", fault.New(fault.KindBadRequest, "filename is not allowed", name)
	}

	if invalidFilenameChars.MatchString(cleaned) {
		return "", fault.New(fault.KindBadRequest, "filename contains invalid characters", cleaned)
	}

	if !allowHidden && strings.HasPrefix(cleaned, ".") {
		return "", fault.New(fault.KindBadRequest, "hidden filenames are not allowed", cleaned)
	}

	base := strings.ToUpper(cleaned)
	if dot := strings.IndexByte(base, '.'); dot > 0 {
		base = base[:dot]
	}
	if _, reserved := windowsReservedNames[base]; reserved {
		return "", fault.New(fault.KindBadRequest, "filename is reserved", cleaned)
	}

	if len(cleaned) > maxFilenameLength {
		return "", fault.New(fault.KindBadRequest, "filename is too long", cleaned)
	}

	return cleaned, nil
}
