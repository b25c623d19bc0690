package logger

import (
	"fmt"
	"sort"
)

const (
	reset  = "\033[0m"
	red    = "\033[31m"
	yellow = "\033[33m"
	green  = "\033[32m"
	purple = "\033[35m"
	cyan   = "\033[36m"
	gray   = "\033[37m"
	white  = "\033[97m"
)

var categoryIcons = map[Category]string{
	CategoryRequest:     "🌐",
	CategoryFile:        "📄",
	CategorySecurity:    "🔒",
	CategoryPerformance: "⚡",
	CategorySystem:      "⚙️",
	CategoryAuth:        "🔑",
}

func levelColor(level Level) string {
	switch level {
	case LevelError:
		return red
	case LevelWarn:
		return yellow
	case LevelInfo:
		return green
	default:
		return purple
	}
}

// writeConsoleLocked renders the human line: locale timestamp, colored
// level, category icon, message, then sorted key=value fields.
func (l *Logger) writeConsoleLocked(record Record) {
	timeStr := record.Timestamp.Format("2006-01-02 15:04:05")
	fmt.Fprintf(l.console, "%s%s%s ", gray, timeStr, reset)

	icon := categoryIcons[record.Category]
	if icon == "" {
		icon = "•"
	}

	fmt.Fprintf(l.console, "%s%-5s%s %s %s ", levelColor(record.Level), record.Level.String(), reset, icon, record.Category)
	fmt.Fprintf(l.console, "%s%s%s", white, record.Message, reset)

	keys := make([]string, 0, len(record.Fields))
	for key := range record.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		fmt.Fprintf(l.console, " %s%s%s=%v", cyan, key, reset, record.Fields[key])
	}

	fmt.Fprintln(l.console)
}
