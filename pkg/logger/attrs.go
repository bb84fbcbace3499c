package logger

import (
	"fmt"
	"log/slog"

	"github.com/gaze-network/launchpad/pkg/logger/slogx"
)

// Keys for log attributes.
const (
	LevelKey           = slog.LevelKey
	MessageKey         = slog.MessageKey
	SourceKey          = slog.SourceKey
	ErrorKey           = slogx.ErrorKey
	ErrorVerboseKey    = "error_verbose"
	ErrorStackTraceKey = "error_stacktrace"
)

// Levels above [slog.LevelError].
const (
	LevelCritical = slog.Level(12)
	LevelPanic    = slog.Level(14)
	LevelFatal    = slog.Level(16)
)

func levelName(l slog.Level) string {
	name := func(base string, offset slog.Level) string {
		if offset == 0 {
			return base
		}
		return fmt.Sprintf("%s%+d", base, offset)
	}
	switch {
	case l < LevelCritical:
		return l.String()
	case l < LevelPanic:
		return name("CRITICAL", l-LevelCritical)
	case l < LevelFatal:
		return name("PANIC", l-LevelPanic)
	default:
		return name("FATAL", l-LevelFatal)
	}
}

func levelAttrReplacer(groups []string, attr slog.Attr) slog.Attr {
	if len(groups) == 0 && attr.Key == LevelKey {
		if l, ok := attr.Value.Any().(slog.Level); ok && l >= LevelCritical {
			return slog.String(attr.Key, levelName(l))
		}
	}
	return attr
}

// gcpAttrReplacer renames attributes to the keys of Cloud Logging structured entries.
func gcpAttrReplacer(groups []string, attr slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return attr
	}
	switch attr.Key {
	case MessageKey:
		attr.Key = "message"
	case SourceKey:
		attr.Key = "logging.googleapis.com/sourceLocation"
	case LevelKey:
		attr.Key = "severity"
		if lvl, ok := attr.Value.Any().(slog.Level); ok {
			attr.Value = slog.StringValue(gcpSeverity(lvl))
		}
	}
	return attr
}

// https://cloud.google.com/logging/docs/reference/v2/rest/v2/LogEntry#logseverity
func gcpSeverity(lvl slog.Level) string {
	switch {
	case lvl < slog.LevelInfo:
		return "DEBUG"
	case lvl < slog.LevelWarn:
		return "INFO"
	case lvl < slog.LevelError:
		return "WARNING"
	case lvl < LevelCritical:
		return "ERROR"
	case lvl < LevelPanic:
		return "CRITICAL"
	case lvl < LevelFatal:
		return "ALERT"
	default:
		return "EMERGENCY"
	}
}

func attrReplacerChain(replacers ...func([]string, slog.Attr) slog.Attr) func([]string, slog.Attr) slog.Attr {
	return func(groups []string, attr slog.Attr) slog.Attr {
		for _, replacer := range replacers {
			attr = replacer(groups, attr)
		}
		return attr
	}
}
