// Package slogx provides attribute constructors shared by every log call site.
package slogx

import (
	"log/slog"
	"time"
)

// ErrorKey is the attribute key of logged errors.
const ErrorKey = "error"

func Any(key string, value any) slog.Attr {
	return slog.Any(key, value)
}

// Error returns an empty attribute for a nil error so it is dropped from the record.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any(ErrorKey, err)
}

func String(key, value string) slog.Attr {
	return slog.String(key, value)
}

func Int(key string, value int) slog.Attr {
	return slog.Int64(key, int64(value))
}

func Int64(key string, value int64) slog.Attr {
	return slog.Int64(key, value)
}

// Duration logs durations in milliseconds.
func Duration(key string, v time.Duration) slog.Attr {
	return slog.Int64(key+"_ms", v.Milliseconds())
}
