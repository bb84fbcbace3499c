package logger

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/cockroachdb/errors/errbase"
)

// errorAttrReplacer renders error attributes as their message so every output format prints them the same way.
func errorAttrReplacer(groups []string, attr slog.Attr) slog.Attr {
	if len(groups) == 0 && attr.Key == ErrorKey {
		if err, ok := attr.Value.Any().(error); ok && err != nil {
			return slog.String(ErrorKey, err.Error())
		}
	}
	return attr
}

// middlewareErrorStackTrace adds the verbose error and its stack trace to records carrying an error.
func middlewareErrorStackTrace() middleware {
	return func(next handleFunc) handleFunc {
		return func(ctx context.Context, rec slog.Record) error {
			var extra []slog.Attr
			rec.Attrs(func(attr slog.Attr) bool {
				if attr.Key != ErrorKey && attr.Key != "err" {
					return true
				}
				err, ok := attr.Value.Any().(error)
				if !ok || err == nil {
					return true
				}
				extra = append(extra, slog.String(ErrorVerboseKey, fmt.Sprintf("%+v", err)))
				if x, ok := err.(errbase.StackTraceProvider); ok {
					extra = append(extra, slog.Any(ErrorStackTraceKey, traceFrames(x.StackTrace())))
				}
				return false
			})
			rec.AddAttrs(extra...)
			return next(ctx, rec)
		}
	}
}

// traceFrames renders a stack trace outermost call first, dropping the runtime frames at the bottom.
func traceFrames(st errbase.StackTrace) []string {
	frames := make([]string, 0, len(st))
	skipping := true
	for i := len(st) - 1; i >= 0; i-- {
		pc := uintptr(st[i]) - 1
		fn := runtime.FuncForPC(pc)
		if fn == nil {
			skipping = false
			frames = append(frames, "unknown")
			continue
		}
		if skipping && strings.HasPrefix(fn.Name(), "runtime.") {
			continue
		}
		skipping = false
		file, line := fn.FileLine(pc)
		frames = append(frames, fmt.Sprintf("%s %s:%d", fn.Name(), file, line))
	}
	return frames
}
