// Package automaxprocs sizes GOMAXPROCS to the container CPU quota.
package automaxprocs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/Cleverse/go-utilities/utils"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/launchpad/pkg/logger"
	"github.com/gaze-network/launchpad/pkg/logger/slogx"
	"go.uber.org/automaxprocs/maxprocs"
)

// Init applies the CPU quota and returns a func restoring the previous value.
func Init(ctx context.Context) (undo func(), err error) {
	ctx = logger.WithContext(ctx,
		slogx.String("package", "automaxprocs"),
		slogx.Int("prev_maxprocs", runtime.GOMAXPROCS(0)),
	)

	printf := func(format string, v ...any) {
		var attrs []slog.Attr
		// maxprocs passes the new value except on undo.
		if val, ok := utils.Optional(v); ok {
			if _, exists := os.LookupEnv("GOMAXPROCS"); exists {
				val = runtime.GOMAXPROCS(0)
			}
			if n, ok := val.(int); ok {
				attrs = append(attrs, slogx.Int("set_maxprocs", n))
			}
		}
		logger.LogAttrs(ctx, slog.LevelInfo, fmt.Sprintf(format, v...), attrs...)
	}

	undo, err = maxprocs.Set(maxprocs.Logger(printf), maxprocs.Min(1))
	if err != nil {
		return func() {}, errors.WithStack(err)
	}
	return undo, nil
}
