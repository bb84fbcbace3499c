package requestcontext

import (
	"context"
	"strings"

	"github.com/gaze-network/launchpad/pkg/logger"
	"github.com/gaze-network/launchpad/pkg/logger/slogx"
	"github.com/gofiber/fiber/v2"
)

type callerKey struct{}

// GetCaller returns the lower-cased caller address set by [WithCaller], or an empty string.
func GetCaller(ctx context.Context) string {
	return value[string](ctx, callerKey{})
}

// WithCaller records the address from header, when present, for handlers and logs.
func WithCaller(header string) Option {
	return func(ctx context.Context, c *fiber.Ctx) (context.Context, error) {
		caller := strings.ToLower(strings.TrimSpace(c.Get(header)))
		if caller == "" {
			return ctx, nil
		}
		ctx = context.WithValue(ctx, callerKey{}, caller)
		return logger.WithContext(ctx, slogx.String("caller", caller)), nil
	}
}
