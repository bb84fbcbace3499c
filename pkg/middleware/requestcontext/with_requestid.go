package requestcontext

import (
	"context"

	"github.com/gaze-network/launchpad/pkg/logger"
	"github.com/gaze-network/launchpad/pkg/logger/slogx"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

type requestIDKey struct{}

// GetRequestID returns the request id set by [WithRequestID], or an empty string.
func GetRequestID(ctx context.Context) string {
	return value[string](ctx, requestIDKey{})
}

// WithRequestID reuses the id of the requestid middleware, or the request header, or a new UUID.
func WithRequestID() Option {
	return func(ctx context.Context, c *fiber.Ctx) (context.Context, error) {
		id, _ := c.Locals(requestid.ConfigDefault.ContextKey).(string)
		if id == "" {
			id = c.Get(requestid.ConfigDefault.Header)
			if id == "" {
				id = uuid.NewString()
			}
			c.Set(requestid.ConfigDefault.Header, id)
			c.Locals(requestid.ConfigDefault.ContextKey, id)
		}
		ctx = context.WithValue(ctx, requestIDKey{}, id)
		return logger.WithContext(ctx, slogx.String("request_id", id)), nil
	}
}
