// Package requestcontext copies per-request values into the request's user context and logger.
package requestcontext

import (
	"context"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/launchpad/common"
	"github.com/gaze-network/launchpad/pkg/logger"
	"github.com/gaze-network/launchpad/pkg/logger/slogx"
	"github.com/gofiber/fiber/v2"
)

// Option derives the next context from the request. Returning a *RejectError stops the request with its status.
type Option func(ctx context.Context, c *fiber.Ctx) (context.Context, error)

// RejectError stops a request with a status and a public message.
type RejectError struct {
	Status  int
	Message string
}

func (r *RejectError) Error() string {
	return http.StatusText(r.Status) + ": " + r.Message
}

func New(opts ...Option) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		for i, opt := range opts {
			next, err := opt(ctx, c)
			if err != nil {
				if rej := new(RejectError); errors.As(err, &rej) {
					return errors.WithStack(c.Status(rej.Status).JSON(common.NewErrorResponse[any](rej.Message)))
				}
				logger.ErrorContext(ctx, "Failed to extract request context", err,
					slogx.String("event", "requestcontext_error"),
					slogx.Int("option_index", i),
				)
				return errors.WithStack(c.Status(http.StatusInternalServerError).JSON(common.NewErrorResponse[any]("internal server error")))
			}
			ctx = next
		}
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func value[T any](ctx context.Context, key any) T {
	v, _ := ctx.Value(key).(T)
	return v
}
